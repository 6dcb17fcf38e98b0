package hotkey

import (
	"sync/atomic"
	"time"
)

type Mode string

const (
	ModePTT    Mode = "ptt"
	ModeToggle Mode = "toggle"
)

// Hybrid wraps a Hotkey to provide tap-to-toggle and hold-to-talk behavior
// on the same key combination. A press always starts recording; whether it
// ends on release (hold) or on the next tap (toggle) depends on how long
// the key stays down.
type Hybrid struct {
	startCh chan struct{}
	stopCh  chan struct{}
	toggled atomic.Bool
}

// NewHybrid builds a Hybrid controller on top of an existing Hotkey.
// longPress is the hold threshold separating a tap from push-to-talk.
func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}, 1),
	}
	go h.run(hk, longPress)
	return h
}

// Start signals when to begin recording.
func (h *Hybrid) Start() <-chan struct{} { return h.startCh }

// Stop signals when to end recording, for both hold and toggle modes.
func (h *Hybrid) Stop() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current recording was started by a tap
// and is waiting for a second tap to stop.
func (h *Hybrid) IsToggle() bool { return h.toggled.Load() }

type hybridState int

const (
	stIdle hybridState = iota
	stToggleRecording
)

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	state := stIdle
	for {
		switch state {
		case stIdle:
			<-hk.Keydown()
			h.startCh <- struct{}{}
			timer := time.NewTimer(longPress)
			select {
			case <-timer.C:
				// Held past the threshold: push-to-talk, stop on release.
				<-hk.Keyup()
				select {
				case h.stopCh <- struct{}{}:
				default:
				}
			case <-hk.Keyup():
				// Short tap: toggled on, next press stops.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				h.toggled.Store(true)
				state = stToggleRecording
				continue
			}
			state = stIdle
		case stToggleRecording:
			<-hk.Keydown()
			<-hk.Keyup()
			h.toggled.Store(false)
			select {
			case h.stopCh <- struct{}{}:
			default:
			}
			state = stIdle
		default:
			state = stIdle
		}
	}
}
