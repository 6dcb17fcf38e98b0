// Package tray drives the status bar item: recording indicator, last
// transcript shortcut, device selection and backend controls.
package tray

import (
	"fmt"
	"sync"
	"time"

	"wisp/audio"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	copyLastFn func()
	recordFn   func()
	stopFn     func()
	restartFn  func()

	recording bool
	warning   bool

	deviceMu    sync.Mutex
	deviceNames []string
	deviceSel   string
	deviceCb    func(string)

	autoPasteOn bool
	autoPasteCb func(bool)
)

func OnCopyLast(fn func())        { copyLastFn = fn }
func OnRecord(start, stop func()) { recordFn = start; stopFn = stop }
func OnRestartBackend(fn func())  { restartFn = fn }
func SetAutoPaste(on bool)        { autoPasteOn = on }
func OnAutoPaste(fn func(bool))   { autoPasteCb = fn }

func SetRecording(rec bool) {
	recording = rec
	warning = false
	updateRecordingIcon(rec)
	if rec {
		disableDevices()
	} else {
		enableDevices()
	}
}

// SetWarning flags a stalled or noisy session while recording.
func SetWarning(on bool) {
	if !recording {
		return
	}
	warning = on
	updateWarningIcon(on)
}

func SetError(msg string) {
	updateTooltip("wisp – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		updateTooltip("wisp – hold to dictate")
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

func SetDevices(names []string, selected string, onSwitch func(name string)) {
	deviceMu.Lock()
	deviceNames = names
	deviceSel = selected
	if onSwitch != nil {
		deviceCb = onSwitch
	}
	deviceMu.Unlock()
}

func SetLastTranscript(text string, seconds float64) {
	chars := len([]rune(text))
	updateCopyLastTitle(fmt.Sprintf("Copy Last Transcript (%d chars | %.1fs)", chars, seconds))
}

func deviceDisplayName(name string) string {
	if audio.IsBluetooth(name) {
		return name + " [⚠ Lower audio quality]"
	}
	return name
}
