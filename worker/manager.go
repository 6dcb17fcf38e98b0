package worker

import (
	"errors"
	"io"
	"sync"
	"time"

	"wisp/config"
	"wisp/log"
)

// State is the session manager's externally visible state.
type State int

const (
	Idle State = iota
	Recording
	Transcribing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// DefaultStall bounds how long the session may sit in Transcribing with
// no terminal event before the UI is forced back to idle. Generous: a
// cold model on CPU can be slow, but a crashed backend must not leave
// the overlay spinning forever.
const DefaultStall = 60 * time.Second

var errNoWorker = errors.New("no backend running")

// SpawnFunc starts a backend process. Tests substitute a fake.
type SpawnFunc func() (*Proc, error)

type Options struct {
	Spawn SpawnFunc     // nil = resolve and spawn the real backend
	Stall time.Duration // 0 = DefaultStall
}

// Manager owns the recording session: a single mutex guards all session
// state, hotkey edges drive the Idle/Recording/Transcribing transitions,
// and a per-generation reader goroutine feeds backend events back in.
// The guard is never held across blocking I/O other than the single
// write-and-flush of a command line.
type Manager struct {
	notify Notifier
	spawn  SpawnFunc
	stall  time.Duration

	mu         sync.Mutex
	cfg        config.Config
	state      State
	startedAt  time.Time
	stdin      io.WriteCloser // nil iff no live backend
	proc       *Proc
	modelReady bool
	generation int // bumped per spawn; orphans stale readers and timers
	stallTimer *time.Timer
	stallSeq   int
}

func New(cfg config.Config, n Notifier, opt Options) *Manager {
	if n == nil {
		n = NopNotifier{}
	}
	m := &Manager{
		notify: n,
		spawn:  opt.Spawn,
		stall:  opt.Stall,
		cfg:    cfg,
	}
	if m.stall <= 0 {
		m.stall = DefaultStall
	}
	if m.spawn == nil {
		m.spawn = func() (*Proc, error) {
			launch, err := ResolveDefault()
			if err != nil {
				return nil, err
			}
			return Spawn(launch)
		}
	}
	return m
}

// Start spawns the backend and loads the configured model, off the
// caller's path. Failure leaves the session idle with no command sink;
// dictation is simply unavailable until Restart.
func (m *Manager) Start() {
	go m.startWorker()
}

func (m *Manager) startWorker() {
	proc, err := m.spawn()
	if err != nil {
		log.Warnf("dictation unavailable: %v", err)
		return
	}

	m.mu.Lock()
	if m.stdin != nil {
		m.mu.Unlock()
		proc.Terminate()
		return
	}
	m.generation++
	gen := m.generation
	m.proc = proc
	m.stdin = proc.Stdin
	m.modelReady = false
	model := m.cfg.Model
	m.mu.Unlock()

	go m.readEvents(gen, proc.Stdout)
	if proc.Stderr != nil {
		go drainStderr(proc.Stderr)
	}

	if err := m.send(LoadModel{Model: model}); err != nil {
		log.Warnf("load_model: %v", err)
	}
}

// Press handles a hotkey press edge. Idempotent: a press while already
// recording or transcribing is a no-op, and with no backend running it
// logs and skips.
func (m *Manager) Press() {
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		return
	}
	if m.stdin == nil {
		m.mu.Unlock()
		log.Warn("press ignored: backend not running")
		return
	}
	if !m.modelReady {
		log.Info("recording before model_loaded; backend will queue")
	}
	m.state = Recording
	m.startedAt = time.Now()

	// Notify before start_recording is written: the backend cannot emit
	// a level for this session until the command reaches it, so the
	// started notification always precedes the first audio_level. The
	// notifier contract (non-blocking, no calls back into the Manager)
	// makes this safe under the guard.
	log.Info("recording_started")
	m.notify.RecordingStarted()

	err := m.sendLocked(StartRecording{Device: m.cfg.DeviceID})
	if err != nil {
		m.state = Idle
		m.startedAt = time.Time{}
		m.mu.Unlock()
		m.notify.RecordingStopped(0)
		m.notify.TranscriptionFailed("transcription backend unavailable")
		return
	}
	m.mu.Unlock()
}

// Release handles a hotkey release edge. A release while not recording
// is a stray edge and a no-op.
func (m *Manager) Release() {
	m.mu.Lock()
	if m.state != Recording {
		m.mu.Unlock()
		return
	}
	duration := time.Since(m.startedAt).Seconds()
	m.startedAt = time.Time{}
	m.state = Transcribing
	err := m.sendLocked(StopAndTranscribe{Output: m.cfg.OutputMode})
	if err != nil {
		m.state = Idle
		m.mu.Unlock()
		m.notify.TranscriptionFailed("transcription backend unavailable")
		return
	}
	m.armStallLocked()
	m.mu.Unlock()

	log.Infof("recording_stopped after %.1fs", duration)
	m.notify.RecordingStopped(duration)
	m.notify.TranscriptionStarted()
}

// send encodes and writes a command outside any caller-held lock.
func (m *Manager) send(cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendLocked(cmd)
}

// sendLocked writes one command line to the backend. A write failure
// means the pipe is dead: the sink is cleared so later commands fail
// fast, and the reader's end-of-stream handling finishes the cleanup.
func (m *Manager) sendLocked(cmd Command) error {
	if m.stdin == nil {
		log.Warnf("dropping %T: %v", cmd, errNoWorker)
		return errNoWorker
	}
	line, err := Encode(cmd)
	if err != nil {
		log.Errorf("encode %T: %v", cmd, err)
		return err
	}
	if _, err := m.stdin.Write(line); err != nil {
		log.Warnf("backend write failed: %v", err)
		m.stdin = nil
		return err
	}
	return nil
}

// handleEvent is called by the reader loop, one decoded event at a time.
func (m *Manager) handleEvent(gen int, ev Event) {
	switch e := ev.(type) {
	case AudioLevel:
		m.notify.AudioLevel(e.Level)
	case Status:
		if e.Name == "model_loaded" {
			m.mu.Lock()
			if gen == m.generation {
				m.modelReady = true
			}
			m.mu.Unlock()
			log.Info("model_ready")
			m.notify.ModelReady()
			return
		}
		m.notify.StatusChanged(e.Name)
	case Transcription:
		m.resolveTranscribing(gen)
		log.Transcription(len(e.Text), e.Seconds, e.Copied, e.Typed)
		m.notify.TranscriptionDone(e.Text, e.Copied, e.Typed)
	case TranscriptionError:
		m.resolveTranscribing(gen)
		log.Warnf("transcription error: %s", e.Message)
		m.notify.TranscriptionFailed(e.Message)
	}
}

// resolveTranscribing ends a pending transcription on a terminal event.
func (m *Manager) resolveTranscribing(gen int) {
	m.mu.Lock()
	if gen == m.generation {
		m.disarmStallLocked()
		if m.state == Transcribing {
			m.state = Idle
		}
	}
	m.mu.Unlock()
}

// workerLost is invoked by the reader when the event stream closes.
func (m *Manager) workerLost(gen int) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	proc := m.proc
	m.stdin = nil
	m.proc = nil
	m.modelReady = false
	wasActive := m.state != Idle
	m.state = Idle
	m.disarmStallLocked()
	m.mu.Unlock()

	// The backend went away on its own; it still has to be waited on
	// or it lingers as a zombie. Terminate is bounded, so run it off
	// the reader goroutine and let it reap.
	if proc != nil {
		go proc.Terminate()
	}

	log.Warn("backend stream closed; dictation unavailable until restart")
	if wasActive {
		m.notify.TranscriptionFailed("transcription backend exited")
	}
}

func (m *Manager) armStallLocked() {
	m.stallSeq++
	seq := m.stallSeq
	if m.stallTimer != nil {
		m.stallTimer.Stop()
	}
	m.stallTimer = time.AfterFunc(m.stall, func() { m.stallExpired(seq) })
}

func (m *Manager) disarmStallLocked() {
	m.stallSeq++
	if m.stallTimer != nil {
		m.stallTimer.Stop()
		m.stallTimer = nil
	}
}

func (m *Manager) stallExpired(seq int) {
	m.mu.Lock()
	if seq != m.stallSeq || m.state != Transcribing {
		m.mu.Unlock()
		return
	}
	m.state = Idle
	m.stallTimer = nil
	m.mu.Unlock()

	log.Warn("no terminal event from backend; forcing idle")
	m.notify.TranscriptionFailed("transcription timed out")
}

// Shutdown terminates the backend. The process wait happens outside the
// guard; a stale reader observing the closed stream is orphaned by the
// generation bump.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	proc := m.proc
	m.proc = nil
	m.stdin = nil
	m.modelReady = false
	m.state = Idle
	m.generation++
	m.disarmStallLocked()
	m.mu.Unlock()

	if proc != nil {
		proc.Terminate()
	}
}

// Restart tears down any current backend and runs the startup sequence
// again. There is no automatic respawn: this is the manual recovery
// path exposed to the UI.
func (m *Manager) Restart() {
	m.Shutdown()
	m.Start()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready reports whether a backend is running and its model is loaded.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stdin != nil && m.modelReady
}

// Available reports whether a backend is running at all.
func (m *Manager) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stdin != nil
}

// SetConfig swaps the active configuration. Callers must not race this
// with Start; the save path serializes both.
func (m *Manager) SetConfig(cfg config.Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

func (m *Manager) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}
