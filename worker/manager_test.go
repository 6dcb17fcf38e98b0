package worker

import (
	"strings"
	"testing"
	"time"

	"wisp/config"
)

func testConfig() config.Config {
	dev := 3
	cfg := config.Default()
	cfg.DeviceID = &dev
	return cfg
}

func newTestManager(t *testing.T, stall time.Duration) (*Manager, *FakeBackend, *FakeNotifier) {
	t.Helper()
	fb := NewFakeBackend()
	fn := NewFakeNotifier()
	m := New(testConfig(), fn, Options{Spawn: fb.Spawn, Stall: stall})
	t.Cleanup(m.Shutdown)
	m.Start()
	waitCommand(t, fb, "load_model")
	return m, fb, fn
}

func waitCommand(t *testing.T, fb *FakeBackend, name string) map[string]any {
	t.Helper()
	cmd, ok := fb.NextCommand(time.Second)
	if !ok {
		t.Fatalf("timed out waiting for %s command", name)
	}
	if got, _ := cmd["cmd"].(string); got != name {
		t.Fatalf("got command %q, want %q", got, name)
	}
	return cmd
}

func waitEvent(t *testing.T, fn *FakeNotifier, prefix string) string {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-fn.Events():
			if strings.HasPrefix(ev, prefix) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for notification %q", prefix)
		}
	}
}

func expectNoCommand(t *testing.T, fb *FakeBackend) {
	t.Helper()
	if cmd, ok := fb.NextCommand(50 * time.Millisecond); ok {
		t.Fatalf("unexpected command %v", cmd)
	}
}

func waitState(t *testing.T, m *Manager, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", m.State(), want)
}

func TestStartupLoadsConfiguredModel(t *testing.T) {
	fb := NewFakeBackend()
	m := New(testConfig(), NewFakeNotifier(), Options{Spawn: fb.Spawn})
	t.Cleanup(m.Shutdown)
	m.Start()

	cmd := waitCommand(t, fb, "load_model")
	if cmd["model"] != "nemo-parakeet-tdt-0.6b-v3" {
		t.Errorf("model = %v", cmd["model"])
	}
}

func TestPressSendsStartRecording(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Press()
	cmd := waitCommand(t, fb, "start_recording")
	if dev, ok := cmd["device"].(float64); !ok || dev != 3 {
		t.Errorf("device = %v", cmd["device"])
	}
	if m.State() != Recording {
		t.Errorf("state = %v, want Recording", m.State())
	}
	waitEvent(t, fn, "recording_started")
}

func TestDuplicatePressIsNoop(t *testing.T) {
	m, fb, _ := newTestManager(t, 0)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Press()
	expectNoCommand(t, fb)
	if m.State() != Recording {
		t.Errorf("state = %v, want Recording", m.State())
	}
}

func TestStrayReleaseIsNoop(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Release()
	expectNoCommand(t, fb)
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
	select {
	case ev := <-fn.Events():
		t.Errorf("unexpected notification %q", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPressWithoutBackend(t *testing.T) {
	fn := NewFakeNotifier()
	m := New(testConfig(), fn, Options{
		Spawn: func() (*Proc, error) { return nil, ErrNotFound },
	})
	m.Start()
	time.Sleep(20 * time.Millisecond)

	m.Press() // must log and skip, never panic
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
	select {
	case ev := <-fn.Events():
		t.Errorf("unexpected notification %q", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartNotificationPrecedesFirstLevel(t *testing.T) {
	fb := NewFakeBackend()
	// Respond to start_recording instantly, like a backend that is
	// already capturing.
	fb.OnCommand = func(cmd map[string]any) {
		if name, _ := cmd["cmd"].(string); name == "start_recording" {
			fb.Emit(map[string]any{"audio_level": 0.42})
		}
	}
	fn := NewFakeNotifier()
	m := New(testConfig(), fn, Options{Spawn: fb.Spawn})
	t.Cleanup(m.Shutdown)
	m.Start()
	waitCommand(t, fb, "load_model")

	m.Press()
	if first := waitEvent(t, fn, ""); first != "recording_started" {
		t.Fatalf("first notification = %q, want recording_started", first)
	}
	waitEvent(t, fn, "audio_level")
}

func TestReleaseSendsStopAndTranscribe(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	cmd := waitCommand(t, fb, "stop_and_transcribe")
	if cmd["output"] != "clipboard" {
		t.Errorf("output = %v", cmd["output"])
	}
	if m.State() != Transcribing {
		t.Errorf("state = %v, want Transcribing", m.State())
	}
	waitEvent(t, fn, "recording_stopped")
	waitEvent(t, fn, "transcription_started")
}

func TestModelLoadedMarksReady(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	if m.Ready() {
		t.Error("ready before model_loaded")
	}
	fb.Emit(map[string]any{"status": "model_loaded"})
	waitEvent(t, fn, "model_ready")
	if !m.Ready() {
		t.Error("not ready after model_loaded")
	}
}

func TestTerminalResultReturnsToIdle(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")

	fb.Emit(map[string]any{"text": "ship it", "copied": true, "typed": false, "transcription_time": 0.8})
	ev := waitEvent(t, fn, "transcription_done")
	if !strings.Contains(ev, `text="ship it"`) || !strings.Contains(ev, "copied=true") {
		t.Errorf("notification = %q", ev)
	}
	waitState(t, m, Idle)
}

func TestTranscriptionErrorReturnsToIdle(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")

	fb.Emit(map[string]any{"error": "no speech detected"})
	ev := waitEvent(t, fn, "transcription_failed")
	if !strings.Contains(ev, "no speech detected") {
		t.Errorf("notification = %q", ev)
	}
	waitState(t, m, Idle)
}

func TestBackendExitClearsSink(t *testing.T) {
	m, fb, _ := newTestManager(t, 0)

	fb.Exit()
	deadline := time.Now().Add(time.Second)
	for m.Available() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Available() {
		t.Fatal("command sink not cleared after backend exit")
	}

	m.Press() // fails soft: no write to a dead pipe, no panic
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
}

func TestBackendExitIsReaped(t *testing.T) {
	fb := NewFakeBackend()
	waited := make(chan struct{})
	spawn := func() (*Proc, error) {
		p, err := fb.Spawn()
		if err != nil {
			return nil, err
		}
		inner := p.wait
		p.wait = func() error {
			defer close(waited)
			return inner()
		}
		return p, nil
	}
	m := New(testConfig(), NewFakeNotifier(), Options{Spawn: spawn})
	t.Cleanup(m.Shutdown)
	m.Start()
	waitCommand(t, fb, "load_model")

	fb.Exit()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("exited backend was never waited on")
	}
}

func TestBackendExitWhileTranscribing(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")

	fb.Exit()
	waitEvent(t, fn, "transcription_failed")
	waitState(t, m, Idle)
}

func TestStallTimerForcesIdle(t *testing.T) {
	m, fb, fn := newTestManager(t, 40*time.Millisecond)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")

	// No terminal event ever arrives.
	ev := waitEvent(t, fn, "transcription_failed")
	if !strings.Contains(ev, "timed out") {
		t.Errorf("notification = %q", ev)
	}
	waitState(t, m, Idle)
}

func TestTerminalEventCancelsStallTimer(t *testing.T) {
	m, fb, fn := newTestManager(t, 60*time.Millisecond)

	m.Press()
	waitCommand(t, fb, "start_recording")
	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")

	fb.Emit(map[string]any{"text": "quick", "copied": true})
	waitEvent(t, fn, "transcription_done")

	// Past the stall ceiling: no late timeout may fire.
	time.Sleep(100 * time.Millisecond)
	select {
	case ev := <-fn.Events():
		if strings.HasPrefix(ev, "transcription_failed") {
			t.Errorf("stall timer fired after terminal event: %q", ev)
		}
	default:
	}
}

func TestJunkLinesAreDiscarded(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	fb.EmitRaw("Loading model weights...")
	fb.EmitRaw(`{"pid":1234}`)
	fb.Emit(map[string]any{"audio_level": 0.4})

	waitEvent(t, fn, "audio_level")
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
}

func TestRestartSpawnsNewBackend(t *testing.T) {
	var backends []*FakeBackend
	fn := NewFakeNotifier()
	m := New(testConfig(), fn, Options{
		Spawn: func() (*Proc, error) {
			fb := NewFakeBackend()
			backends = append(backends, fb)
			return fb.Spawn()
		},
	})
	t.Cleanup(m.Shutdown)

	m.Start()
	deadline := time.Now().Add(time.Second)
	for len(backends) < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(backends) < 1 {
		t.Fatal("start did not spawn a backend")
	}
	waitCommand(t, backends[0], "load_model")
	backends[0].Exit()

	m.Restart()
	deadline = time.Now().Add(time.Second)
	for len(backends) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(backends) < 2 {
		t.Fatal("restart did not spawn a new backend")
	}
	waitCommand(t, backends[1], "load_model")
}

// Full hold-to-talk pass: press, levels, release, result.
func TestDictationScenario(t *testing.T) {
	m, fb, fn := newTestManager(t, 0)

	fb.Emit(map[string]any{"status": "model_loaded"})
	waitEvent(t, fn, "model_ready")

	m.Press()
	waitCommand(t, fb, "start_recording")
	waitEvent(t, fn, "recording_started")

	for i := 0; i < 3; i++ {
		fb.Emit(map[string]any{"audio_level": 0.4})
		waitEvent(t, fn, "audio_level")
	}

	m.Release()
	waitCommand(t, fb, "stop_and_transcribe")
	waitEvent(t, fn, "recording_stopped")
	waitEvent(t, fn, "transcription_started")

	fb.Emit(map[string]any{"text": "ship it", "copied": true, "typed": false, "transcription_time": 0.8})
	ev := waitEvent(t, fn, "transcription_done")
	if !strings.Contains(ev, `text="ship it"`) {
		t.Errorf("notification = %q", ev)
	}
	waitState(t, m, Idle)
}
