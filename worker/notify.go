package worker

import "fmt"

// Notifier receives one-way UI notifications from the session manager
// and reader loop. Implementations must not block and must not call
// back into the Manager; failures are theirs to log.
type Notifier interface {
	RecordingStarted()
	RecordingStopped(duration float64)
	TranscriptionStarted()
	TranscriptionDone(text string, copied, typed bool)
	TranscriptionFailed(message string)
	AudioLevel(level float64)
	StatusChanged(name string)
	ModelReady()
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) RecordingStarted()                      {}
func (NopNotifier) RecordingStopped(float64)               {}
func (NopNotifier) TranscriptionStarted()                  {}
func (NopNotifier) TranscriptionDone(string, bool, bool)   {}
func (NopNotifier) TranscriptionFailed(string)             {}
func (NopNotifier) AudioLevel(float64)                     {}
func (NopNotifier) StatusChanged(string)                   {}
func (NopNotifier) ModelReady()                            {}

// FakeNotifier records notifications as formatted strings for tests.
type FakeNotifier struct {
	ch chan string
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{ch: make(chan string, 128)}
}

// Events exposes the recorded notification stream.
func (f *FakeNotifier) Events() <-chan string { return f.ch }

func (f *FakeNotifier) record(s string) {
	select {
	case f.ch <- s:
	default:
	}
}

func (f *FakeNotifier) RecordingStarted()     { f.record("recording_started") }
func (f *FakeNotifier) TranscriptionStarted() { f.record("transcription_started") }
func (f *FakeNotifier) ModelReady()           { f.record("model_ready") }

func (f *FakeNotifier) RecordingStopped(duration float64) {
	f.record(fmt.Sprintf("recording_stopped dur=%.1f", duration))
}

func (f *FakeNotifier) TranscriptionDone(text string, copied, typed bool) {
	f.record(fmt.Sprintf("transcription_done text=%q copied=%t typed=%t", text, copied, typed))
}

func (f *FakeNotifier) TranscriptionFailed(message string) {
	f.record("transcription_failed " + message)
}

func (f *FakeNotifier) AudioLevel(level float64) {
	f.record(fmt.Sprintf("audio_level %.2f", level))
}

func (f *FakeNotifier) StatusChanged(name string) {
	f.record("status " + name)
}
