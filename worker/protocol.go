package worker

import (
	"encoding/json"
	"fmt"
)

// Commands are written to the backend one JSON object per line. The
// backend blocks on stdin, so encoded lines are flushed immediately by
// the caller.
type Command interface {
	wire() any
}

type StartRecording struct {
	Device *int // nil = system default input
}

type StopAndTranscribe struct {
	Output string // "clipboard", "simulate_typing", "json"
}

type LoadModel struct {
	Model string
}

type Quit struct{}

func (c StartRecording) wire() any {
	return struct {
		Cmd    string `json:"cmd"`
		Device *int   `json:"device"`
	}{"start_recording", c.Device}
}

func (c StopAndTranscribe) wire() any {
	return struct {
		Cmd    string `json:"cmd"`
		Output string `json:"output"`
	}{"stop_and_transcribe", c.Output}
}

func (c LoadModel) wire() any {
	return struct {
		Cmd   string `json:"cmd"`
		Model string `json:"model"`
	}{"load_model", c.Model}
}

func (c Quit) wire() any {
	return struct {
		Cmd string `json:"cmd"`
	}{"quit"}
}

// Encode renders a command as a single newline-terminated JSON line.
func Encode(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd.wire())
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", cmd, err)
	}
	return append(data, '\n'), nil
}

// Events arrive from the backend one JSON object per line. Fields are
// optional and may overlap within a single line; each recognized field
// is handled independently.
type Event interface {
	event()
}

type AudioLevel struct {
	Level float64 // 0..1
}

type Status struct {
	Name string // "model_loaded" is the only one with defined behavior
}

type Transcription struct {
	Text    string
	Copied  bool
	Typed   bool
	Seconds float64 // time the engine spent transcribing
}

type TranscriptionError struct {
	Message string
}

func (AudioLevel) event()         {}
func (Status) event()             {}
func (Transcription) event()      {}
func (TranscriptionError) event() {}

type wireEvent struct {
	AudioLevel *float64 `json:"audio_level"`
	Status     *string  `json:"status"`
	Text       *string  `json:"text"`
	Copied     bool     `json:"copied"`
	Typed      bool     `json:"typed"`
	Seconds    float64  `json:"transcription_time"`
	Error      *string  `json:"error"`
}

// DecodeLine parses one backend output line into zero or more events.
// Lines that are not JSON objects are discarded: the backend's
// diagnostics can end up on the same stream in some setups, and that
// is not an error. A line carrying several recognized fields yields
// one event per field, in a fixed order.
func DecodeLine(line []byte) []Event {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return nil
	}

	var events []Event
	if w.AudioLevel != nil {
		events = append(events, AudioLevel{Level: *w.AudioLevel})
	}
	if w.Status != nil {
		events = append(events, Status{Name: *w.Status})
	}
	if w.Text != nil {
		events = append(events, Transcription{
			Text:    *w.Text,
			Copied:  w.Copied,
			Typed:   w.Typed,
			Seconds: w.Seconds,
		})
	}
	if w.Error != nil {
		events = append(events, TranscriptionError{Message: *w.Error})
	}
	return events
}
