package worker

import (
	"strings"
	"testing"
)

func TestEncodeStartRecording(t *testing.T) {
	dev := 3
	line, err := Encode(StartRecording{Device: &dev})
	if err != nil {
		t.Fatal(err)
	}
	got := string(line)
	if got != `{"cmd":"start_recording","device":3}`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestEncodeStartRecordingDefaultDevice(t *testing.T) {
	line, err := Encode(StartRecording{})
	if err != nil {
		t.Fatal(err)
	}
	// The backend distinguishes "default device" by an explicit null.
	if got := string(line); got != `{"cmd":"start_recording","device":null}`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestEncodeSingleLine(t *testing.T) {
	for _, cmd := range []Command{
		StartRecording{},
		StopAndTranscribe{Output: "clipboard"},
		LoadModel{Model: "nemo-parakeet-tdt-0.6b-v3"},
		Quit{},
	} {
		line, err := Encode(cmd)
		if err != nil {
			t.Fatalf("%T: %v", cmd, err)
		}
		s := string(line)
		if !strings.HasSuffix(s, "\n") {
			t.Errorf("%T: missing trailing newline", cmd)
		}
		if strings.Count(s, "\n") != 1 {
			t.Errorf("%T: embedded newline in %q", cmd, s)
		}
	}
}

func TestDecodeLineRoundTrip(t *testing.T) {
	events := DecodeLine([]byte(`{"text":"hello","copied":true,"typed":false,"transcription_time":1.2}`))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	tr, ok := events[0].(Transcription)
	if !ok {
		t.Fatalf("got %T, want Transcription", events[0])
	}
	if tr.Text != "hello" || !tr.Copied || tr.Typed || tr.Seconds != 1.2 {
		t.Errorf("got %+v", tr)
	}
}

func TestDecodeLineVariants(t *testing.T) {
	for _, tt := range []struct {
		name string
		line string
		want Event
	}{
		{"audio level", `{"audio_level":0.4}`, AudioLevel{Level: 0.4}},
		{"status", `{"status":"model_loaded"}`, Status{Name: "model_loaded"}},
		{"error", `{"error":"no speech detected"}`, TranscriptionError{Message: "no speech detected"}},
		{"empty text", `{"text":""}`, Transcription{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			events := DecodeLine([]byte(tt.line))
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0] != tt.want {
				t.Errorf("got %#v, want %#v", events[0], tt.want)
			}
		})
	}
}

func TestDecodeLineDiscards(t *testing.T) {
	for _, tt := range []struct{ name, line string }{
		{"not json", "Loading model weights..."},
		{"empty", ""},
		{"json array", `[1,2,3]`},
		{"no recognized fields", `{"pid":1234,"duration":2.5}`},
		{"truncated", `{"text":"hel`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if events := DecodeLine([]byte(tt.line)); events != nil {
				t.Errorf("got %v, want discard", events)
			}
		})
	}
}

func TestDecodeLineOverlappingFields(t *testing.T) {
	// One line carrying several recognized fields yields one event per
	// field, ordered: audio level, status, text, error.
	events := DecodeLine([]byte(`{"audio_level":0.1,"status":"transcribing","error":"boom"}`))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if _, ok := events[0].(AudioLevel); !ok {
		t.Errorf("events[0] = %T, want AudioLevel", events[0])
	}
	if _, ok := events[1].(Status); !ok {
		t.Errorf("events[1] = %T, want Status", events[1])
	}
	if _, ok := events[2].(TranscriptionError); !ok {
		t.Errorf("events[2] = %T, want TranscriptionError", events[2])
	}
}
