package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wisp/beep"
	"wisp/config"
	"wisp/log"
	"wisp/worker"
)

var cannedTranscripts = []string{
	"the quick brown fox jumps over the lazy dog",
	"testing one two three",
	"dictation without a microphone",
}

// scriptedBackend emulates the transcription daemon over a FakeBackend
// so test mode runs without python or a model.
func scriptedBackend(cfg config.Config) *worker.FakeBackend {
	fb := worker.NewFakeBackend()
	n := 0
	fb.OnCommand = func(cmd map[string]any) {
		name, _ := cmd["cmd"].(string)
		switch name {
		case "load_model":
			fb.Emit(map[string]any{"status": "model_loaded"})
		case "start_recording":
			fb.Emit(map[string]any{"status": "recording"})
			for _, l := range []float64{0.05, 0.21, 0.12} {
				fb.Emit(map[string]any{"audio_level": l})
			}
		case "stop_and_transcribe":
			fb.Emit(map[string]any{"status": "transcribing"})
			text := cannedTranscripts[n%len(cannedTranscripts)]
			n++
			fb.Emit(map[string]any{
				"text":               text,
				"copied":             cfg.OutputMode == "clipboard",
				"typed":              cfg.OutputMode == "type",
				"transcription_time": 0.42,
			})
		}
	}
	return fb
}

// runTestMode drives the session manager from stdin commands:
// KEYDOWN, KEYUP, SLEEP <ms>, WAIT, RESTART, CRASH_BACKEND, QUIT.
func runTestMode(cfg config.Config, notify *uiNotifier, stall time.Duration) {
	beep.Disable()
	defer log.Close()

	var fb *worker.FakeBackend
	mgr = worker.New(cfg, notify, worker.Options{
		Spawn: func() (*worker.Proc, error) {
			fb = scriptedBackend(cfg)
			return fb.Spawn()
		},
		Stall: stall,
	})
	mgr.Start()

	waitIdle := func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if mgr.State() == worker.Idle {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		fmt.Fprintln(os.Stderr, "WAIT: timed out")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "KEYDOWN":
			mgr.Press()
		case cmd == "KEYUP":
			mgr.Release()
		case cmd == "WAIT":
			waitIdle()
		case cmd == "RESTART":
			mgr.Restart()
		case cmd == "CRASH_BACKEND":
			if fb != nil {
				fb.Exit()
			}
		case cmd == "QUIT":
			mgr.Shutdown()
			log.SessionEnd(transcriptCount())
			return
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case cmd == "" || strings.HasPrefix(cmd, "#"):
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		}
	}
	mgr.Shutdown()
}
