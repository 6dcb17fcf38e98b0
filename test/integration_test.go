//go:build integration

package test_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("WISP_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "WISP_TEST_BIN not set; run: make test-integration")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func runWisp(t *testing.T, stdin string, args ...string) (logDir string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir, "-test"}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("wisp exited with error: %v\noutput: %s", err, out)
	}
	return logDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func requireTranscription(t *testing.T, logDir string) string {
	t.Helper()
	text := readLog(t, logDir, "transcribe_log.txt")
	if strings.TrimSpace(text) == "" {
		t.Fatal("transcribe_log.txt is empty, expected transcribed words")
	}
	return text
}

func TestDictationWords(t *testing.T) {
	logDir := runWisp(t, cmds("SLEEP 200", "KEYDOWN", "SLEEP 100", "KEYUP", "WAIT", "QUIT"))
	requireTranscription(t, logDir)
}

func TestTwoSessions(t *testing.T) {
	logDir := runWisp(t, cmds(
		"SLEEP 200",
		"KEYDOWN", "SLEEP 100", "KEYUP", "WAIT",
		"KEYDOWN", "SLEEP 100", "KEYUP", "WAIT",
		"QUIT"))
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if strings.Count(diag, "transcription") < 2 {
		t.Error("expected 2 transcription entries in diagnostics")
	}
}

func TestDuplicateKeydownIgnored(t *testing.T) {
	logDir := runWisp(t, cmds(
		"SLEEP 200",
		"KEYDOWN", "KEYDOWN", "SLEEP 100", "KEYUP", "WAIT",
		"QUIT"))
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if strings.Count(diag, "recording_started") != 1 {
		t.Error("duplicate keydown should not start a second session")
	}
}

func TestStrayKeyupIgnored(t *testing.T) {
	_ = runWisp(t, cmds("SLEEP 200", "KEYUP", "SLEEP 100", "QUIT"))
}

func TestBackendCrashRecovers(t *testing.T) {
	logDir := runWisp(t, cmds(
		"SLEEP 200",
		"CRASH_BACKEND", "SLEEP 200",
		"KEYDOWN", "SLEEP 100", "KEYUP", "SLEEP 200",
		"RESTART", "SLEEP 300",
		"KEYDOWN", "SLEEP 100", "KEYUP", "WAIT",
		"QUIT"))
	requireTranscription(t, logDir)
}
