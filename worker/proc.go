package worker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"wisp/log"
)

// ErrNotFound means no backend executable exists at any candidate path.
// Callers treat this as "dictation unavailable", never as fatal.
var ErrNotFound = errors.New("no transcription backend found")

const terminateTimeout = 2 * time.Second

// Launch is one way to start the backend: an executable plus fixed args.
type Launch struct {
	Path string
	Args []string
}

func bundledName() string {
	if runtime.GOOS == "windows" {
		return "wisp-backend.exe"
	}
	return "wisp-backend"
}

// Candidates returns the ordered launch candidates for the backend:
// a bundled binary next to the application executable, then the
// development fallback (interpreter + script). Pure; existence is
// checked by Resolve.
func Candidates(exeDir string) []Launch {
	python := os.Getenv("WISP_DEV_PYTHON")
	if python == "" {
		python = filepath.Join(exeDir, ".venv", "bin", "python")
	}
	script := os.Getenv("WISP_DEV_SCRIPT")
	if script == "" {
		script = filepath.Join(exeDir, "python", "backend_daemon.py")
	}
	return []Launch{
		{Path: filepath.Join(exeDir, bundledName())},
		{Path: python, Args: []string{script}},
	}
}

// Resolve picks the first candidate whose path exists on disk.
func Resolve(exeDir string) (Launch, error) {
	for _, c := range Candidates(exeDir) {
		if _, err := os.Stat(c.Path); err == nil {
			return c, nil
		}
	}
	return Launch{}, ErrNotFound
}

// ResolveDefault resolves relative to the running binary's directory.
func ResolveDefault() (Launch, error) {
	exe, err := os.Executable()
	if err != nil {
		return Launch{}, fmt.Errorf("locating executable: %w", err)
	}
	return Resolve(filepath.Dir(exe))
}

// Proc is a running backend process with its three pipes. It is owned
// exclusively by the Manager; nobody else writes to or terminates it.
type Proc struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	pid  int
	wait func() error
	kill func() error
}

func (p *Proc) Pid() int { return p.pid }

// Spawn launches the backend with all three streams piped.
func Spawn(l Launch) (*Proc, error) {
	cmd := exec.Command(l.Path, l.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", l.Path, err)
	}
	log.Workerf("spawned backend pid=%d path=%s", cmd.Process.Pid, l.Path)
	return &Proc{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		pid:    cmd.Process.Pid,
		wait:   cmd.Wait,
		kill:   cmd.Process.Kill,
	}, nil
}

// Terminate closes the command sink and waits up to terminateTimeout
// for the process to exit, then kills it. Best effort; must only be
// called outside the session guard.
func (p *Proc) Terminate() {
	if line, err := Encode(Quit{}); err == nil {
		p.Stdin.Write(line)
	}
	p.Stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.wait() }()

	select {
	case err := <-done:
		if err != nil {
			log.Workerf("backend pid=%d exited: %v", p.pid, err)
		} else {
			log.Workerf("backend pid=%d exited cleanly", p.pid)
		}
	case <-time.After(terminateTimeout):
		log.Warnf("backend pid=%d did not exit, killing", p.pid)
		if err := p.kill(); err != nil {
			log.Warnf("kill backend pid=%d: %v", p.pid, err)
		}
		<-done
	}
}
