package worker

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// FakeBackend emulates the transcription backend over in-memory pipes,
// for tests and the headless test mode. It decodes the commands the
// manager writes and lets the driver emit event lines back.
type FakeBackend struct {
	cmdR *io.PipeReader
	cmdW *io.PipeWriter
	evR  *io.PipeReader
	evW  *io.PipeWriter

	commands chan map[string]any
	done     chan struct{}
	once     sync.Once

	// OnCommand, when set before Spawn, runs on the command-reader
	// goroutine for every decoded command.
	OnCommand func(cmd map[string]any)
}

func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		commands: make(chan map[string]any, 32),
		done:     make(chan struct{}),
	}
	f.cmdR, f.cmdW = io.Pipe()
	f.evR, f.evW = io.Pipe()
	go f.readCommands()
	return f
}

// Spawn satisfies SpawnFunc.
func (f *FakeBackend) Spawn() (*Proc, error) {
	return &Proc{
		Stdin:  f.cmdW,
		Stdout: f.evR,
		pid:    -1,
		wait: func() error {
			<-f.done
			return nil
		},
		kill: func() error {
			f.Exit()
			return nil
		},
	}, nil
}

func (f *FakeBackend) readCommands() {
	sc := bufio.NewScanner(f.cmdR)
	for sc.Scan() {
		var cmd map[string]any
		if err := json.Unmarshal(sc.Bytes(), &cmd); err != nil {
			continue
		}
		if name, _ := cmd["cmd"].(string); name == "quit" {
			f.Exit()
			return
		}
		if f.OnCommand != nil {
			f.OnCommand(cmd)
		}
		select {
		case f.commands <- cmd:
		default:
		}
	}
	f.Exit()
}

// Commands exposes the decoded command stream.
func (f *FakeBackend) Commands() <-chan map[string]any { return f.commands }

// NextCommand waits for the next command or times out.
func (f *FakeBackend) NextCommand(timeout time.Duration) (map[string]any, bool) {
	select {
	case cmd := <-f.commands:
		return cmd, true
	case <-time.After(timeout):
		return nil, false
	}
}

// Emit writes one JSON event line to the backend's output stream.
func (f *FakeBackend) Emit(fields map[string]any) {
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	f.evW.Write(append(data, '\n'))
}

// EmitRaw writes an arbitrary output line, newline appended.
func (f *FakeBackend) EmitRaw(line string) {
	f.evW.Write([]byte(line + "\n"))
}

// Exit simulates the backend terminating: the event stream closes and
// pending pipe operations unblock.
func (f *FakeBackend) Exit() {
	f.once.Do(func() {
		close(f.done)
		f.evW.Close()
		f.cmdR.Close()
	})
}
