package worker

import (
	"bufio"
	"io"

	"wisp/log"
)

// maxLineSize bounds a single backend output line. Transcripts are
// short; anything bigger is the backend misbehaving.
const maxLineSize = 1024 * 1024

// readEvents drains the backend's event stream one line at a time until
// it closes, decoding each line and handing events to the manager. It
// runs on its own goroutine so a slow command path never stalls event
// delivery, and it never calls the notifier while the manager's guard
// is held. Stream closure is a recoverable condition, reported to the
// manager as worker-lost.
func (m *Manager) readEvents(gen int, r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		for _, ev := range DecodeLine(sc.Bytes()) {
			m.handleEvent(gen, ev)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warnf("backend read: %v", err)
	}
	m.workerLost(gen)
}

// drainStderr forwards backend diagnostics to the log. Nothing on this
// stream ever reaches the UI.
func drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			log.Workerf("stderr: %s", line)
		}
	}
}
