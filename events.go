package main

import (
	"sync"
	"time"

	"wisp/beep"
	"wisp/clipboard"
	"wisp/log"
	"wisp/tray"
)

// uiNotifier fans backend session notifications out to the TUI, tray,
// audio cues and logs. It is the single worker.Notifier the manager
// sees.
type uiNotifier struct {
	mu        sync.Mutex
	autoPaste bool
	lastText  string
	lastDur   float64
	prevClip  string
	clipping  bool
	count     int
}

var activeNotifier *uiNotifier

func newUINotifier(autoPaste bool) *uiNotifier {
	n := &uiNotifier{autoPaste: autoPaste}
	activeNotifier = n
	return n
}

func lastTranscript() string {
	if activeNotifier == nil {
		return ""
	}
	activeNotifier.mu.Lock()
	defer activeNotifier.mu.Unlock()
	return activeNotifier.lastText
}

func transcriptCount() int {
	if activeNotifier == nil {
		return 0
	}
	activeNotifier.mu.Lock()
	defer activeNotifier.mu.Unlock()
	return activeNotifier.count
}

func (n *uiNotifier) SetAutoPaste(on bool) {
	n.mu.Lock()
	n.autoPaste = on
	n.mu.Unlock()
}

func (n *uiNotifier) RecordingStarted() {
	n.mu.Lock()
	n.clipping = false
	n.mu.Unlock()
	tuiSend(RecordingStartMsg{})
	tray.SetRecording(true)
	go beep.PlayStart()
}

func (n *uiNotifier) RecordingStopped(duration float64) {
	n.mu.Lock()
	n.lastDur = duration
	n.mu.Unlock()

	tuiSend(RecordingStopMsg{})
	tray.SetRecording(false)
	go beep.PlayStop()
}

func (n *uiNotifier) TranscriptionStarted() {
	// Snapshot the clipboard now, before the backend overwrites it
	// with the transcript, so auto-paste can put it back afterwards.
	n.mu.Lock()
	paste := n.autoPaste
	n.mu.Unlock()
	if paste {
		if prev, err := clipboard.Read(); err == nil {
			n.mu.Lock()
			n.prevClip = prev
			n.mu.Unlock()
		}
	}
	tuiSend(TranscribingMsg{})
}

func (n *uiNotifier) TranscriptionDone(text string, copied, typed bool) {
	n.mu.Lock()
	n.count++
	dur := n.lastDur
	paste := n.autoPaste
	prev := n.prevClip
	n.prevClip = ""
	noSpeech := text == ""
	if !noSpeech {
		n.lastText = text
	}
	n.mu.Unlock()

	if !noSpeech {
		log.TranscriptionText(text)
		tray.SetLastTranscript(text, dur)
	}
	tuiSend(TranscriptionMsg{Text: text, Copied: copied, NoSpeech: noSpeech})
	go beep.PlayDone()

	// When copied is set the backend already placed the text on the
	// clipboard and auto-paste only replays the paste keystroke. When
	// it delivered bare text we copy and paste it ourselves.
	if paste && !typed && !noSpeech {
		go func() {
			var err error
			if copied {
				time.Sleep(50 * time.Millisecond)
				err = clipboard.Paste()
			} else {
				err = clipboard.Type(text)
			}
			if err != nil {
				log.Warnf("auto-paste failed: %v", err)
				return
			}
			if prev != "" {
				time.Sleep(600 * time.Millisecond)
				clipboard.Copy(prev)
			}
		}()
	}
}

func (n *uiNotifier) TranscriptionFailed(message string) {
	tuiSend(TranscriptionErrorMsg{Text: message})
	tray.SetError(message)
	go beep.PlayError()
}

// clipLevel is the normalized input level above which the session is
// considered clipping.
const clipLevel = 0.97

func (n *uiNotifier) AudioLevel(level float64) {
	hot := level >= clipLevel
	n.mu.Lock()
	changed := hot != n.clipping
	n.clipping = hot
	n.mu.Unlock()
	if changed {
		tray.SetWarning(hot)
	}
	tuiSend(AudioLevelMsg{Level: level})
}

func (n *uiNotifier) StatusChanged(name string) {
	log.Infof("backend status: %s", name)
	tuiSend(StatusMsg{Name: name})
}

func (n *uiNotifier) ModelReady() {
	tuiSend(ModelReadyMsg{})
}
