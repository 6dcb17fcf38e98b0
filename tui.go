package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct{}
type TranscribingMsg struct{}
type TranscriptionMsg struct {
	Text     string
	Copied   bool
	NoSpeech bool
}
type TranscriptionErrorMsg struct{ Text string }
type AudioLevelMsg struct{ Level float64 }
type StatusMsg struct{ Name string }
type ModelReadyMsg struct{}
type DeviceLineMsg struct{ Text string }
type ModeLineMsg struct{ Text string }
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
	tuiStateTranscribing
)

type tuiModel struct {
	state          tuiState
	modelReady     bool
	recordingStart time.Time
	audioLevel     float64
	peakLevel      float64
	status         string
	width, height  int
	deviceLine     string
	modeLine       string
	lastText       string
	lastCopied     bool
	noSpeech       bool
	lastError      string
	count          int
}

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	recStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	busyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	meterOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	meterHot    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	meterOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{})
}

// tuiSend delivers a message to the TUI if one is running.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case RecordingStartMsg:
		m.state = tuiStateRecording
		m.recordingStart = time.Now()
		m.audioLevel = 0
		m.peakLevel = 0
		m.lastError = ""

	case RecordingStopMsg:
		m.state = tuiStateIdle

	case TranscribingMsg:
		m.state = tuiStateTranscribing

	case TranscriptionMsg:
		m.state = tuiStateIdle
		m.lastText = msg.Text
		m.lastCopied = msg.Copied
		m.noSpeech = msg.NoSpeech
		m.count++

	case TranscriptionErrorMsg:
		m.state = tuiStateIdle
		m.lastError = msg.Text

	case AudioLevelMsg:
		m.audioLevel = msg.Level
		if msg.Level > m.peakLevel {
			m.peakLevel = msg.Level
		}

	case StatusMsg:
		m.status = msg.Name

	case ModelReadyMsg:
		m.modelReady = true

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case ModeLineMsg:
		m.modeLine = msg.Text

	case tickMsg:
		return m, tuiTick()
	}
	return m, nil
}

func renderMeter(level float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(level * float64(width) * 3) // mic RMS rarely passes 0.3
	if filled > width {
		filled = width
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < filled && i >= width*3/4:
			b.WriteString(meterHot.Render("█"))
		case i < filled:
			b.WriteString(meterOn.Render("█"))
		default:
			b.WriteString(meterOff.Render("░"))
		}
	}
	return b.String()
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wisp"))
	b.WriteString(dimStyle.Render(" " + version))
	b.WriteString("\n\n")

	switch m.state {
	case tuiStateRecording:
		dur := time.Since(m.recordingStart).Seconds()
		b.WriteString(recStyle.Render("● REC"))
		b.WriteString(fmt.Sprintf(" %5.1fs  ", dur))
		b.WriteString(renderMeter(m.audioLevel, 30))
	case tuiStateTranscribing:
		b.WriteString(busyStyle.Render("◌ transcribing..."))
	default:
		if m.modelReady {
			b.WriteString(idleStyle.Render("idle – hold the hotkey to dictate"))
		} else {
			b.WriteString(busyStyle.Render("loading model..."))
		}
	}
	b.WriteString("\n\n")

	if m.lastError != "" {
		b.WriteString(errStyle.Render("error: " + m.lastError))
		b.WriteString("\n\n")
	} else if m.noSpeech {
		b.WriteString(dimStyle.Render("(no speech detected)"))
		b.WriteString("\n\n")
	} else if m.lastText != "" {
		width := m.width - 4
		if width < 20 {
			width = 76
		}
		for _, line := range wrapText(m.lastText, width) {
			b.WriteString(textStyle.Render(line))
			b.WriteString("\n")
		}
		if m.lastCopied {
			b.WriteString(okStyle.Render("✓ copied to clipboard"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.deviceLine != "" {
		b.WriteString(dimStyle.Render(m.deviceLine))
		b.WriteString("\n")
	}
	if m.modeLine != "" {
		b.WriteString(dimStyle.Render(m.modeLine))
		b.WriteString("\n")
	}
	if m.count > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d transcription(s) this session", m.count)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

func wrapText(text string, width int) []string {
	var lines []string
	words := strings.Fields(text)
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
		} else if len(cur)+1+len(w) <= width {
			cur += " " + w
		} else {
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
