package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// AnalysisModel is a single-file spinner view used while a recording is
// analysed or transcribed. Results are printed by the caller after the
// program exits.
type AnalysisModel struct {
	Mode string // subtitle, e.g. "Analysis Mode"

	FileName string
	FilePath string

	Stage     string
	Progress  float64 // 0.0 to 1.0 within Stage; 0 shows an indeterminate spinner
	StartTime time.Time

	stages []string // in order of first report; the last is running

	spinnerIndex int

	Error error
	Done  bool

	Width  int
	Height int
}

// AnalysisStartMsg signals work on a file has started
type AnalysisStartMsg struct {
	FilePath string
}

// AnalysisProgressMsg signals progress update
type AnalysisProgressMsg struct {
	Stage    string
	Progress float64
}

// AnalysisCompleteMsg signals the work has finished
type AnalysisCompleteMsg struct {
	Error error
}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time

// NewAnalysisModel creates a new spinner model with the given subtitle.
func NewAnalysisModel(mode string) AnalysisModel {
	return AnalysisModel{
		Mode:      mode,
		StartTime: time.Now(),
	}
}

// Init initializes the model
func (m AnalysisModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil

	case AnalysisStartMsg:
		m.FileName = filepath.Base(msg.FilePath)
		m.FilePath = msg.FilePath
		m.StartTime = time.Now()
		return m, nil

	case AnalysisProgressMsg:
		if msg.Stage != "" && msg.Stage != m.Stage {
			m.stages = append(append([]string(nil), m.stages...), msg.Stage)
		}
		m.Stage = msg.Stage
		m.Progress = msg.Progress
		return m, nil

	case AnalysisCompleteMsg:
		m.Error = msg.Error
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m AnalysisModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(brandColor).Render("Clearscribe"))
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render(m.Mode))
	b.WriteString("\n\n")

	if m.FileName == "" {
		b.WriteString("Waiting...")
		return b.String()
	}

	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	b.WriteString("File: " + fileStyle.Render(m.FileName) + "\n\n")

	elapsed := time.Since(m.StartTime)
	for i, stage := range m.stages {
		current := i == len(m.stages)-1 && !m.Done
		b.WriteString(renderStageLine(stage, current, m.Progress, spinnerFrames[m.spinnerIndex], elapsed))
		b.WriteString("\n")
	}
	if len(m.stages) == 0 && !m.Done {
		b.WriteString(lipgloss.NewStyle().Foreground(brandColor).Render(spinnerFrames[m.spinnerIndex]))
		b.WriteString(fmt.Sprintf(" working... [%s]\n", formatElapsed(elapsed)))
	}

	return b.String()
}

// renderStageLine shows a finished stage with a tick and the running stage
// with a spinner, plus a bar while its progress is known.
func renderStageLine(stage string, current bool, progress float64, frame string, elapsed time.Duration) string {
	if !current {
		return lipgloss.NewStyle().Foreground(successColor).Render("✓") + " " + stage
	}

	spinner := lipgloss.NewStyle().Foreground(brandColor).Render(frame)
	if progress > 0 && progress < 1.0 {
		return fmt.Sprintf("%s %-10s %s", spinner, stage, renderAnalysisProgressBar(progress, 30, elapsed))
	}
	return fmt.Sprintf("%s %s... [%s]", spinner, stage, formatElapsed(elapsed))
}

// renderAnalysisProgressBar renders a progress bar with percentage and elapsed time
func renderAnalysisProgressBar(progress float64, width int, elapsed time.Duration) string {
	filled := int(progress * float64(width))
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(brandColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("━", empty))

	return fmt.Sprintf("%s %3d%% [%s]", bar, int(progress*100), formatElapsed(elapsed))
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
