// Package ui provides the Bubbletea terminal user interface for clearscribe
package ui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/sirupsen/logrus"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusRunning
	StatusComplete
	StatusError
)

// stageOrder numbers the enhancement stages for display.
var stageOrder = []string{
	processor.StageDecode,
	processor.StageAnalyse,
	processor.StageRender,
	processor.StageMeasure,
}

func stageIndex(stage string) int {
	for i, s := range stageOrder {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath  string
	OutputPath string
	ReportPath string
	Status     FileStatus

	Stage       string
	Progress    float64 // 0.0 to 1.0 within Stage
	StartTime   time.Time
	ElapsedTime time.Duration

	LoudnessBefore float64
	LoudnessAfter  float64
	SNRBefore      float64
	SNRAfter       float64

	Error error
}

// Model is the Bubbletea model for the enhancement UI
type Model struct {
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	StartTime time.Time
	Done      bool

	// ProgressChan carries messages from the enhancement goroutine.
	ProgressChan chan tea.Msg

	// Log receives UI debug events. Nil discards them.
	Log logrus.FieldLogger

	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{InputPath: path, Status: StatusQueued}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1,
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		m.logger().WithFields(logrus.Fields{"index": msg.FileIndex, "file": msg.FileName}).Debug("file started")
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, waitForProgress(m.ProgressChan)
		}
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusRunning
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		m.logger().WithField("index", msg.FileIndex).Debug("file complete")
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, waitForProgress(m.ProgressChan)
		}
		f := &m.Files[msg.FileIndex]
		f.LoudnessBefore = msg.LoudnessBefore
		f.LoudnessAfter = msg.LoudnessAfter
		f.SNRBefore = msg.SNRBefore
		f.SNRAfter = msg.SNRAfter
		f.OutputPath = msg.OutputPath
		f.ReportPath = msg.ReportPath
		f.ElapsedTime = msg.Elapsed
		f.Error = msg.Error

		if msg.Error != nil {
			f.Status = StatusError
			m.FailedFiles++
		} else {
			f.Status = StatusComplete
			m.CompletedFiles++
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}

func (m Model) logger() logrus.FieldLogger {
	if m.Log != nil {
		return m.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	fp.Stage = msg.Stage
	fp.Progress = msg.Progress
	fp.ElapsedTime = time.Since(fp.StartTime)
	if fp.Status == StatusQueued {
		fp.Status = StatusRunning
	}
	return fp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
