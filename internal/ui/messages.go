package ui

import "time"

// ProgressMsg reports progress within one enhancement stage.
type ProgressMsg struct {
	Stage    string  // processor.StageDecode, StageAnalyse, StageRender or StageMeasure
	Progress float64 // 0.0 to 1.0
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex      int
	LoudnessBefore float64
	LoudnessAfter  float64
	SNRBefore      float64
	SNRAfter       float64
	OutputPath     string
	ReportPath     string
	Elapsed        time.Duration
	Error          error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
