package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/clearscribe/internal/audio"
)

var (
	brandColor   = lipgloss.Color("#1F5FA8")
	accentColor  = lipgloss.Color("#FFA500")
	successColor = lipgloss.Color("#00AA00")
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderFileQueue(m))
	b.WriteString("\n\n")
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(brandColor).
		Render("Clearscribe - Recording Enhancement")

	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(fmt.Sprintf("Enhancing %d file(s)", m.TotalFiles))

	return title + "\n" + subtitle
}

func renderFileQueue(m Model) string {
	var b strings.Builder
	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")
		return fmt.Sprintf(" %s %s → %s\n   %s", icon, fileName, filepath.Base(file.OutputPath), fileSummary(file))

	case StatusRunning:
		icon := lipgloss.NewStyle().Foreground(accentColor).Render("⚙")
		return fmt.Sprintf(" %s %s → %s\n%s",
			icon, fileName, filepath.Base(audio.EnhancedPath(fileName)),
			renderFileDetails(file))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(errorColor).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, file.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

func fileSummary(file FileProgress) string {
	return fmt.Sprintf("Loudness: %.1f → %.1f LUFS | SNR: %.1f → %.1f dB",
		file.LoudnessBefore, file.LoudnessAfter, file.SNRBefore, file.SNRAfter)
}

// renderFileDetails renders detailed progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(brandColor).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	stage := file.Stage
	if stage == "" {
		stage = "starting"
	}
	content.WriteString(fmt.Sprintf("Stage %d/%d: %s\n", stageIndex(file.Stage), len(stageOrder), stage))
	content.WriteString(renderProgressBar(file.Progress, 40))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs", file.ElapsedTime.Seconds()))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = max(0, min(progress, 1))
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		content = fmt.Sprintf("Enhancing file %d of %d (%d complete, %d failed)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles, m.FailedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := "✨ Enhancement Complete!"
	color := successColor
	if m.FailedFiles > 0 {
		header = fmt.Sprintf("Enhancement finished with %d failure(s)", m.FailedFiles)
		color = errorColor
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(color).Render(header))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file))
			b.WriteString("\n")
		case StatusError:
			b.WriteString(renderFileEntry(file))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d file(s) enhanced\n", m.CompletedFiles, m.TotalFiles))

	return b.String()
}

// renderCompletedFile renders a summary for a completed file
func renderCompletedFile(file FileProgress) string {
	icon := lipgloss.NewStyle().Foreground(successColor).Render("✓")

	s := fmt.Sprintf(" %s %s → %s\n   %s | %.1fs",
		icon, filepath.Base(file.InputPath), filepath.Base(file.OutputPath),
		fileSummary(file), file.ElapsedTime.Seconds())
	if file.ReportPath != "" {
		s += "\n   Report: " + filepath.Base(file.ReportPath)
	}
	return s
}
