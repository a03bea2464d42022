package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/config"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#1F5FA8") // Clearscribe blue
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Clearscribe"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// ReportError prints the one-line status for err followed by its detail.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), ErrorStatus(err))
	fmt.Fprintf(w, "  %s\n", KeyStyle.Render(err.Error()))
}

// ErrorStatus returns a short user-facing status for err.
func ErrorStatus(err error) string {
	var (
		cfgErr     *config.ConfigError
		valErr     *audio.ValidationError
		enhErr     *processor.EnhancementError
		decErr     *audio.DecodeError
		backendErr *stt.BackendError
		adaptErr   *transcript.AdapterError
	)

	switch {
	case errors.As(err, &cfgErr):
		return "configuration problem, check the config file and environment"
	case errors.As(err, &valErr):
		if valErr.Field == "size" {
			return "file is too large"
		}
		return "unsupported file type"
	case errors.As(err, &enhErr):
		if enhErr.Reason == processor.ReasonDecodeFailed {
			return "could not read the recording"
		}
		return "enhancement failed"
	case errors.As(err, &decErr):
		return "could not read the recording"
	case errors.As(err, &backendErr):
		return "transcription service error"
	case errors.As(err, &adaptErr):
		if adaptErr.Reason == transcript.ReasonEmptyInput {
			return "no speech was recognised"
		}
		return "transcription result could not be processed"
	}
	return "unexpected error"
}
