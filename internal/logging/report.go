package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/clearscribe/internal/processor"
)

// ReportData is the input to GenerateReport.
type ReportData struct {
	InputPath  string
	OutputPath string
	StartTime  time.Time
	EndTime    time.Time
	Result     *processor.EnhancementResult
	Tips       []RecordingTip
}

// ReportPath returns the report file name for an output file:
// talk-enhanced.wav → talk-enhanced.log.
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport writes the enhancement report next to the output file and
// returns its path.
func GenerateReport(data ReportData) (string, error) {
	path := ReportPath(data.OutputPath)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, data); err != nil {
		return "", err
	}
	return path, f.Close()
}

// WriteReport renders the report to w.
func WriteReport(w io.Writer, data ReportData) error {
	res := data.Result
	if res == nil {
		return fmt.Errorf("report: no enhancement result")
	}

	fmt.Fprintln(w, "Clearscribe Enhancement Report")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(w, "Request: %s\n", res.RequestID)
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Duration: %s\n\n", formatDurationHMS(res.Original.Seconds()))

	writeSection(w, "Processing Summary")
	total := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Enhancement: %s\n", formatDuration(res.Duration))
	fmt.Fprintf(w, "Total:       %s", formatDuration(total))
	if secs := res.Original.Seconds(); secs > 0 && total > 0 {
		fmt.Fprintf(w, " (%.0fx real-time)", secs/total.Seconds())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	writeSection(w, "Options")
	o := res.Options
	fmt.Fprintf(w, "Noise Reduction:      %.0f%%\n", o.NoiseReduction*100)
	fmt.Fprintf(w, "Speech Enhancement:   %.0f%%\n", o.SpeechEnhancement*100)
	fmt.Fprintf(w, "Dereverberation:      %s\n", onOff(o.Dereverberation))
	fmt.Fprintf(w, "Volume Normalisation: %s\n\n", volumeMode(o.VolumeNormalization))

	writeSection(w, "Filter Chain")
	for i, id := range res.Filters {
		status := ""
		for _, b := range res.Bypassed {
			if b == id {
				status = " (bypassed: above Nyquist)"
			}
		}
		fmt.Fprintf(w, "%d. %s%s\n", i+1, id, status)
	}
	fmt.Fprintf(w, "Graph: %s\n\n", res.Chain)

	if n := res.Normalisation; n != nil {
		writeSection(w, "Loudness Normalisation")
		if n.Skipped {
			fmt.Fprintln(w, "Skipped: input is silent")
		} else {
			fmt.Fprintf(w, "Input:     %s LUFS, peak %s dBFS\n", formatLUFS(n.InputLUFS), formatDb(n.InputPeakDb, 1))
			fmt.Fprintf(w, "Target:    %.1f LUFS", n.RequestedTargetI)
			if n.PeakLimited {
				fmt.Fprintf(w, " (limited to %.1f LUFS by the peak ceiling)", n.EffectiveTargetI)
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Gain:      %s dB\n", formatSigned(n.GainApplied, 1))
		}
		fmt.Fprintln(w)
	}

	writeSection(w, "Measurements")
	fmt.Fprint(w, MetricsTable(res.Before, res.After).String())
	fmt.Fprintln(w)

	if len(data.Tips) > 0 {
		writeSection(w, "Recording Tips")
		fmt.Fprint(w, FormatTips(data.Tips, 78))
	}
	return nil
}

func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// formatDuration renders a processing time at a readable precision.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func onOff(b bool) string {
	if b {
		return "on (no processing stage)"
	}
	return "off"
}

func volumeMode(v float64) string {
	switch {
	case v > 0:
		return fmt.Sprintf("x%.2f linear gain", v)
	case v < 0:
		return fmt.Sprintf("%.1f LUFS target", v)
	}
	return "off"
}
