package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/mains"
	"github.com/linuxmatters/clearscribe/internal/processor"
)

// AnalysisData is everything shown by the analyze command for one file.
type AnalysisData struct {
	Path     string
	Metadata *audio.Metadata
	Metrics  processor.AudioMetrics
	HumDb    float64
	Mains    mains.Detection
	Tips     []RecordingTip
}

// DisplayAnalysis writes a console summary of one file's measurements.
func DisplayAnalysis(w io.Writer, d AnalysisData) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(d.Path))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if m := d.Metadata; m != nil {
		fmt.Fprintf(w, "Format:      %s (%s)\n", m.Format, m.MIMEType)
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(m.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", m.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(m.Channels))
		fmt.Fprintln(w)
	}

	m := d.Metrics
	fmt.Fprintln(w, "LEVELS")
	fmt.Fprintf(w, "  Volume:         %s%%\n", formatMetric(m.VolumeLevel, 1))
	fmt.Fprintf(w, "  Loudness:       %s LUFS (%s)\n", formatLUFS(m.Loudness), interpretLoudness(m.Loudness))
	fmt.Fprintf(w, "  Peak:           %s dBFS\n", formatDb(m.PeakDb, 1))
	fmt.Fprintf(w, "  Crest Factor:   %s dB\n", formatCrest(m.CrestFactor))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "QUALITY")
	fmt.Fprintf(w, "  Noise Floor:    %s dBFS\n", formatDb(processor.LinearToDb(m.NoiseFloor), 1))
	fmt.Fprintf(w, "  SNR:            %s dB", formatMetric(m.SNR, 1))
	if note := interpretSNR(m.SNR); note != "" {
		fmt.Fprintf(w, " (%s)", note)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Clarity:        %s%%\n", formatMetric(m.Clarity, 0))
	fmt.Fprintf(w, "  Peak Frequency: %s Hz\n", formatMetric(m.PeakFrequency, 0))
	fmt.Fprintf(w, "  Mains Hum:      %s dB at %d Hz (%s)\n", formatDb(d.HumDb, 1), d.Mains.Hz, mainsSource(d.Mains))
	fmt.Fprintln(w)

	if len(d.Tips) > 0 {
		fmt.Fprintln(w, "RECORDING TIPS")
		for _, line := range strings.Split(strings.TrimRight(FormatTips(d.Tips, 68), "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}
}

func mainsSource(d mains.Detection) string {
	switch d.Source {
	case mains.SourceConfig:
		return "configured"
	case mains.SourceTimezone:
		if d.Country != "" {
			return "detected: " + d.Country
		}
		return "detected"
	}
	return "default"
}

// formatDurationHMS formats seconds as "Xh Ym Zs", "Ym Zs" or "Z.Zs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	total := int(seconds)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	}
	return fmt.Sprintf("%d channels", channels)
}
