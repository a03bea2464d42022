package logging

import (
	"fmt"
	"math"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/processor"
)

// MetricRow is one labelled row of a comparison table. Values are
// pre-formatted so rows can mix precisions.
type MetricRow struct {
	Label          string
	Values         []string // one per header; "" renders as MissingValue
	Unit           string
	Interpretation string // optional
}

// MetricTable renders aligned metric columns such as Original → Enhanced.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// NewComparisonTable returns an empty Original/Enhanced table.
func NewComparisonTable() *MetricTable {
	return &MetricTable{Headers: []string{"Original", "Enhanced"}}
}

// AddRow appends a pre-formatted row.
func (t *MetricTable) AddRow(label string, values []string, unit, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: values, Unit: unit, Interpretation: interpretation})
}

// String renders the table. Labels are left-aligned, values right-aligned,
// and the interpretation column only appears when a row has one.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelW, unitW := 0, 0
	valueW := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		valueW[i] = len(h)
	}
	interpret := false
	for _, r := range t.Rows {
		labelW = max(labelW, len(r.Label))
		unitW = max(unitW, len(r.Unit))
		for i := range valueW {
			valueW[i] = max(valueW[i], len(cell(r.Values, i)))
		}
		interpret = interpret || r.Interpretation != ""
	}

	var sb strings.Builder
	line := func(label string, values []string, unit, note string) {
		var row strings.Builder
		fmt.Fprintf(&row, "%-*s", labelW, label)
		for i, w := range valueW {
			fmt.Fprintf(&row, "  %*s", w, values[i])
		}
		if unitW > 0 {
			fmt.Fprintf(&row, " %-*s", unitW, unit)
		}
		if interpret && note != "" {
			row.WriteString("  " + note)
		}
		sb.WriteString(strings.TrimRight(row.String(), " "))
		sb.WriteString("\n")
	}

	heading := ""
	if interpret {
		heading = "Interpretation"
	}
	line("", t.Headers, "", heading)
	for _, r := range t.Rows {
		vals := make([]string, len(valueW))
		for i := range vals {
			vals[i] = cell(r.Values, i)
		}
		line(r.Label, vals, r.Unit, r.Interpretation)
	}
	return sb.String()
}

func cell(values []string, i int) string {
	if i < len(values) && values[i] != "" {
		return values[i]
	}
	return MissingValue
}

// MetricsTable compares metrics before and after enhancement.
func MetricsTable(before, after processor.AudioMetrics) *MetricTable {
	t := NewComparisonTable()
	pair := func(f func(processor.AudioMetrics) string) []string {
		return []string{f(before), f(after)}
	}

	t.AddRow("Volume", pair(func(m processor.AudioMetrics) string { return formatMetric(m.VolumeLevel, 1) }), "%", "")
	t.AddRow("Loudness", pair(func(m processor.AudioMetrics) string { return formatLUFS(m.Loudness) }), "LUFS", interpretLoudness(after.Loudness))
	t.AddRow("Peak", pair(func(m processor.AudioMetrics) string { return formatDb(m.PeakDb, 1) }), "dBFS", interpretPeak(after.PeakDb))
	t.AddRow("Noise Floor", pair(func(m processor.AudioMetrics) string { return formatDb(processor.LinearToDb(m.NoiseFloor), 1) }), "dBFS", "")
	t.AddRow("SNR", pair(func(m processor.AudioMetrics) string { return formatMetric(m.SNR, 1) }), "dB", interpretSNR(after.SNR))
	t.AddRow("Clarity", pair(func(m processor.AudioMetrics) string { return formatMetric(m.Clarity, 0) }), "%", "")
	t.AddRow("Crest Factor", pair(func(m processor.AudioMetrics) string { return formatCrest(m.CrestFactor) }), "dB", "")
	t.AddRow("Peak Frequency", pair(func(m processor.AudioMetrics) string { return formatMetric(m.PeakFrequency, 0) }), "Hz", "")
	return t
}

// formatMetric formats a value to the given precision. Non-finite values
// become MissingValue.
func formatMetric(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// formatDb shows levels at or below the silence floor as "< -120".
func formatDb(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 1) {
		return MissingValue
	}
	if math.IsInf(v, -1) || v <= processor.SilenceDb {
		return "< -120"
	}
	return formatMetric(v, decimals)
}

// lufsFloor is the quietest loudness worth printing as a number.
const lufsFloor = -70.0

func formatLUFS(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 1) {
		return MissingValue
	}
	if v < lufsFloor {
		return "< -70"
	}
	return formatMetric(v, 1)
}

// formatCrest converts a linear crest factor to dB; zero means silence.
func formatCrest(ratio float64) string {
	if ratio <= 0 {
		return MissingValue
	}
	return formatMetric(processor.LinearToDb(ratio), 1)
}

// formatSigned prints an explicit sign, e.g. "+2.5".
func formatSigned(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, v)
}

func interpretLoudness(lufs float64) string {
	switch {
	case lufs < lufsFloor:
		return "silent"
	case lufs < -24:
		return "quiet"
	case lufs <= -12:
		return "broadcast range"
	}
	return "loud"
}

func interpretPeak(db float64) string {
	switch {
	case db >= -0.1:
		return "clipping"
	case db > -1:
		return "little headroom"
	}
	return ""
}

func interpretSNR(db float64) string {
	switch {
	case db <= 0:
		return ""
	case db < 15:
		return "noisy"
	case db < 30:
		return "fair"
	}
	return "clean"
}
