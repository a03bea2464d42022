package logging

import (
	"math"
	"strings"
	"testing"

	"github.com/linuxmatters/clearscribe/internal/processor"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0, 1, "0.0"},
		{"rounding", 12.345, 2, "12.35"},
		{"negative", -3.14159, 1, "-3.1"},
		{"nan", math.NaN(), 1, MissingValue},
		{"inf", math.Inf(1), 1, MissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetric(tt.value, tt.decimals); got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatLevels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"db normal", formatDb(-12.34, 1), "-12.3"},
		{"db floor", formatDb(processor.SilenceDb, 1), "< -120"},
		{"db -inf", formatDb(math.Inf(-1), 1), "< -120"},
		{"db nan", formatDb(math.NaN(), 1), MissingValue},
		{"lufs normal", formatLUFS(-16.04), "-16.0"},
		{"lufs below floor", formatLUFS(-90), "< -70"},
		{"crest 2x", formatCrest(2), "6.0"},
		{"crest silent", formatCrest(0), MissingValue},
		{"signed positive", formatSigned(2.5, 1), "+2.5"},
		{"signed negative", formatSigned(-1.25, 2), "-1.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestMetricTableString(t *testing.T) {
	tbl := NewComparisonTable()
	tbl.AddRow("Loudness", []string{"-23.0", "-14.0"}, "LUFS", "broadcast range")
	tbl.AddRow("SNR", []string{"12.5", ""}, "dB", "")

	want := "" +
		"          Original  Enhanced       Interpretation\n" +
		"Loudness     -23.0     -14.0 LUFS  broadcast range\n" +
		"SNR           12.5         - dB\n"
	if got := tbl.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestMetricTableWithoutInterpretation(t *testing.T) {
	tbl := &MetricTable{Headers: []string{"A"}}
	tbl.AddRow("x", []string{"1"}, "", "")
	if got, want := tbl.String(), "   A\nx  1\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if (&MetricTable{}).String() != "" {
		t.Error("empty table should render nothing")
	}
}

func TestMetricsTable(t *testing.T) {
	before := processor.AudioMetrics{VolumeLevel: 5, Loudness: -30, PeakDb: -10, SNR: 10, Clarity: 40, RMS: 0.05, NoiseFloor: 0.01, CrestFactor: 4}
	after := processor.AudioMetrics{VolumeLevel: 20, Loudness: -14, PeakDb: -1.5, SNR: 25, Clarity: 60, RMS: 0.2, NoiseFloor: 0.01, CrestFactor: 3}

	tbl := MetricsTable(before, after)
	if len(tbl.Rows) != 8 {
		t.Fatalf("rows = %d, want 8", len(tbl.Rows))
	}
	out := tbl.String()
	for _, want := range []string{"Original", "Enhanced", "Loudness", "-30.0", "-14.0", "broadcast range", "fair", "Noise Floor", "-40.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
