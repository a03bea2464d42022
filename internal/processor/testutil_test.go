package processor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/clearscribe/internal/audio"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64 // Total duration in seconds
	SampleRate   int     // Sample rate (default: 44100)
	Channels     int     // Channel count (default: 1); channels carry identical content
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone level in dBFS (e.g., -23.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise, -60 = quiet noise)
	SilenceGap   struct {
		Start    float64 // Start time of silence gap in seconds
		Duration float64 // Duration of silence gap in seconds
	}
}

// generateTestBuffer creates a synthetic buffer for testing.
// The generated audio can include a sine wave tone, white noise, and silence gaps.
func generateTestBuffer(t *testing.T, opts TestAudioOptions) audio.Buffer {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 1.0
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}

	totalSamples := int(opts.DurationSecs * float64(opts.SampleRate))
	samples := make([]float64, totalSamples)

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}

	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	silenceStart := int(opts.SilenceGap.Start * float64(opts.SampleRate))
	silenceEnd := int((opts.SilenceGap.Start + opts.SilenceGap.Duration) * float64(opts.SampleRate))

	// Simple LCG for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	for i := range samples {
		if i >= silenceStart && i < silenceEnd && opts.SilenceGap.Duration > 0 {
			continue
		}

		var sample float64
		if toneAmp > 0 {
			sec := float64(i) / float64(opts.SampleRate)
			sample += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*sec)
		}
		if noiseAmp > 0 {
			sample += noiseAmp * nextRandom()
		}
		samples[i] = math.Max(-1, math.Min(1, sample))
	}

	channels := make([][]float64, opts.Channels)
	for c := range channels {
		channels[c] = samples
	}
	buf, err := audio.NewBuffer(opts.SampleRate, channels...)
	if err != nil {
		t.Fatalf("failed to build test buffer: %v", err)
	}
	return buf
}

// generateTestWAV renders a synthetic buffer to 16-bit WAV bytes.
func generateTestWAV(t *testing.T, opts TestAudioOptions) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clearscribe-test.wav")
	if err := audio.WriteWAVFile(path, generateTestBuffer(t, opts)); err != nil {
		t.Fatalf("failed to write WAV file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read WAV file: %v", err)
	}
	return data
}

// checkFinite fails the test if any metric is NaN or infinite.
func checkFinite(t *testing.T, m AudioMetrics) {
	t.Helper()
	fields := map[string]float64{
		"VolumeLevel":   m.VolumeLevel,
		"PeakFrequency": m.PeakFrequency,
		"SNR":           m.SNR,
		"Clarity":       m.Clarity,
		"RMS":           m.RMS,
		"PeakDb":        m.PeakDb,
		"CrestFactor":   m.CrestFactor,
		"NoiseFloor":    m.NoiseFloor,
		"Loudness":      m.Loudness,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want a finite value", name, v)
		}
	}
}
