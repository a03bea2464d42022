package processor

import (
	"math"
	"testing"

	"github.com/linuxmatters/clearscribe/internal/audio"
)

func TestComputeMetricsNeverNaNOrInf(t *testing.T) {
	spike := make([]float64, 3000)
	spike[1500] = 1

	dc := make([]float64, 2048)
	for i := range dc {
		dc[i] = 0.5
	}

	square := make([]float64, 4096)
	for i := range square {
		if (i/50)%2 == 0 {
			square[i] = 1
		} else {
			square[i] = -1
		}
	}

	tests := []struct {
		name string
		buf  audio.Buffer
	}{
		{"tone", generateTestBuffer(t, TestAudioOptions{ToneFreq: 440, ToneLevel: -12})},
		{"noise", generateTestBuffer(t, TestAudioOptions{NoiseLevel: -40})},
		{"tone with gap", generateTestBuffer(t, TestAudioOptions{
			ToneFreq: 1000, ToneLevel: -6, NoiseLevel: -70,
			SilenceGap: struct{ Start, Duration float64 }{0.2, 0.5},
		})},
		{"stereo", generateTestBuffer(t, TestAudioOptions{Channels: 2, ToneFreq: 220, ToneLevel: -20, SampleRate: 8000})},
		{"silence", mustBuffer(t, 16000, make([]float64, 16000))},
		{"single sample", mustBuffer(t, 8000, []float64{0.3})},
		{"three samples", mustBuffer(t, 8000, []float64{0.1, -0.2, 0.3})},
		{"single spike", mustBuffer(t, 8000, spike)},
		{"dc offset", mustBuffer(t, 8000, dc)},
		{"full scale square", mustBuffer(t, 44100, square)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkFinite(t, ComputeMetrics(tt.buf))
		})
	}
}

func TestComputeMetricsSilence(t *testing.T) {
	m := ComputeMetrics(mustBuffer(t, 44100, make([]float64, 44100)))

	if m.Clarity != 0 {
		t.Errorf("Clarity = %v, want 0", m.Clarity)
	}
	if m.SNR != 0 {
		t.Errorf("SNR = %v, want floor 0", m.SNR)
	}
	if m.CrestFactor != 0 {
		t.Errorf("CrestFactor = %v, want 0", m.CrestFactor)
	}
	if m.PeakDb != SilenceDb {
		t.Errorf("PeakDb = %v, want %v", m.PeakDb, SilenceDb)
	}
	if m.Loudness != SilenceDb {
		t.Errorf("Loudness = %v, want %v", m.Loudness, SilenceDb)
	}
	if m.PeakFrequency != 0 {
		t.Errorf("PeakFrequency = %v, want 0", m.PeakFrequency)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	if got := ComputeMetrics(mustBuffer(t, 44100, []float64{})); got != (AudioMetrics{}) {
		t.Errorf("ComputeMetrics(empty) = %+v, want zero value", got)
	}
	if got := ComputeMetrics(audio.Buffer{}); got != (AudioMetrics{}) {
		t.Errorf("ComputeMetrics(zero Buffer) = %+v, want zero value", got)
	}
}

func TestComputeMetricsValues(t *testing.T) {
	t.Run("constant level", func(t *testing.T) {
		samples := make([]float64, 4096)
		for i := range samples {
			samples[i] = 0.25
		}
		m := ComputeMetrics(mustBuffer(t, 8000, samples))

		if math.Abs(m.VolumeLevel-25) > 1e-9 {
			t.Errorf("VolumeLevel = %v, want 25", m.VolumeLevel)
		}
		if math.Abs(m.CrestFactor-1) > 1e-9 {
			t.Errorf("CrestFactor = %v, want 1", m.CrestFactor)
		}
		if m.SNR != 0 {
			t.Errorf("SNR = %v, want 0 (noise floor equals signal)", m.SNR)
		}
	})

	t.Run("peak frequency", func(t *testing.T) {
		buf := generateTestBuffer(t, TestAudioOptions{SampleRate: 16000, ToneFreq: 1000, ToneLevel: -6})
		m := ComputeMetrics(buf)
		if m.PeakFrequency != 1000 {
			t.Errorf("PeakFrequency = %v, want 1000", m.PeakFrequency)
		}
	})

	t.Run("sine crest factor", func(t *testing.T) {
		buf := generateTestBuffer(t, TestAudioOptions{SampleRate: 48000, ToneFreq: 1000, ToneLevel: -6})
		m := ComputeMetrics(buf)
		if math.Abs(m.CrestFactor-math.Sqrt2) > 0.01 {
			t.Errorf("CrestFactor = %v, want ~1.414", m.CrestFactor)
		}
		if math.Abs(m.PeakDb+6) > 0.05 {
			t.Errorf("PeakDb = %v, want ~-6", m.PeakDb)
		}
		if m.Clarity != 0 {
			t.Errorf("Clarity = %v, want 0 (sine crest is below threshold)", m.Clarity)
		}
	})

	t.Run("stereo uses mono mix", func(t *testing.T) {
		left := make([]float64, 2048)
		right := make([]float64, 2048)
		for i := range left {
			left[i] = 0.5
			right[i] = -0.5
		}
		m := ComputeMetrics(mustBuffer(t, 8000, left, right))
		if m.RMS != 0 {
			t.Errorf("RMS = %v, want 0 for cancelling channels", m.RMS)
		}
	})
}

func TestClarityScore(t *testing.T) {
	sine := generateTestBuffer(t, TestAudioOptions{SampleRate: 8000, ToneFreq: 400, ToneLevel: -6}).Channel(0)

	// Two spiky windows then two sine windows
	samples := make([]float64, 4*ClarityWindowSize)
	samples[100] = 0.9
	samples[ClarityWindowSize+500] = -0.9
	copy(samples[2*ClarityWindowSize:], sine[:2*ClarityWindowSize])

	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"half clear", samples, 50},
		{"trailing partial window ignored", append(samples, 1, 0, 0), 50},
		{"short spike", []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, 100},
		{"short sine", sine[:100], 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clarityScore(tt.samples); got != tt.want {
				t.Errorf("clarityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPowerRatioSNR(t *testing.T) {
	tests := []struct {
		name       string
		rms, noise float64
		want       float64
	}{
		{"20 dB", 0.5, 0.05, 20},
		{"equal", 0.1, 0.1, 0},
		{"silence floor", 0, 0, 0},
		{"zero noise ceiling", 0.3, 0, MaxSNRDb},
		{"tiny noise capped", 1, 1e-9, MaxSNRDb},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := powerRatioSNR(tt.rms, tt.noise); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("powerRatioSNR(%v, %v) = %v, want %v", tt.rms, tt.noise, got, tt.want)
			}
		})
	}
}

func TestComputeByteMetrics(t *testing.T) {
	tests := []struct {
		name       string
		freq       []uint8
		sampleRate int
		want       ByteMetrics
	}{
		{
			name:       "empty",
			freq:       nil,
			sampleRate: 44100,
			want:       ByteMetrics{SNRMethod: SNRPeakToMean},
		},
		{
			name:       "all zero",
			freq:       []uint8{0, 0, 0, 0},
			sampleRate: 44100,
			want:       ByteMetrics{SNRMethod: SNRPeakToMean},
		},
		{
			name:       "single peak",
			freq:       []uint8{0, 0, 255, 0},
			sampleRate: 48000,
			want: ByteMetrics{
				VolumeLevel:   25,
				PeakFrequency: 12000,
				SNR:           20 * math.Log10(4),
				SNRMethod:     SNRPeakToMean,
				Clarity:       25,
			},
		},
		{
			name:       "flat",
			freq:       []uint8{200, 200},
			sampleRate: 8000,
			want: ByteMetrics{
				VolumeLevel: 200 * 100.0 / 255,
				SNRMethod:   SNRPeakToMean,
				Clarity:     100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeByteMetrics(tt.freq, tt.sampleRate)
			if math.Abs(got.VolumeLevel-tt.want.VolumeLevel) > 1e-9 ||
				got.PeakFrequency != tt.want.PeakFrequency ||
				math.Abs(got.SNR-tt.want.SNR) > 1e-9 ||
				got.SNRMethod != tt.want.SNRMethod ||
				got.Clarity != tt.want.Clarity {
				t.Errorf("ComputeByteMetrics() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHumLevelDb(t *testing.T) {
	hum := generateTestBuffer(t, TestAudioOptions{SampleRate: 8000, ToneFreq: 60, ToneLevel: -20})
	voice := generateTestBuffer(t, TestAudioOptions{SampleRate: 8000, ToneFreq: 440, ToneLevel: -20})

	if got := HumLevelDb(hum, 60); got < -1 || got > 0 {
		t.Errorf("HumLevelDb(pure 60 Hz) = %.2f, want ~0", got)
	}
	if got := HumLevelDb(voice, 60); got > -30 {
		t.Errorf("HumLevelDb(440 Hz tone) = %.2f, want well below -30", got)
	}
	if got := HumLevelDb(hum, 50); got > -10 {
		t.Errorf("HumLevelDb(60 Hz at 50 Hz probe) = %.2f, want below -10", got)
	}
	if got := HumLevelDb(mustBuffer(t, 8000, make([]float64, 800)), 50); got != SilenceDb {
		t.Errorf("HumLevelDb(silence) = %v, want %v", got, SilenceDb)
	}
	if got := HumLevelDb(hum, 0); got != SilenceDb {
		t.Errorf("HumLevelDb(mainsHz 0) = %v, want %v", got, SilenceDb)
	}
}

func mustBuffer(t *testing.T, sampleRate int, channels ...[]float64) audio.Buffer {
	t.Helper()
	buf, err := audio.NewBuffer(sampleRate, channels...)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}
