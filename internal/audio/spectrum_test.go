package audio

import (
	"testing"
)

func TestMagnitudeSpectrumPeakBin(t *testing.T) {
	const sampleRate = 16000
	// 1000 Hz lands exactly on bin 128 for a 2048-point FFT at 16 kHz.
	samples := sine(sampleRate, sampleRate, 1000, 0.5)

	mags := MagnitudeSpectrum(samples, DefaultFFTSize)
	if len(mags) != DefaultFFTSize/2 {
		t.Fatalf("len = %d, want %d", len(mags), DefaultFFTSize/2)
	}

	peak := 0
	for k, m := range mags {
		if m > mags[peak] {
			peak = k
		}
	}
	if peak != 128 {
		t.Errorf("peak bin = %d, want 128", peak)
	}
	if mags[peak] < 0.4 || mags[peak] > 0.6 {
		t.Errorf("peak magnitude = %.3f, want ~0.5 (amplitude normalised)", mags[peak])
	}
}

func TestFrequencyBytes(t *testing.T) {
	silent, _ := NewBuffer(8000, make([]float64, 4096))
	for k, b := range FrequencyBytes(silent, 512) {
		if b != 0 {
			t.Fatalf("silent bin %d = %d, want 0", k, b)
		}
	}

	loud, _ := NewBuffer(8000, sine(4096, 8000, 1000, 0.9))
	bytes := FrequencyBytes(loud, 512)
	if len(bytes) != 256 {
		t.Fatalf("len = %d, want 256", len(bytes))
	}
	if bytes[64] != 255 {
		t.Errorf("tone bin = %d, want 255 (above -30 dB clamps)", bytes[64])
	}
}

func TestMagnitudeSpectrumShortInput(t *testing.T) {
	mags := MagnitudeSpectrum([]float64{0.5, -0.5, 0.5}, 64)
	if len(mags) != 32 {
		t.Fatalf("len = %d, want 32", len(mags))
	}
	if got := MagnitudeSpectrum(nil, 64); len(got) != 32 {
		t.Errorf("empty input len = %d, want 32", len(got))
	}
}
