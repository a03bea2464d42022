package processor

import (
	"math"
	"testing"
)

func TestIntegratedLoudness(t *testing.T) {
	full := make([]float64, 1000)
	for i := range full {
		full[i] = 1
	}

	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"full scale dc", full, -0.691},
		{"silence", make([]float64, 100), SilenceDb},
		{"empty", nil, SilenceDb},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntegratedLoudness(tt.samples); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IntegratedLoudness() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateLinearModeTarget(t *testing.T) {
	tests := []struct {
		name           string
		measuredI      float64
		measuredPeak   float64
		desiredI       float64
		ceiling        float64
		wantTarget     float64
		wantOffset     float64
		wantLinearSafe bool
	}{
		{"plenty of headroom", -30, -20, -14, -1, -14, 16, true},
		{"limited by peak", -30, -6, -14, -1, -25.1, 4.9, false},
		{"already loud, cut", -8, -0.5, -14, -1, -14, -6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, offset, linear := calculateLinearModeTarget(tt.measuredI, tt.measuredPeak, tt.desiredI, tt.ceiling)
			if math.Abs(target-tt.wantTarget) > 1e-9 || math.Abs(offset-tt.wantOffset) > 1e-9 || linear != tt.wantLinearSafe {
				t.Errorf("got (%v, %v, %v), want (%v, %v, %v)",
					target, offset, linear, tt.wantTarget, tt.wantOffset, tt.wantLinearSafe)
			}
		})
	}
}

func TestCalculateNormalisationPeakCeiling(t *testing.T) {
	// Sparse clicks: very low loudness, high peak
	x := make([]float64, 16000)
	for i := 0; i < len(x); i += 4000 {
		x[i] = 0.5
	}

	res := calculateNormalisation([][]float64{x}, -14, -1)
	if !res.PeakLimited {
		t.Fatalf("PeakLimited = false, want true: %+v", res)
	}
	if res.WithinTarget() {
		t.Error("WithinTarget() = true for a peak-limited result")
	}
	if projected := res.InputPeakDb + res.GainApplied; projected > -1 {
		t.Errorf("projected peak %.2f dB exceeds ceiling", projected)
	}
}

func TestCalculateNormalisationSilence(t *testing.T) {
	res := calculateNormalisation([][]float64{make([]float64, 100)}, -14, -1)
	if !res.Skipped || res.GainApplied != 0 {
		t.Errorf("silence result = %+v, want skipped with no gain", res)
	}

	res = calculateNormalisation(nil, -14, -1)
	if !res.Skipped {
		t.Error("empty input not skipped")
	}
}
