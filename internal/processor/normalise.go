package processor

import (
	"math"
)

// Normalisation defaults
const (
	// DefaultTargetLUFS is the loudness target applied when the options ask
	// for normalisation without naming a level.
	DefaultTargetLUFS = -14.0

	// DefaultPeakCeilingDb keeps normalised output clear of full scale.
	DefaultPeakCeilingDb = -1.0

	// NormToleranceLU is the deviation from target treated as on-target.
	NormToleranceLU = 0.5

	// loudnessOffset is the BS.1770 constant relating mean square to LUFS.
	loudnessOffset = -0.691
)

// NormalisationResult records what the gain stage did in loudness mode.
type NormalisationResult struct {
	InputLUFS        float64 // ungated loudness arriving at the gain stage
	InputPeakDb      float64 // sample peak arriving at the gain stage
	RequestedTargetI float64 // target from the options
	EffectiveTargetI float64 // may be lower so the peak stays under the ceiling
	GainApplied      float64 // dB
	PeakLimited      bool    // true if the ceiling lowered the target
	Skipped          bool    // true for silence, which cannot be normalised
}

// WithinTarget reports whether the requested target was reached.
func (n *NormalisationResult) WithinTarget() bool {
	return !n.Skipped && math.Abs(n.EffectiveTargetI-n.RequestedTargetI) <= NormToleranceLU
}

// IntegratedLoudness returns an ungated, unweighted BS.1770-style loudness
// for mono samples: -0.691 + 10·log10(mean square). Silence returns SilenceDb.
// This approximates LUFS closely enough for a gain target on speech; it is
// not a compliant meter.
func IntegratedLoudness(mono []float64) float64 {
	if len(mono) == 0 {
		return SilenceDb
	}
	var sum float64
	for _, s := range mono {
		sum += s * s
	}
	return loudnessFromMeanSquare(sum / float64(len(mono)))
}

func loudnessFromMeanSquare(ms float64) float64 {
	if ms <= 0 {
		return SilenceDb
	}
	return math.Max(loudnessOffset+10*math.Log10(ms), SilenceDb)
}

// calculateNormalisation works out the gain that brings planar samples to
// targetLUFS without pushing the sample peak above ceilingDb.
func calculateNormalisation(ch [][]float64, targetLUFS, ceilingDb float64) *NormalisationResult {
	res := &NormalisationResult{RequestedTargetI: targetLUFS}
	if len(ch) == 0 || len(ch[0]) == 0 {
		res.Skipped = true
		return res
	}

	mono := make([]float64, len(ch[0]))
	var peak float64
	for _, x := range ch {
		for i, s := range x {
			mono[i] += s / float64(len(ch))
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}

	res.InputLUFS = IntegratedLoudness(mono)
	res.InputPeakDb = LinearToDb(peak)
	if peak == 0 {
		res.Skipped = true
		res.EffectiveTargetI = res.InputLUFS
		return res
	}

	effective, offset, linearPossible := calculateLinearModeTarget(res.InputLUFS, res.InputPeakDb, targetLUFS, ceilingDb)
	res.EffectiveTargetI = effective
	res.GainApplied = offset
	res.PeakLimited = !linearPossible
	return res
}

// calculateLinearModeTarget returns the loudness target a plain gain can
// reach without the peak exceeding ceilingDb:
//
//	measuredPeak + (target - measuredI) <= ceiling
//
// If the desired target fits it is returned unchanged, otherwise the highest
// target that respects the ceiling is returned with linearPossible false.
func calculateLinearModeTarget(measuredI, measuredPeak, desiredI, ceilingDb float64) (effectiveTargetI, offset float64, linearPossible bool) {
	const safetyMargin = 0.1 // dB
	maxTargetI := ceilingDb - measuredPeak + measuredI - safetyMargin

	if desiredI <= maxTargetI {
		return desiredI, desiredI - measuredI, true
	}
	return maxTargetI, maxTargetI - measuredI, false
}
