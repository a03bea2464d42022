package processor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// noiseFloorFraction is the share of quietest samples treated as noise.
const noiseFloorFraction = 0.1

// EstimateNoiseFloor approximates the ambient noise amplitude as the mean
// magnitude of the quietest 10% of samples. It assumes quiet stretches are
// background noise, which is a heuristic and not a real noise detector.
//
// With fewer than 10 samples the smallest magnitude is returned; an empty
// input returns 0.
func EstimateNoiseFloor(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	mags := make([]float64, len(samples))
	for i, s := range samples {
		mags[i] = math.Abs(s)
	}

	count := int(math.Floor(float64(len(mags)) * noiseFloorFraction))
	if count == 0 {
		return floats.Min(mags)
	}

	sort.Float64s(mags)
	return stat.Mean(mags[:count], nil)
}
