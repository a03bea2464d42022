package processor

import (
	"fmt"
	"math"
)

// stage is one rendering step of the enhancement graph. render transforms
// planar samples in place; the graph owns the slices it passes in.
type stage interface {
	id() FilterID
	describe() string
	render(ch [][]float64, sampleRate float64, rep *RenderReport)
}

type biquadKind int

const (
	biquadHighpass biquadKind = iota
	biquadLowpass
	biquadNotch
	biquadPeaking
)

// biquad is a second-order IIR section using the RBJ cookbook formulas.
// Q is linear (0.7 ≈ Butterworth).
type biquad struct {
	filter FilterID
	kind   biquadKind
	freq   float64
	q      float64
	gainDb float64 // peaking only
}

func (b *biquad) id() FilterID { return b.filter }

func (b *biquad) describe() string {
	spec := fmt.Sprintf("%s=f=%.0f:q=%.2f", b.filter, b.freq, b.q)
	if b.kind == biquadPeaking {
		spec += fmt.Sprintf(":g=%.1f", b.gainDb)
	}
	return spec
}

// coefficients returns normalised (b0, b1, b2, a1, a2).
func (b *biquad) coefficients(sampleRate float64) (b0, b1, b2, a1, a2 float64) {
	w0 := 2 * math.Pi * b.freq / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * b.q)

	var a0 float64
	switch b.kind {
	case biquadHighpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw
		a2 = 1 - alpha
	case biquadLowpass:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw
		a2 = 1 - alpha
	case biquadNotch:
		b0 = 1
		b1 = -2 * cosw
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosw
		a2 = 1 - alpha
	case biquadPeaking:
		A := math.Pow(10, b.gainDb/40)
		b0 = 1 + alpha*A
		b1 = -2 * cosw
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cosw
		a2 = 1 - alpha/A
	}

	return b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0
}

func (b *biquad) render(ch [][]float64, sampleRate float64, rep *RenderReport) {
	// A cutoff at or above Nyquist cannot be realised; pass through.
	if b.freq >= sampleRate/2 {
		rep.Bypassed = append(rep.Bypassed, b.filter)
		return
	}

	b0, b1, b2, a1, a2 := b.coefficients(sampleRate)
	for _, x := range ch {
		var x1, x2, y1, y2 float64
		for i, in := range x {
			out := b0*in + b1*x1 + b2*x2 - a1*y1 - a2*y2
			x2, x1 = x1, in
			y2, y1 = y1, out
			x[i] = out
		}
	}
}

// compressor is a feed-forward soft-knee dynamics processor. Detection is
// linked across channels so the stereo image does not shift.
type compressor struct {
	filter      FilterID
	thresholdDb float64
	kneeDb      float64
	ratio       float64
	attackMs    float64
	releaseMs   float64
}

func (c *compressor) id() FilterID { return c.filter }

func (c *compressor) describe() string {
	return fmt.Sprintf("%s=threshold=%.0fdB:knee=%.0fdB:ratio=%.2f:attack=%.0fms:release=%.0fms",
		c.filter, c.thresholdDb, c.kneeDb, c.ratio, c.attackMs, c.releaseMs)
}

// gainReduction returns the static-curve gain change in dB (always <= 0)
// for an input level in dB.
func (c *compressor) gainReduction(levelDb float64) float64 {
	slope := 1/c.ratio - 1
	over := levelDb - c.thresholdDb
	halfKnee := c.kneeDb / 2

	switch {
	case c.kneeDb > 0 && math.Abs(over) <= halfKnee:
		d := over + halfKnee
		return slope * d * d / (2 * c.kneeDb)
	case over > halfKnee:
		return slope * over
	}
	return 0
}

// timeCoefficient is the one-pole smoothing factor for a time constant.
// Zero milliseconds gives 0, which tracks the target within one sample.
func timeCoefficient(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms / 1000 * sampleRate))
}

func (c *compressor) render(ch [][]float64, sampleRate float64, _ *RenderReport) {
	if c.ratio <= 1 || len(ch) == 0 {
		return
	}

	attack := timeCoefficient(c.attackMs, sampleRate)
	release := timeCoefficient(c.releaseMs, sampleRate)

	var smoothed float64 // dB, <= 0
	for i := range ch[0] {
		var level float64
		for _, x := range ch {
			if a := math.Abs(x[i]); a > level {
				level = a
			}
		}

		target := c.gainReduction(LinearToDb(level))
		coeff := release
		if target < smoothed {
			coeff = attack
		}
		smoothed = coeff*smoothed + (1-coeff)*target

		g := DbToLinear(smoothed)
		for _, x := range ch {
			x[i] *= g
		}
	}
}

// gainStage applies either a fixed linear multiplier or a loudness target.
type gainStage struct {
	filter     FilterID
	linear     float64 // used when targetLUFS == 0
	targetLUFS float64 // < 0 selects loudness normalisation
	ceilingDb  float64
}

func (g *gainStage) id() FilterID { return g.filter }

func (g *gainStage) describe() string {
	if g.targetLUFS < 0 {
		return fmt.Sprintf("%s=target=%.1fLUFS:ceiling=%.1fdB", g.filter, g.targetLUFS, g.ceilingDb)
	}
	return fmt.Sprintf("%s=volume=%.3f", g.filter, g.linear)
}

func (g *gainStage) render(ch [][]float64, _ float64, rep *RenderReport) {
	factor := g.linear
	if g.targetLUFS < 0 {
		norm := calculateNormalisation(ch, g.targetLUFS, g.ceilingDb)
		rep.Normalisation = norm
		factor = DbToLinear(norm.GainApplied)
	}
	if factor == 1 {
		return
	}
	for _, x := range ch {
		for i := range x {
			x[i] *= factor
		}
	}
}
