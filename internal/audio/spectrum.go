package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DefaultFFTSize yields 1024 frequency bins, the browser analyser default.
const DefaultFFTSize = 2048

// Byte-domain dB range, matching the analyser-node defaults.
const (
	byteMinDecibels = -100.0
	byteMaxDecibels = -30.0
)

// MagnitudeSpectrum returns fftSize/2 amplitude-normalised magnitudes
// averaged over Hann-windowed frames with 50% overlap. Inputs shorter than
// one frame are zero-padded. fftSize must be a power of two.
func MagnitudeSpectrum(samples []float64, fftSize int) []float64 {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		fftSize = DefaultFFTSize
	}
	bins := fftSize / 2
	avg := make([]float64, bins)
	if len(samples) == 0 {
		return avg
	}

	window := make([]float64, fftSize)
	var windowSum float64
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		windowSum += window[i]
	}
	norm := 2.0 / windowSum

	fft := fourier.NewFFT(fftSize)
	frame := make([]float64, fftSize)
	coeffs := make([]complex128, fftSize/2+1)

	hop := fftSize / 2
	frames := 0
	for start := 0; start == 0 || start+fftSize <= len(samples); start += hop {
		for i := range frame {
			if start+i < len(samples) {
				frame[i] = samples[start+i] * window[i]
			} else {
				frame[i] = 0
			}
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for k := 0; k < bins; k++ {
			avg[k] += cmplx.Abs(coeffs[k]) * norm
		}
		frames++
	}

	for k := range avg {
		avg[k] /= float64(frames)
	}
	return avg
}

// FrequencyBytes derives the byte-domain frequency buffer (0-255 per bin)
// from the mono mix of buf.
func FrequencyBytes(buf Buffer, fftSize int) []uint8 {
	mags := MagnitudeSpectrum(buf.Mono(), fftSize)
	out := make([]uint8, len(mags))
	for k, m := range mags {
		db := byteMinDecibels
		if m > 0 {
			db = 20 * math.Log10(m)
		}
		scaled := 255 * (db - byteMinDecibels) / (byteMaxDecibels - byteMinDecibels)
		switch {
		case scaled < 0:
			scaled = 0
		case scaled > 255:
			scaled = 255
		}
		out[k] = uint8(scaled)
	}
	return out
}
