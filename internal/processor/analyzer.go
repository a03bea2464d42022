// Package processor handles audio analysis and processing
package processor

import (
	"math"

	"github.com/linuxmatters/clearscribe/internal/audio"
	"gonum.org/v1/gonum/floats"
)

// SNRMethod names one of the two signal-to-noise definitions in use.
// They measure different things and are never merged.
type SNRMethod string

const (
	// SNRPowerRatio is 10·log10(rms² / noiseFloor²) over time-domain samples.
	// This is the canonical definition used by AudioMetrics.
	SNRPowerRatio SNRMethod = "power_ratio"

	// SNRPeakToMean is 20·log10(max / mean) over a byte-domain frequency
	// buffer. A looser approximation kept for the analyser-style readout.
	SNRPeakToMean SNRMethod = "peak_to_mean"
)

// Analysis constants
const (
	// ClarityWindowSize is the window length in samples for the clarity score.
	ClarityWindowSize = 1024

	// ClarityThreshold is the window peak/RMS ratio above which a window counts as clear.
	ClarityThreshold = 3.0

	// MaxSNRDb caps SNR when the noise floor is zero but signal is present.
	MaxSNRDb = 120.0

	// SilenceDb is the level reported for digital silence.
	SilenceDb = -120.0

	// byteClarityThreshold is the byte-domain bin level counted as clear.
	byteClarityThreshold = 128
)

// AudioMetrics holds the quality measurements for one buffer.
// Values are computed fresh from samples and never updated in place.
type AudioMetrics struct {
	VolumeLevel   float64 `json:"volume_level"`   // mean |x| as a percentage, 0-100
	PeakFrequency float64 `json:"peak_frequency"` // Hz
	SNR           float64 `json:"snr"`            // dB, SNRPowerRatio
	Clarity       float64 `json:"clarity"`        // percentage of clear windows
	RMS           float64 `json:"rms"`
	PeakDb        float64 `json:"peak_db"`
	CrestFactor   float64 `json:"crest_factor"`
	NoiseFloor    float64 `json:"noise_floor"`
	Loudness      float64 `json:"loudness_lufs"` // ungated mono approximation
}

// ComputeMetrics analyses the mono mix of buf.
//
// An empty buffer yields the zero value. Digital silence yields SNR 0,
// crest factor 0, clarity 0 and PeakDb of SilenceDb. No field is ever NaN or Inf.
func ComputeMetrics(buf audio.Buffer) AudioMetrics {
	if buf.IsEmpty() {
		return AudioMetrics{}
	}

	mono := buf.Mono()
	n := float64(len(mono))

	var sumAbs, peak float64
	for _, s := range mono {
		a := math.Abs(s)
		sumAbs += a
		if a > peak {
			peak = a
		}
	}
	meanSquare := floats.Dot(mono, mono) / n
	rms := math.Sqrt(meanSquare)
	noise := EstimateNoiseFloor(mono)

	m := AudioMetrics{
		VolumeLevel:   clamp(sumAbs/n*100, 0, 100),
		PeakFrequency: peakFrequency(mono, buf.SampleRate()),
		SNR:           powerRatioSNR(rms, noise),
		Clarity:       clarityScore(mono),
		RMS:           rms,
		PeakDb:        LinearToDb(peak),
		NoiseFloor:    noise,
		Loudness:      loudnessFromMeanSquare(meanSquare),
	}
	if rms > 0 {
		m.CrestFactor = peak / rms
	}
	return m
}

// powerRatioSNR implements SNRPowerRatio with a floor of 0 dB for silence
// and a ceiling of MaxSNRDb for a zero noise floor.
func powerRatioSNR(rms, noiseFloor float64) float64 {
	if rms == 0 {
		return 0
	}
	if noiseFloor == 0 {
		return MaxSNRDb
	}
	return clamp(10*math.Log10((rms*rms)/(noiseFloor*noiseFloor)), 0, MaxSNRDb)
}

// peakFrequency maps the loudest spectral bin to Hz as index·sr / (2·bins).
func peakFrequency(mono []float64, sampleRate int) float64 {
	mags := audio.MagnitudeSpectrum(mono, audio.DefaultFFTSize)
	idx := floats.MaxIdx(mags)
	if mags[idx] == 0 {
		return 0
	}
	return float64(idx) * float64(sampleRate) / float64(2*len(mags))
}

// clarityScore is the percentage of ClarityWindowSize windows whose
// peak/RMS ratio exceeds ClarityThreshold. Only whole windows are scored;
// a buffer shorter than one window is scored as a single window.
func clarityScore(mono []float64) float64 {
	if len(mono) == 0 {
		return 0
	}
	if len(mono) < ClarityWindowSize {
		if windowIsClear(mono) {
			return 100
		}
		return 0
	}

	var windows, clear int
	for start := 0; start+ClarityWindowSize <= len(mono); start += ClarityWindowSize {
		windows++
		if windowIsClear(mono[start : start+ClarityWindowSize]) {
			clear++
		}
	}
	return float64(clear) / float64(windows) * 100
}

func windowIsClear(w []float64) bool {
	rms := math.Sqrt(floats.Dot(w, w) / float64(len(w)))
	if rms == 0 {
		return false
	}
	var peak float64
	for _, s := range w {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak/rms > ClarityThreshold
}

// ByteMetrics is the analyser-style readout computed from a byte-domain
// frequency buffer (see audio.FrequencyBytes).
type ByteMetrics struct {
	VolumeLevel   float64   `json:"volume_level"`
	PeakFrequency float64   `json:"peak_frequency"`
	SNR           float64   `json:"snr"`
	SNRMethod     SNRMethod `json:"snr_method"`
	Clarity       float64   `json:"clarity"`
}

// ComputeByteMetrics implements the byte-domain metric variant. Its SNR is
// SNRPeakToMean and is not comparable with AudioMetrics.SNR.
func ComputeByteMetrics(freq []uint8, sampleRate int) ByteMetrics {
	m := ByteMetrics{SNRMethod: SNRPeakToMean}
	if len(freq) == 0 {
		return m
	}

	var sum float64
	maxIdx, clear := 0, 0
	for i, v := range freq {
		sum += float64(v)
		if v > freq[maxIdx] {
			maxIdx = i
		}
		if v > byteClarityThreshold {
			clear++
		}
	}
	n := float64(len(freq))
	mean := sum / n

	m.VolumeLevel = mean * 100 / 255
	m.PeakFrequency = float64(maxIdx) * float64(sampleRate) / (2 * n)
	m.Clarity = float64(clear) / n * 100

	if peak := float64(freq[maxIdx]); peak > 0 {
		if mean == 0 {
			mean = 1
		}
		m.SNR = clamp(20*math.Log10(peak/mean), 0, MaxSNRDb)
	}
	return m
}

// HumLevelDb measures the mains component at mainsHz relative to the total
// RMS of the mono mix, in dB. 0 dB means the signal is pure hum.
// Returns SilenceDb when there is nothing to measure.
func HumLevelDb(buf audio.Buffer, mainsHz float64) float64 {
	if buf.IsEmpty() || mainsHz <= 0 || mainsHz >= float64(buf.SampleRate())/2 {
		return SilenceDb
	}

	mono := buf.Mono()
	n := float64(len(mono))
	rms := math.Sqrt(floats.Dot(mono, mono) / n)
	if rms == 0 {
		return SilenceDb
	}

	// Goertzel single-bin DFT
	coeff := 2 * math.Cos(2*math.Pi*mainsHz/float64(buf.SampleRate()))
	var s1, s2 float64
	for _, x := range mono {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	amplitude := 2 * math.Sqrt(power) / n
	humRMS := amplitude / math.Sqrt2

	return math.Min(LinearToDb(humRMS/rms), 0)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
