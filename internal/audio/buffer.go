// Package audio provides the in-memory sample buffer, decoding of uploaded
// recordings, WAV output and upload validation.
package audio

import (
	"fmt"
	"math"
	"time"
)

// Buffer is an immutable block of planar floating-point samples in the
// approximate range [-1, 1]. Accessors return copies so a stage can never
// mutate samples owned by another stage.
type Buffer struct {
	sampleRate int
	channels   [][]float64
}

// NewBuffer copies the given channel slices into a new Buffer.
// All channels must have the same length.
func NewBuffer(sampleRate int, channels ...[]float64) (Buffer, error) {
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(channels) == 0 {
		return Buffer{}, fmt.Errorf("buffer needs at least one channel")
	}

	n := len(channels[0])
	owned := make([][]float64, len(channels))
	for i, ch := range channels {
		if len(ch) != n {
			return Buffer{}, fmt.Errorf("channel %d has %d samples, want %d", i, len(ch), n)
		}
		owned[i] = append([]float64(nil), ch...)
	}

	return Buffer{sampleRate: sampleRate, channels: owned}, nil
}

// FromInterleaved de-interleaves frames of numChannels samples.
// A trailing partial frame is dropped.
func FromInterleaved(sampleRate, numChannels int, samples []float64) (Buffer, error) {
	if numChannels <= 0 {
		return Buffer{}, fmt.Errorf("invalid channel count %d", numChannels)
	}
	frames := len(samples) / numChannels
	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < numChannels; c++ {
			channels[c][f] = samples[f*numChannels+c]
		}
	}
	return Buffer{sampleRate: sampleRate, channels: channels}, nil
}

// SampleRate returns the sample rate in Hz.
func (b Buffer) SampleRate() int { return b.sampleRate }

// NumChannels returns the channel count.
func (b Buffer) NumChannels() int { return len(b.channels) }

// Len returns the number of samples per channel.
func (b Buffer) Len() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// IsEmpty reports whether the buffer holds no samples.
func (b Buffer) IsEmpty() bool { return b.Len() == 0 }

// Seconds returns the buffer duration in seconds.
func (b Buffer) Seconds() float64 {
	if b.sampleRate == 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.sampleRate)
}

// Duration returns the buffer duration.
func (b Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Channel returns a copy of channel i.
func (b Buffer) Channel(i int) []float64 {
	if i < 0 || i >= len(b.channels) {
		return nil
	}
	return append([]float64(nil), b.channels[i]...)
}

// Mono returns a new slice holding the average of all channels.
func (b Buffer) Mono() []float64 {
	n := b.Len()
	mono := make([]float64, n)
	if len(b.channels) == 0 {
		return mono
	}
	if len(b.channels) == 1 {
		copy(mono, b.channels[0])
		return mono
	}
	scale := 1.0 / float64(len(b.channels))
	for _, ch := range b.channels {
		for i, s := range ch {
			mono[i] += s * scale
		}
	}
	return mono
}

// Interleaved returns the samples as interleaved frames.
func (b Buffer) Interleaved() []float64 {
	nc := len(b.channels)
	n := b.Len()
	out := make([]float64, n*nc)
	for c, ch := range b.channels {
		for i, s := range ch {
			out[i*nc+c] = s
		}
	}
	return out
}

// Peak returns the largest absolute sample value across all channels.
func (b Buffer) Peak() float64 {
	var peak float64
	for _, ch := range b.channels {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}
