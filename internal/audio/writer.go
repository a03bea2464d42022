package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// OutputBitDepth is the PCM depth of enhanced files.
const OutputBitDepth = 16

// EncodeWAV writes buf as integer PCM WAV. Samples outside [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, buf Buffer, bitDepth int) error {
	if buf.NumChannels() == 0 {
		return fmt.Errorf("cannot encode a buffer without channels")
	}
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported output bit depth %d", bitDepth)
	}

	scale := intScale(bitDepth)
	maxInt := scale - 1
	interleaved := buf.Interleaved()

	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.NumChannels(), SampleRate: buf.SampleRate()},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(interleaved)),
	}
	for i, s := range interleaved {
		v := math.Round(s * scale)
		if v > maxInt {
			v = maxInt
		} else if v < -scale {
			v = -scale
		}
		ints.Data[i] = int(v)
	}

	enc := wav.NewEncoder(w, buf.SampleRate(), bitDepth, buf.NumChannels(), wavFormatPCM)
	if err := enc.Write(ints); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return nil
}

// WriteWAVFile encodes buf to a new file at path.
func WriteWAVFile(path string, buf Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := EncodeWAV(f, buf, OutputBitDepth); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// EnhancedPath returns the output path for an enhanced copy of input:
// talk.mp3 → talk-enhanced.wav in the same directory.
func EnhancedPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "-enhanced.wav"
}
