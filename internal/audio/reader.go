package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hajimehoshi/go-mp3"
)

// WAV format tags accepted by the decoder.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Metadata describes a decoded recording.
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Format     string // "wav" or "mp3"
	MIMEType   string // sniffed content type
}

// OpenAudioFile validates, reads and decodes the file at path with the
// default limits. declaredType may be empty, in which case the content is
// sniffed.
func OpenAudioFile(path, declaredType string) (Buffer, *Metadata, error) {
	return DefaultValidator().OpenFile(path, declaredType)
}

// ReadFile validates the file at path against v and returns its bytes
// without decoding them.
func (v Validator) ReadFile(path, declaredType string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if err := v.Validate(Upload{
		Name:     path,
		Size:     info.Size(),
		MIMEType: declaredType,
		Head:     head[:n],
	}); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// OpenFile validates the file at path against v, then decodes it.
func (v Validator) OpenFile(path, declaredType string) (Buffer, *Metadata, error) {
	data, err := v.ReadFile(path, declaredType)
	if err != nil {
		return Buffer{}, nil, err
	}
	return Decode(data, declaredType)
}

// Decode turns an encoded recording into a Buffer. The container is chosen
// from the sniffed content, falling back to mimeType when sniffing is
// inconclusive. Failures are reported as *DecodeError.
func Decode(data []byte, mimeType string) (Buffer, *Metadata, error) {
	if len(data) == 0 {
		return Buffer{}, nil, &DecodeError{Err: errors.New("empty input")}
	}

	detected := mimetype.Detect(data)
	format := containerFor(detected.String())
	if format == "" {
		format = containerFor(normaliseMIME(mimeType))
	}

	var (
		buf  Buffer
		meta *Metadata
		err  error
	)
	switch format {
	case "wav":
		buf, meta, err = decodeWAV(data)
	case "mp3":
		buf, meta, err = decodeMP3(data)
	case "webm":
		err = errors.New("webm/opus decoding is not supported; convert to wav or mp3")
	default:
		err = fmt.Errorf("unrecognised container (detected %s)", detected.String())
	}
	if err != nil {
		return Buffer{}, nil, &DecodeError{Format: format, Err: err}
	}

	meta.MIMEType = detected.String()
	return buf, meta, nil
}

func containerFor(mt string) string {
	switch mt {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return "wav"
	case "audio/mpeg", "audio/mp3", "audio/x-mpeg":
		return "mp3"
	case "audio/webm", "video/webm":
		return "webm"
	}
	return ""
}

func decodeWAV(data []byte) (Buffer, *Metadata, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Buffer{}, nil, errors.New("not a valid RIFF/WAVE file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return Buffer{}, nil, fmt.Errorf("unsupported WAV encoding tag %d", dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 {
		return Buffer{}, nil, errors.New("missing format chunk")
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := intScale(bitDepth)

	// 8-bit WAV is stored unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float64(v-offset) / scale
	}

	buf, err := FromInterleaved(pcm.Format.SampleRate, pcm.Format.NumChannels, samples)
	if err != nil {
		return Buffer{}, nil, err
	}

	return buf, &Metadata{
		Duration:   buf.Seconds(),
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		BitDepth:   bitDepth,
		Format:     "wav",
	}, nil
}

// go-mp3 always yields 16-bit little-endian stereo.
func decodeMP3(data []byte) (Buffer, *Metadata, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	if len(pcm) < 4 || dec.SampleRate() <= 0 {
		return Buffer{}, nil, errors.New("no MPEG audio frames found")
	}

	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		samples[i] = float64(int16(uint16(pcm[2*i])|uint16(pcm[2*i+1])<<8)) / 32768.0
	}

	buf, err := FromInterleaved(dec.SampleRate(), 2, samples)
	if err != nil {
		return Buffer{}, nil, err
	}

	return buf, &Metadata{
		Duration:   buf.Seconds(),
		SampleRate: dec.SampleRate(),
		Channels:   2,
		BitDepth:   16,
		Format:     "mp3",
	}, nil
}

// intScale returns the full-scale magnitude for integer PCM of bitDepth bits.
func intScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
