package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// encodeToBytes renders buf as 16-bit WAV through a temporary file.
func encodeToBytes(t *testing.T, buf Buffer) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := WriteWAVFile(path, buf); err != nil {
		t.Fatalf("WriteWAVFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	return data
}

func sine(n, sampleRate int, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestWAVRoundTrip(t *testing.T) {
	left := sine(4410, 44100, 440, 0.5)
	right := sine(4410, 44100, 880, 0.25)
	buf, err := NewBuffer(44100, left, right)
	if err != nil {
		t.Fatal(err)
	}

	data := encodeToBytes(t, buf)
	decoded, meta, err := Decode(data, "")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if meta.Format != "wav" || meta.SampleRate != 44100 || meta.Channels != 2 || meta.BitDepth != 16 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if decoded.Len() != buf.Len() {
		t.Fatalf("decoded length = %d, want %d", decoded.Len(), buf.Len())
	}

	got := decoded.Channel(1)
	for i := 0; i < len(right); i += 97 {
		if math.Abs(got[i]-right[i]) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want %v (16-bit quantisation tolerance)", i, got[i], right[i])
		}
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		format   string
	}{
		{"empty", nil, "audio/wav", ""},
		{"truncated riff", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), "audio/wav", "wav"},
		{"garbage declared mp3", []byte("this is not audio at all, just words"), "audio/mpeg", "mp3"},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81, 0x01}, "audio/webm", "webm"},
		{"unknown", []byte("plain text"), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data, tt.mimeType)
			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
			if derr.Format != tt.format {
				t.Errorf("DecodeError.Format = %q, want %q", derr.Format, tt.format)
			}
		})
	}
}

func TestOpenAudioFileRejectsPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.pdf")
	if err := os.WriteFile(path, pdfHead, 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := OpenAudioFile(path, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("OpenAudioFile() error = %v, want *ValidationError", err)
	}
}

func TestValidatorOpenFileSizeLimit(t *testing.T) {
	buf, err := NewBuffer(8000, sine(8000, 8000, 440, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := WriteWAVFile(path, buf); err != nil {
		t.Fatal(err)
	}

	small := Validator{MaxBytes: 1024, Allowed: SupportedTypes}
	if _, _, err := small.OpenFile(path, ""); err == nil {
		t.Fatal("expected size limit to reject the file")
	}

	got, meta, err := DefaultValidator().OpenFile(path, "audio/wav")
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got.Len() != 8000 || meta.SampleRate != 8000 {
		t.Errorf("decoded %d samples at %d Hz", got.Len(), meta.SampleRate)
	}
}

func TestEnhancedPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"talk.mp3", "talk-enhanced.wav"},
		{"/rec/day1.hearing.wav", "/rec/day1.hearing-enhanced.wav"},
		{"noext", "noext-enhanced.wav"},
	}
	for _, tt := range tests {
		if got := EnhancedPath(tt.in); got != tt.want {
			t.Errorf("EnhancedPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
