// Package stt defines the speech-to-text backend abstraction. Providers live
// in sub-packages and are swappable behind Transcriber.
package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// Options is the per-request options bag sent to a backend.
type Options struct {
	Model      string // provider model id; empty uses the provider default
	Language   string // BCP-47 code; empty lets the backend detect
	Diarize    bool   // label speakers
	Punctuate  bool
	Timestamps bool   // request word-level timestamps where supported
	Translate  bool   // translate to English instead of transcribing
	Prompt     string // initial prompt / vocabulary hint
}

// Transcriber turns encoded audio into a uniform transcript.
type Transcriber interface {
	// Transcribe sends audio of the given MIME type to the backend and
	// returns the normalised result. It does not retry.
	Transcribe(ctx context.Context, audio []byte, mimeType string, opts Options) (*transcript.Result, error)

	// Name returns the provider name (e.g. "deepgram", "whisper").
	Name() string
}

// BackendError reports a failed call to a transcription service. Message
// carries the service's own error text unchanged.
type BackendError struct {
	Provider   string
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s transcription failed", e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *BackendError) Unwrap() error { return e.Err }

// FileExtension returns a file extension for mimeType, used where a backend
// infers the container from the upload's file name.
func FileExtension(mimeType string) string {
	mt := strings.ToLower(mimeType)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch strings.TrimSpace(mt) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/webm", "video/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	}
	return ".wav"
}
