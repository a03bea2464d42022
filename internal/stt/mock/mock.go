// Package mock provides a deterministic stt.Transcriber for tests and the
// offline demo mode.
//
// Example:
//
//	p := &mock.Provider{Segments: mock.DemoSegments()}
//	res, _ := p.Transcribe(ctx, data, "audio/wav", stt.Options{})
package mock

import (
	"context"
	"sync"

	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Bytes is the length of the audio passed in.
	Bytes int
	// MIMEType is the declared type.
	MIMEType string
	// Opts is the options bag.
	Opts stt.Options
}

// Provider is a mock implementation of stt.Transcriber. It adapts Segments
// with Timing on every call, so results are deterministic.
type Provider struct {
	mu sync.Mutex

	// Segments are returned (adapted) from every call.
	Segments []transcript.Segment

	// Timing selects the word-timing strategy for adaptation.
	Timing transcript.WordTiming

	// Err, if non-nil, is returned instead of a result.
	Err error

	// Calls records every call to Transcribe.
	Calls []TranscribeCall
}

// Ensure Provider implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Provider)(nil)

// Name returns "mock".
func (p *Provider) Name() string { return "mock" }

// Transcribe records the call and returns the adapted Segments or Err.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string, opts stt.Options) (*transcript.Result, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Bytes: len(audio), MIMEType: mimeType, Opts: opts})
	segs := append([]transcript.Segment(nil), p.Segments...)
	err := p.Err
	timing := p.Timing
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	res, err := transcript.Adapter{Timing: timing, Language: lang}.Adapt(segs)
	if err != nil {
		return nil, err
	}
	res.Provider = p.Name()
	return res, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// CallCount returns the number of recorded calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// DemoSegments returns a short two-speaker exchange used when no backend
// credentials are configured.
func DemoSegments() []transcript.Segment {
	return []transcript.Segment{
		{Text: "Please state your name for the record.", Start: 0.0, End: 2.1, Confidence: 0.96, Speaker: "0"},
		{Text: "Margaret Ellis, E-L-L-I-S.", Start: 2.4, End: 4.6, Confidence: 0.91, Speaker: "1"},
		{Text: "Were you present on the evening of March third?", Start: 5.0, End: 7.8, Confidence: 0.78, Speaker: "0"},
	}
}
