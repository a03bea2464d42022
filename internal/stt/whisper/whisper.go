// Package whisper provides an OpenAI Whisper transcriber built on go-openai.
// Any server exposing the OpenAI audio API can be targeted with WithBaseURL.
//
// Usage:
//
//	p, err := whisper.New(apiKey, whisper.WithLanguage("en"))
//	res, err := p.Transcribe(ctx, data, "audio/wav", stt.Options{Timestamps: true})
package whisper

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/transcript"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const name = "whisper"

// Compile-time assertion that Provider implements stt.Transcriber.
var _ stt.Transcriber = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the default model. Defaults to whisper-1.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the default ISO-639-1 language. Empty lets the service
// detect it.
func WithLanguage(language string) Option {
	return func(p *Provider) { p.language = language }
}

// WithBaseURL points the client at another OpenAI-compatible server.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used by go-openai.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithTiming sets how word timings are derived.
func WithTiming(t transcript.WordTiming) Option {
	return func(p *Provider) { p.timing = t }
}

// Provider implements stt.Transcriber against the OpenAI audio API.
type Provider struct {
	model      string
	language   string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
	timing     transcript.WordTiming

	client *openai.Client
}

// New creates a Whisper Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("whisper: apiKey must not be empty")
	}
	p := &Provider{
		model: openai.Whisper1,
		log:   logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(p)
	}

	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	if p.httpClient != nil {
		cfg.HTTPClient = p.httpClient
	}
	p.client = openai.NewClientWithConfig(cfg)
	return p, nil
}

// Name returns "whisper".
func (p *Provider) Name() string { return name }

// Transcribe uploads audio and adapts the verbose JSON response. With
// opts.Translate the translation endpoint is used and the output is English.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string, opts stt.Options) (*transcript.Result, error) {
	req := openai.AudioRequest{
		Model:    p.model,
		FilePath: "audio" + stt.FileExtension(mimeType),
		Reader:   bytes.NewReader(audio),
		Prompt:   opts.Prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}

	lang := opts.Language
	if lang == "" {
		lang = p.language
	}

	var (
		resp openai.AudioResponse
		err  error
	)
	if opts.Translate {
		p.log.WithFields(logrus.Fields{"model": req.Model, "bytes": len(audio)}).Debug("whisper translation request")
		resp, err = p.client.CreateTranslation(ctx, req)
		lang = "en"
	} else {
		req.Language = lang
		if opts.Timestamps || p.timing == transcript.TimingBackend {
			req.TimestampGranularities = []openai.TranscriptionTimestampGranularity{
				openai.TranscriptionTimestampGranularityWord,
				openai.TranscriptionTimestampGranularitySegment,
			}
		}
		p.log.WithFields(logrus.Fields{"model": req.Model, "bytes": len(audio), "language": lang}).Debug("whisper transcription request")
		resp, err = p.client.CreateTranscription(ctx, req)
	}
	if err != nil {
		return nil, backendError(err)
	}

	if resp.Language != "" && !opts.Translate {
		lang = languageCode(resp.Language)
	}

	segments := toSegments(resp)
	if len(segments) == 0 {
		return nil, &transcript.AdapterError{Reason: transcript.ReasonEmptyInput, Segment: -1}
	}

	res, err := transcript.Adapter{Timing: p.timing, Language: lang}.Adapt(segments)
	if err != nil {
		return nil, err
	}
	res.Provider = name
	if resp.Duration > res.Duration {
		res.Duration = resp.Duration
	}
	return res, nil
}

// backendError maps go-openai errors onto stt.BackendError, keeping the
// service message.
func backendError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &stt.BackendError{Provider: name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &stt.BackendError{Provider: name, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &stt.BackendError{Provider: name, Err: err}
}
