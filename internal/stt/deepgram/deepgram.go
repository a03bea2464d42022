// Package deepgram provides a Deepgram-backed transcriber using the
// pre-recorded REST API. It implements the stt.Transcriber interface.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/transcript"
	"github.com/sirupsen/logrus"
)

const (
	name            = "deepgram"
	defaultEndpoint = "https://api.deepgram.com/v1/listen"
	defaultModel    = "nova-3"
)

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the default model (e.g. "nova-3", "base").
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the default BCP-47 language. Empty enables detection.
func WithLanguage(language string) Option {
	return func(p *Provider) { p.language = language }
}

// WithEndpoint overrides the listen endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) { p.endpoint = endpoint }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithTiming sets how word timings are derived from the response.
func WithTiming(t transcript.WordTiming) Option {
	return func(p *Provider) { p.timing = t }
}

// Provider implements stt.Transcriber backed by Deepgram.
type Provider struct {
	apiKey   string
	model    string
	language string
	endpoint string
	client   *http.Client
	log      *logrus.Logger
	timing   transcript.WordTiming
}

var _ stt.Transcriber = (*Provider)(nil)

// New creates a Deepgram Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		model:    defaultModel,
		endpoint: defaultEndpoint,
		client:   http.DefaultClient,
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name returns "deepgram".
func (p *Provider) Name() string { return name }

// Transcribe posts audio to Deepgram and adapts the response.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string, opts stt.Options) (*transcript.Result, error) {
	if opts.Translate {
		return nil, &stt.BackendError{Provider: name, Message: "translation is not supported"}
	}

	reqURL, err := p.buildURL(opts)
	if err != nil {
		return nil, fmt.Errorf("deepgram: build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("deepgram: new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)

	p.log.WithFields(logrus.Fields{"model": p.modelFor(opts), "bytes": len(audio)}).Debug("deepgram request")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &stt.BackendError{Provider: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &stt.BackendError{Provider: name, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &stt.BackendError{
			Provider:   name,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var dr listenResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, &stt.BackendError{Provider: name, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}

	segments := dr.segments()
	if len(segments) == 0 {
		return nil, &transcript.AdapterError{Reason: transcript.ReasonEmptyInput, Segment: -1}
	}

	lang := dr.language()
	if lang == "" {
		lang = opts.Language
	}
	res, err := transcript.Adapter{Timing: p.timing, Language: lang}.Adapt(segments)
	if err != nil {
		return nil, err
	}
	res.Provider = name
	if dr.Metadata.Duration > res.Duration {
		res.Duration = dr.Metadata.Duration
	}
	return res, nil
}

func (p *Provider) modelFor(opts stt.Options) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.model
}

// buildURL constructs the listen endpoint URL for the given options.
func (p *Provider) buildURL(opts stt.Options) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", p.modelFor(opts))

	lang := opts.Language
	if lang == "" {
		lang = p.language
	}
	if lang != "" {
		q.Set("language", lang)
	} else {
		q.Set("detect_language", "true")
	}

	// smart_format punctuates on its own.
	if opts.Punctuate {
		q.Set("smart_format", "true")
	}
	q.Set("punctuate", strconv.FormatBool(opts.Punctuate))
	if opts.Diarize {
		q.Set("diarize", "true")
		q.Set("utterances", "true")
	}
	if opts.Prompt != "" {
		for _, kw := range strings.Fields(opts.Prompt) {
			q.Add("keyterm", kw)
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// errorMessage extracts Deepgram's error text, falling back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		ErrMsg  string `json:"err_msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.ErrMsg != "" {
			return e.ErrMsg
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return strings.TrimSpace(string(body))
}
