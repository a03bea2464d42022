// Package providers builds the configured stt.Transcriber.
package providers

import (
	"fmt"
	"net/http"

	"github.com/linuxmatters/clearscribe/internal/config"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/stt/deepgram"
	"github.com/linuxmatters/clearscribe/internal/stt/mock"
	"github.com/linuxmatters/clearscribe/internal/stt/whisper"
	"github.com/sirupsen/logrus"
)

// Names lists the supported provider names.
var Names = []string{"deepgram", "whisper", "mock"}

// New creates the provider selected by cfg, wrapped with logging and
// metrics. Missing credentials are reported as a *config.ConfigError.
func New(cfg config.STTConfig, log *logrus.Logger, metrics *observe.Metrics) (stt.Transcriber, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Timeout()}

	var (
		p   stt.Transcriber
		err error
	)
	switch cfg.Provider {
	case "deepgram":
		opts := []deepgram.Option{
			deepgram.WithHTTPClient(client),
			deepgram.WithLogger(log),
			deepgram.WithTiming(cfg.Timing()),
			deepgram.WithLanguage(cfg.Language),
		}
		if cfg.Model != "" {
			opts = append(opts, deepgram.WithModel(cfg.Model))
		}
		if cfg.DeepgramEndpoint != "" {
			opts = append(opts, deepgram.WithEndpoint(cfg.DeepgramEndpoint))
		}
		p, err = deepgram.New(cfg.DeepgramAPIKey, opts...)
	case "whisper":
		opts := []whisper.Option{
			whisper.WithHTTPClient(client),
			whisper.WithLogger(log),
			whisper.WithTiming(cfg.Timing()),
			whisper.WithLanguage(cfg.Language),
		}
		if cfg.Model != "" {
			opts = append(opts, whisper.WithModel(cfg.Model))
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, whisper.WithBaseURL(cfg.OpenAIBaseURL))
		}
		p, err = whisper.New(cfg.OpenAIAPIKey, opts...)
	case "mock":
		log.Warn("using the mock transcription provider; output is canned demo text")
		p = &mock.Provider{Segments: mock.DemoSegments(), Timing: cfg.Timing()}
	default:
		return nil, &config.ConfigError{Field: "stt.provider", Err: fmt.Errorf("unsupported provider %q (supported: deepgram, whisper, mock)", cfg.Provider)}
	}
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.Provider, err)
	}

	log.WithField("provider", p.Name()).Debug("transcription provider ready")
	return &stt.Instrumented{Next: p, Log: log, Metrics: metrics}, nil
}
