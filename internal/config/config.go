// Package config holds the application configuration: built-in defaults,
// an optional TOML file, a .env file and environment variables, applied in
// that order and validated as a whole.
package config

import (
	"fmt"
	"time"

	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the root configuration.
type Config struct {
	Env         string                       `toml:"env" validate:"oneof=development production test"`
	LogLevel    string                       `toml:"log_level" validate:"oneof=trace debug info warn error"`
	STT         STTConfig                    `toml:"stt"`
	Audio       AudioConfig                  `toml:"audio"`
	Enhancement processor.EnhancementOptions `toml:"enhancement"`
	Filters     FilterConfig                 `toml:"filters"`
	Export      ExportConfig                 `toml:"export"`
}

// STTConfig selects and configures the transcription backend.
type STTConfig struct {
	Provider   string `toml:"provider" validate:"oneof=deepgram whisper mock"`
	Model      string `toml:"model"`
	Language   string `toml:"language" validate:"omitempty,bcp47_language_tag"`
	Diarize    bool   `toml:"diarize"`
	Punctuate  bool   `toml:"punctuate"`
	Timestamps bool   `toml:"timestamps"`
	WordTiming string `toml:"word_timing" validate:"oneof=auto interpolate backend"`

	DeepgramAPIKey   string `toml:"deepgram_api_key"`
	DeepgramEndpoint string `toml:"deepgram_endpoint" validate:"omitempty,url"`
	OpenAIAPIKey     string `toml:"openai_api_key"`
	OpenAIBaseURL    string `toml:"openai_base_url" validate:"omitempty,url"`

	TimeoutSeconds int `toml:"timeout_seconds" validate:"gte=0,lte=3600"`
}

// AudioConfig holds upload limits and the expected recording format.
type AudioConfig struct {
	MaxUploadBytes int64    `toml:"max_upload_bytes" validate:"gt=0"`
	SupportedTypes []string `toml:"supported_types" validate:"min=1,dive,required"`
	SampleRate     int      `toml:"sample_rate" validate:"oneof=8000 16000 22050 24000 32000 44100 48000 96000"`
	Channels       int      `toml:"channels" validate:"oneof=1 2"`
}

// FilterConfig tunes the fixed filter graph.
type FilterConfig struct {
	HighpassHz float64 `toml:"highpass_hz" validate:"gt=0,lt=1000"`
	LowpassHz  float64 `toml:"lowpass_hz" validate:"gt=1000"`
	HumNotch   bool    `toml:"hum_notch"`
	// MainsHz is the hum fundamental; 0 detects it from the local timezone.
	MainsHz int `toml:"mains_hz" validate:"oneof=0 50 60"`
}

// ExportConfig sets transcript export defaults.
type ExportConfig struct {
	Format            string  `toml:"format" validate:"oneof=txt csv html json srt vtt"`
	IncludeSpeakers   bool    `toml:"include_speakers"`
	IncludeTimestamps bool    `toml:"include_timestamps"`
	IncludeMetadata   bool    `toml:"include_metadata"`
	LowConfidence     float64 `toml:"low_confidence" validate:"gte=0,lte=1"`
}

// Default returns the built-in configuration.
func Default() *Config {
	filters := processor.DefaultFilterConfig()
	return &Config{
		Env:      EnvDevelopment,
		LogLevel: "info",
		STT: STTConfig{
			Provider:       "deepgram",
			Punctuate:      true,
			Timestamps:     true,
			WordTiming:     transcript.TimingAuto.String(),
			TimeoutSeconds: 300,
		},
		Audio: AudioConfig{
			MaxUploadBytes: audio.MaxUploadBytes,
			SupportedTypes: append([]string(nil), audio.SupportedTypes...),
			SampleRate:     44100,
			Channels:       1,
		},
		Enhancement: processor.DefaultEnhancementOptions(),
		Filters: FilterConfig{
			HighpassHz: filters.HighpassFreq,
			LowpassHz:  filters.LowpassFreq,
		},
		Export: ExportConfig{
			Format:            "txt",
			IncludeSpeakers:   true,
			IncludeTimestamps: true,
			LowConfidence:     0.85,
		},
	}
}

// Validator returns an upload validator using the configured limits.
func (c *Config) Validator() audio.Validator {
	return audio.Validator{MaxBytes: c.Audio.MaxUploadBytes, Allowed: c.Audio.SupportedTypes}
}

// Timing returns the parsed word-timing strategy. Validation guarantees it
// parses.
func (s STTConfig) Timing() transcript.WordTiming {
	t, _ := transcript.ParseWordTiming(s.WordTiming)
	return t
}

// Timeout returns the per-request deadline, or 0 for none.
func (s STTConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Options returns the per-request options bag for the backend.
func (s STTConfig) Options() stt.Options {
	return stt.Options{
		Model:      s.Model,
		Language:   s.Language,
		Diarize:    s.Diarize,
		Punctuate:  s.Punctuate,
		Timestamps: s.Timestamps,
	}
}

// RequireCredentials reports a ConfigError when the selected provider has
// no API key.
func (s STTConfig) RequireCredentials() error {
	switch s.Provider {
	case "deepgram":
		if s.DeepgramAPIKey == "" {
			return &ConfigError{Field: "stt.deepgram_api_key", Err: fmt.Errorf("required for provider %q (set DEEPGRAM_API_KEY)", s.Provider)}
		}
	case "whisper":
		if s.OpenAIAPIKey == "" {
			return &ConfigError{Field: "stt.openai_api_key", Err: fmt.Errorf("required for provider %q (set OPENAI_API_KEY)", s.Provider)}
		}
	}
	return nil
}

// FilterChain returns the filter graph config for a recording, with the hum
// notch tuned to mainsHz when enabled.
func (c *Config) FilterChain(mainsHz int) *processor.FilterChainConfig {
	fc := processor.DefaultFilterConfig()
	fc.HighpassFreq = c.Filters.HighpassHz
	fc.LowpassFreq = c.Filters.LowpassHz
	if c.Filters.HumNotch && mainsHz > 0 {
		fc.HumNotchEnabled = true
		fc.HumNotchFreq = float64(mainsHz)
	}
	return fc
}
