package processor

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/sirupsen/logrus"
)

// Progress stage names passed to ProgressFunc
const (
	StageDecode  = "decode"
	StageAnalyse = "analyse"
	StageRender  = "render"
	StageMeasure = "measure"
)

// ProgressFunc receives the current stage and its completion (0-1).
type ProgressFunc func(stage string, progress float64)

// Volume normalisation limits applied by EnhancementOptions.Clamp
const (
	MaxVolumeMultiplier = 16.0  // about +24 dB
	MinTargetLUFS       = -70.0 // quieter targets are indistinguishable from silence
	MaxTargetLUFS       = -1.0
)

// EnhancementOptions are the user-facing enhancement controls.
type EnhancementOptions struct {
	// NoiseReduction sets gate aggressiveness, 0-1.
	NoiseReduction float64 `json:"noise_reduction" toml:"noise_reduction" validate:"gte=0,lte=1"`

	// SpeechEnhancement sets presence lift strength, 0-1.
	SpeechEnhancement float64 `json:"speech_enhancement" toml:"speech_enhancement" validate:"gte=0,lte=1"`

	// Dereverberation is accepted and recorded but has no processing stage.
	Dereverberation bool `json:"dereverberation" toml:"dereverberation"`

	// VolumeNormalization: > 0 is a linear multiplier, < 0 a loudness
	// target in LUFS, 0 leaves the level alone.
	VolumeNormalization float64 `json:"volume_normalization" toml:"volume_normalization" validate:"gte=-70,lte=16"`
}

// DefaultEnhancementOptions returns the stock option set.
func DefaultEnhancementOptions() EnhancementOptions {
	return EnhancementOptions{
		NoiseReduction:      0.5,
		SpeechEnhancement:   0.5,
		Dereverberation:     true,
		VolumeNormalization: DefaultTargetLUFS,
	}
}

// Clamp returns a copy with every field forced into its documented range.
// NaN becomes the neutral value for that field.
func (o EnhancementOptions) Clamp() EnhancementOptions {
	o.NoiseReduction = clamp(o.NoiseReduction, 0, 1)
	o.SpeechEnhancement = clamp(o.SpeechEnhancement, 0, 1)

	switch v := o.VolumeNormalization; {
	case math.IsNaN(v):
		o.VolumeNormalization = 0
	case v > 0:
		o.VolumeNormalization = math.Min(v, MaxVolumeMultiplier)
	case v < 0:
		o.VolumeNormalization = clamp(v, MinTargetLUFS, MaxTargetLUFS)
	}
	return o
}

// Enhancement failure reasons
const (
	ReasonDecodeFailed = "decode_failed"
	ReasonRenderFailed = "render_failed"
)

// EnhancementError reports why an enhancement run produced no output.
type EnhancementError struct {
	Reason string
	Err    error
}

func (e *EnhancementError) Error() string {
	return fmt.Sprintf("enhancement failed (%s): %v", e.Reason, e.Err)
}

func (e *EnhancementError) Unwrap() error { return e.Err }

// EnhancementResult holds everything produced by one enhancement run.
type EnhancementResult struct {
	RequestID     string
	Metadata      *audio.Metadata // nil for EnhanceBuffer
	Options       EnhancementOptions
	Original      audio.Buffer
	Enhanced      audio.Buffer
	Before        AudioMetrics
	After         AudioMetrics
	Chain         string
	Filters       []FilterID
	Bypassed      []FilterID
	Normalisation *NormalisationResult
	Duration      time.Duration
}

// Enhancer runs the decode → analyse → render → measure pipeline.
// The zero value uses DefaultFilterConfig and discards logs.
type Enhancer struct {
	Config   *FilterChainConfig
	Log      *logrus.Logger
	Metrics  *observe.Metrics
	Progress ProgressFunc
}

// Enhance decodes data and enhances it with the given options and config.
func Enhance(ctx context.Context, data []byte, mimeType string, opts EnhancementOptions, cfg *FilterChainConfig) (*EnhancementResult, error) {
	return (&Enhancer{Config: cfg}).Enhance(ctx, data, mimeType, opts)
}

// EnhanceBuffer enhances an already decoded buffer.
func EnhanceBuffer(buf audio.Buffer, opts EnhancementOptions, cfg *FilterChainConfig) (*EnhancementResult, error) {
	return (&Enhancer{Config: cfg}).EnhanceBuffer(context.Background(), buf, opts)
}

// Enhance decodes data and runs it through the filter graph. A decode
// failure is reported as decode_failed, a graph or render failure as
// render_failed. No partial result is returned on error.
func (e *Enhancer) Enhance(ctx context.Context, data []byte, mimeType string, opts EnhancementOptions) (*EnhancementResult, error) {
	start := time.Now()
	e.progress(StageDecode, 0)

	buf, meta, err := audio.Decode(data, mimeType)
	if err != nil {
		e.logger().WithError(err).WithField("bytes", len(data)).Error("decode failed")
		e.Metrics.RecordFailure(ctx, observe.StageEnhance, ReasonDecodeFailed)
		return nil, &EnhancementError{Reason: ReasonDecodeFailed, Err: err}
	}
	e.progress(StageDecode, 1)

	res, err := e.enhance(ctx, buf, opts, start)
	if err != nil {
		return nil, err
	}
	res.Metadata = meta
	return res, nil
}

// EnhanceBuffer runs buf through the filter graph.
func (e *Enhancer) EnhanceBuffer(ctx context.Context, buf audio.Buffer, opts EnhancementOptions) (*EnhancementResult, error) {
	return e.enhance(ctx, buf, opts, time.Now())
}

func (e *Enhancer) enhance(ctx context.Context, buf audio.Buffer, opts EnhancementOptions, start time.Time) (*EnhancementResult, error) {
	opts = opts.Clamp()
	res := &EnhancementResult{
		RequestID: uuid.NewString(),
		Options:   opts,
		Original:  buf,
	}
	log := e.logger().WithFields(logrus.Fields{
		"request_id":  res.RequestID,
		"sample_rate": buf.SampleRate(),
		"channels":    buf.NumChannels(),
		"seconds":     buf.Seconds(),
	})

	e.progress(StageAnalyse, 0)
	res.Before = ComputeMetrics(buf)
	e.progress(StageAnalyse, 1)

	base := e.Config
	if base == nil {
		base = DefaultFilterConfig()
	}
	cfg := base.WithOptions(opts)
	if cfg.Dereverberation {
		log.Debug("dereverberation requested; no stage implements it")
	}

	graph, err := BuildGraph(cfg)
	if err != nil {
		return nil, e.renderFailed(ctx, log, err)
	}
	res.Chain = graph.Describe()
	res.Filters = graph.Filters()
	log.WithField("chain", res.Chain).Debug("filter graph built")

	e.progress(StageRender, 0)
	enhanced, rep, err := graph.render(buf, func(p float64) { e.progress(StageRender, p) })
	if err != nil {
		return nil, e.renderFailed(ctx, log, err)
	}
	res.Enhanced = enhanced
	res.Bypassed = rep.Bypassed
	res.Normalisation = rep.Normalisation

	e.progress(StageMeasure, 0)
	res.After = ComputeMetrics(enhanced)
	e.progress(StageMeasure, 1)

	res.Duration = time.Since(start)
	e.Metrics.RecordEnhancement(ctx, res.Duration)

	log.WithFields(logrus.Fields{
		"snr_before":     res.Before.SNR,
		"snr_after":      res.After.SNR,
		"loudness_after": res.After.Loudness,
		"elapsed":        res.Duration.String(),
	}).Info("enhancement complete")

	return res, nil
}

func (e *Enhancer) renderFailed(ctx context.Context, log logrus.FieldLogger, err error) error {
	log.WithError(err).Error("render failed")
	e.Metrics.RecordFailure(ctx, observe.StageEnhance, ReasonRenderFailed)
	return &EnhancementError{Reason: ReasonRenderFailed, Err: err}
}

func (e *Enhancer) progress(stage string, p float64) {
	if e.Progress != nil {
		e.Progress(stage, p)
	}
}

func (e *Enhancer) logger() *logrus.Logger {
	if e.Log != nil {
		return e.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
