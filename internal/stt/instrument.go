package stt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/linuxmatters/clearscribe/internal/transcript"
	"github.com/sirupsen/logrus"
)

// Instrumented wraps a Transcriber with request logging and metrics.
type Instrumented struct {
	Next    Transcriber
	Log     *logrus.Logger
	Metrics *observe.Metrics
}

var _ Transcriber = (*Instrumented)(nil)

// Name returns the wrapped provider's name.
func (i *Instrumented) Name() string { return i.Next.Name() }

// Transcribe delegates to the wrapped provider, logging the outcome with a
// request id and recording its duration or failure reason.
func (i *Instrumented) Transcribe(ctx context.Context, audio []byte, mimeType string, opts Options) (*transcript.Result, error) {
	log := logrus.NewEntry(logrus.StandardLogger())
	if i.Log != nil {
		log = logrus.NewEntry(i.Log)
	}
	log = log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"provider":   i.Next.Name(),
		"bytes":      len(audio),
		"mime_type":  mimeType,
	})

	log.Info("transcription started")
	start := time.Now()
	res, err := i.Next.Transcribe(ctx, audio, mimeType, opts)
	elapsed := time.Since(start)

	if err != nil {
		log.WithError(err).WithField("elapsed", elapsed.String()).Error("transcription failed")
		i.Metrics.RecordFailure(ctx, observe.StageTranscribe, failureReason(err))
		return nil, err
	}

	i.Metrics.RecordTranscription(ctx, i.Next.Name(), elapsed)
	log.WithFields(logrus.Fields{
		"elapsed":    elapsed.String(),
		"words":      res.WordCount(),
		"confidence": res.Confidence,
		"duration":   res.Duration,
	}).Info("transcription completed")
	return res, nil
}

func failureReason(err error) string {
	var berr *BackendError
	var aerr *transcript.AdapterError
	switch {
	case errors.As(err, &aerr):
		return aerr.Reason
	case errors.As(err, &berr):
		return "backend"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unknown"
}
