package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/config"
	"github.com/linuxmatters/clearscribe/internal/export"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/linuxmatters/clearscribe/internal/stt"
	"github.com/linuxmatters/clearscribe/internal/stt/providers"
	"github.com/linuxmatters/clearscribe/internal/transcript"
	"github.com/sirupsen/logrus"
)

// TranscribeCmd sends one recording to the configured backend and exports
// the word-level transcript.
type TranscribeCmd struct {
	File   string `arg:"" name:"file" help:"Recording to transcribe" type:"existingfile"`
	Format string `short:"f" help:"Export format: txt, csv, html, json, srt or vtt (default from config)"`
	Output string `short:"o" help:"Output file; - writes to stdout (default <name>.<format>)"`

	Provider  string `help:"Override the configured backend (deepgram, whisper, mock)"`
	Language  string `help:"BCP-47 language code; empty lets the backend detect it"`
	Diarize   bool   `help:"Label speakers"`
	Translate bool   `help:"Translate to English (whisper only)"`
	Enhance   bool   `help:"Enhance the recording before sending it"`
	Title     string `help:"Header line for text, HTML and VTT exports"`
}

func (c *TranscribeCmd) Run(a *app) error {
	if c.Provider != "" {
		a.cfg.STT.Provider = c.Provider
		if err := config.Validate(a.cfg); err != nil {
			return err
		}
	}

	format, err := export.ParseFormat(firstNonEmpty(c.Format, a.cfg.Export.Format))
	if err != nil {
		return &config.ConfigError{Field: "export.format", Err: err}
	}

	backend, err := providers.New(a.cfg.STT, a.log, a.metrics)
	if err != nil {
		return err
	}

	var res *transcript.Result
	err = a.withSpinner("Transcription", c.File, func(progress processor.ProgressFunc) error {
		var err error
		res, err = c.transcribe(a, backend, progress)
		return err
	})
	if err != nil {
		return err
	}

	return c.export(a, res, format)
}

func (c *TranscribeCmd) transcribe(a *app, backend stt.Transcriber, progress processor.ProgressFunc) (*transcript.Result, error) {
	log := a.log.WithFields(logrus.Fields{"file": c.File, "provider": backend.Name()})

	data, err := a.cfg.Validator().ReadFile(c.File, "")
	if err != nil {
		a.recordInputFailure(err)
		return nil, err
	}
	mimeType := audio.DetectType(data)

	if c.Enhance {
		enhancer := &processor.Enhancer{
			Config:   a.cfg.FilterChain(a.mains.Hz),
			Log:      a.log,
			Metrics:  a.metrics,
			Progress: progress,
		}
		enhanced, err := enhancer.Enhance(a.ctx, data, mimeType, a.cfg.Enhancement)
		if err != nil {
			return nil, err
		}
		if data, err = encodeWAV(enhanced.Enhanced); err != nil {
			return nil, err
		}
		mimeType = "audio/wav"
		log.WithField("snr_after", enhanced.After.SNR).Debug("sending enhanced audio")
	}

	opts := a.cfg.STT.Options()
	if c.Language != "" {
		opts.Language = c.Language
	}
	opts.Diarize = opts.Diarize || c.Diarize
	opts.Translate = c.Translate

	ctx := a.ctx
	if d := a.cfg.STT.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	progress("transcribe", 0)
	return backend.Transcribe(ctx, data, mimeType, opts)
}

func (c *TranscribeCmd) export(a *app, res *transcript.Result, format export.Format) error {
	opts := export.Options{
		Format:            format,
		IncludeSpeakers:   a.cfg.Export.IncludeSpeakers,
		IncludeTimestamps: a.cfg.Export.IncludeTimestamps,
		IncludeMetadata:   a.cfg.Export.IncludeMetadata,
		LowConfidence:     a.cfg.Export.LowConfidence,
		Header:            c.Title,
	}

	if c.Output == "-" {
		return a.writeExport(os.Stdout, res, opts)
	}

	out := c.Output
	if out == "" {
		out = strings.TrimSuffix(c.File, filepath.Ext(c.File)) + format.Extension()
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	if err := a.writeExport(f, res, opts); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{"output": out, "words": res.WordCount()}).Info("transcript written")
	fmt.Printf("Transcript (%d words, %.0f%% confidence) written to %s\n", res.WordCount(), res.Confidence*100, out)
	return nil
}

func (a *app) writeExport(w io.Writer, res *transcript.Result, opts export.Options) error {
	if err := export.Write(w, res, opts); err != nil {
		a.metrics.RecordFailure(a.ctx, observe.StageExport, string(opts.Format))
		return err
	}
	return nil
}

// encodeWAV renders buf as 16-bit WAV bytes through a temporary file.
func encodeWAV(buf audio.Buffer) ([]byte, error) {
	f, err := os.CreateTemp("", "clearscribe-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := audio.EncodeWAV(f, buf, audio.OutputBitDepth); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Name())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
