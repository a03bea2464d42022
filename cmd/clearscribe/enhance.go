package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/logging"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/linuxmatters/clearscribe/internal/ui"
)

// EnhanceCmd writes an enhanced copy of each recording.
type EnhanceCmd struct {
	Files  []string `arg:"" name:"files" help:"Recordings to enhance" type:"existingfile"`
	Report bool     `help:"Write a text report next to each enhanced file"`

	NoiseReduction    *float64 `help:"Noise reduction strength, 0-1"`
	SpeechEnhancement *float64 `help:"Speech presence lift, 0-1"`
	Volume            *float64 `help:"Loudness target in LUFS (negative), linear gain (positive) or 0 for none"`
	NoDereverberation bool     `help:"Turn off the dereverberation request"`
}

// options layers the command-line overrides on the configured defaults.
func (c *EnhanceCmd) options(base processor.EnhancementOptions) processor.EnhancementOptions {
	if c.NoiseReduction != nil {
		base.NoiseReduction = *c.NoiseReduction
	}
	if c.SpeechEnhancement != nil {
		base.SpeechEnhancement = *c.SpeechEnhancement
	}
	if c.Volume != nil {
		base.VolumeNormalization = *c.Volume
	}
	if c.NoDereverberation {
		base.Dereverberation = false
	}
	return base.Clamp()
}

func (c *EnhanceCmd) Run(a *app) error {
	opts := c.options(a.cfg.Enhancement)

	final, err := a.withQueue(c.Files, func(send func(tea.Msg)) {
		for i, path := range c.Files {
			send(ui.FileStartMsg{FileIndex: i, FileName: path})
			send(c.enhanceFile(a, i, path, opts, func(stage string, p float64) {
				send(ui.ProgressMsg{Stage: stage, Progress: p})
			}))
		}
		send(ui.AllCompleteMsg{})
	})
	if err != nil {
		return err
	}
	if final.FailedFiles > 0 {
		for _, f := range final.Files {
			if f.Error != nil {
				return fmt.Errorf("%d of %d file(s) failed: %w", final.FailedFiles, final.TotalFiles, f.Error)
			}
		}
	}
	return nil
}

func (c *EnhanceCmd) enhanceFile(a *app, index int, path string, opts processor.EnhancementOptions, progress processor.ProgressFunc) ui.FileCompleteMsg {
	start := time.Now()
	msg := ui.FileCompleteMsg{FileIndex: index}
	log := a.log.WithField("file", path)

	progress(processor.StageDecode, 0)
	data, err := a.cfg.Validator().ReadFile(path, "")
	if err != nil {
		a.recordInputFailure(err)
		log.WithError(err).Error("could not read recording")
		msg.Error = err
		return msg
	}

	enhancer := &processor.Enhancer{
		Config:   a.cfg.FilterChain(a.mains.Hz),
		Log:      a.log,
		Metrics:  a.metrics,
		Progress: progress,
	}
	res, err := enhancer.Enhance(a.ctx, data, "", opts)
	if err != nil {
		msg.Error = err
		return msg
	}

	out := audio.EnhancedPath(path)
	if err := audio.WriteWAVFile(out, res.Enhanced); err != nil {
		log.WithError(err).Error("could not write enhanced file")
		msg.Error = err
		return msg
	}

	msg.OutputPath = out
	msg.LoudnessBefore = res.Before.Loudness
	msg.LoudnessAfter = res.After.Loudness
	msg.SNRBefore = res.Before.SNR
	msg.SNRAfter = res.After.SNR
	msg.Elapsed = time.Since(start)

	if c.Report {
		report, err := logging.GenerateReport(logging.ReportData{
			InputPath:  path,
			OutputPath: out,
			StartTime:  start,
			EndTime:    time.Now(),
			Result:     res,
			Tips: logging.GenerateRecordingTips(logging.TipInput{
				Metrics:             res.Before,
				HumDb:               processor.HumLevelDb(res.Original, float64(a.mains.Hz)),
				MainsHz:             a.mains.Hz,
				SampleRate:          res.Original.SampleRate(),
				PreferredSampleRate: a.cfg.Audio.SampleRate,
			}),
		})
		if err != nil {
			// The enhanced file is already written; a missing report is not fatal.
			log.WithError(err).Warn("could not write report")
		} else {
			msg.ReportPath = report
		}
	}

	log.WithField("output", out).Info("enhanced file written")
	return msg
}
