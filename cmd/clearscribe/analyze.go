package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/linuxmatters/clearscribe/internal/audio"
	"github.com/linuxmatters/clearscribe/internal/logging"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/sirupsen/logrus"
)

// AnalyzeCmd prints signal metrics and recording tips for each file.
type AnalyzeCmd struct {
	Files []string `arg:"" name:"files" help:"Recordings to analyse" type:"existingfile"`
	JSON  bool     `help:"Print metrics as JSON instead of the console summary"`
}

type analysisJSON struct {
	File    string                 `json:"file"`
	Metrics processor.AudioMetrics `json:"metrics"`
	HumDb   float64                `json:"hum_db"`
	MainsHz int                    `json:"mains_hz"`
	Tips    []string               `json:"tips,omitempty"`
}

func (c *AnalyzeCmd) Run(a *app) error {
	var results []analysisJSON
	for _, path := range c.Files {
		var data logging.AnalysisData
		err := a.withSpinner("Analysis Mode", path, func(progress processor.ProgressFunc) error {
			var err error
			data, err = a.analyse(path, progress)
			return err
		})
		if err != nil {
			return err
		}

		if c.JSON {
			res := analysisJSON{File: path, Metrics: data.Metrics, HumDb: data.HumDb, MainsHz: data.Mains.Hz}
			for _, tip := range data.Tips {
				res.Tips = append(res.Tips, tip.Message)
			}
			results = append(results, res)
			continue
		}
		logging.DisplayAnalysis(os.Stdout, data)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}

// analyse validates, decodes and measures one recording.
func (a *app) analyse(path string, progress processor.ProgressFunc) (logging.AnalysisData, error) {
	log := a.log.WithField("file", path)

	progress(processor.StageDecode, 0)
	buf, meta, err := a.cfg.Validator().OpenFile(path, "")
	if err != nil {
		a.recordInputFailure(err)
		log.WithError(err).Error("could not open recording")
		return logging.AnalysisData{}, err
	}
	progress(processor.StageDecode, 1)

	progress(processor.StageAnalyse, 0)
	metrics := processor.ComputeMetrics(buf)
	hum := processor.HumLevelDb(buf, float64(a.mains.Hz))
	progress(processor.StageAnalyse, 1)

	log.WithFields(logrus.Fields{
		"seconds": meta.Duration,
		"snr":     metrics.SNR,
		"clarity": metrics.Clarity,
	}).Info("analysis complete")

	return logging.AnalysisData{
		Path:     path,
		Metadata: meta,
		Metrics:  metrics,
		HumDb:    hum,
		Mains:    a.mains,
		Tips: logging.GenerateRecordingTips(logging.TipInput{
			Metrics:             metrics,
			HumDb:               hum,
			MainsHz:             a.mains.Hz,
			SampleRate:          meta.SampleRate,
			PreferredSampleRate: a.cfg.Audio.SampleRate,
		}),
	}, nil
}

// recordInputFailure counts validation and decode failures.
func (a *app) recordInputFailure(err error) {
	var (
		valErr *audio.ValidationError
		decErr *audio.DecodeError
	)
	switch {
	case errors.As(err, &valErr):
		a.metrics.RecordFailure(a.ctx, observe.StageValidate, "invalid_"+valErr.Field)
	case errors.As(err, &decErr):
		a.metrics.RecordFailure(a.ctx, observe.StageValidate, processor.ReasonDecodeFailed)
	}
}
