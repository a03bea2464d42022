package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/clearscribe/internal/cli"
	"github.com/linuxmatters/clearscribe/internal/config"
	"github.com/linuxmatters/clearscribe/internal/logging"
	"github.com/linuxmatters/clearscribe/internal/mains"
	"github.com/linuxmatters/clearscribe/internal/observe"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag `short:"v" help:"Show version information"`
	Config  string      `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	Debug   bool        `help:"Enable debug logging"`
	LogFile string      `type:"path" help:"Write logs to this file instead of stderr"`
	Plain   bool        `help:"Disable the interactive progress display"`

	Analyze    AnalyzeCmd    `cmd:"" help:"Measure recordings and suggest recording improvements"`
	Enhance    EnhanceCmd    `cmd:"" help:"Enhance recordings for transcription"`
	Transcribe TranscribeCmd `cmd:"" help:"Transcribe a recording and export the transcript"`
}

type versionFlag bool

// BeforeReset prints the version before kong checks for a command.
func (versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

// app is the shared state handed to every command's Run method.
type app struct {
	ctx     context.Context
	cfg     *config.Config
	log     *logrus.Logger
	metrics *observe.Metrics
	mains   mains.Detection
	tui     bool
}

func main() {
	var args CLI
	kctx := kong.Parse(&args,
		kong.Name("clearscribe"),
		kong.Description("Court-reporting audio analysis, enhancement and transcription"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	a, closeLog, err := newApp(&args)
	if err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := kctx.Run(a); err != nil {
		a.log.WithError(err).Debug("command failed")
		cli.ReportError(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func newApp(args *CLI) (*app, func(), error) {
	cfg, err := config.Load(args.Config)
	if err != nil {
		return nil, func() {}, err
	}

	tui := !args.Plain && isatty.IsTerminal(os.Stdout.Fd())

	var out io.Writer = os.Stderr
	closeLog := func() {}
	switch {
	case args.LogFile != "":
		f, err := os.OpenFile(args.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeLog, err
		}
		out = f
		closeLog = func() { f.Close() }
	case tui:
		// Errors are reported after the display exits.
		out = io.Discard
	}

	log, err := logging.NewLogger(cfg.Env, cfg.LogLevel, args.Debug, out)
	if err != nil {
		return nil, closeLog, &config.ConfigError{Field: "log_level", Err: err}
	}

	detected := mains.Resolve(cfg.Filters.MainsHz)
	log.WithFields(logrus.Fields{
		"env":       cfg.Env,
		"provider":  cfg.STT.Provider,
		"mains_hz":  detected.Hz,
		"mains_src": detected.Source,
	}).Debug("configuration loaded")

	return &app{
		ctx:     context.Background(),
		cfg:     cfg,
		log:     log,
		metrics: observe.DefaultMetrics(),
		mains:   detected,
		tui:     tui,
	}, closeLog, nil
}
