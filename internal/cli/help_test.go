package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type testCLI struct {
	Debug   bool `help:"Enable debug logging"`
	Analyze struct {
		Files []string `arg:"" name:"files" help:"Recordings to analyse"`
	} `cmd:"" help:"Print metrics for recordings"`
	Enhance struct {
		Report bool `help:"Write a report next to each output"`
	} `cmd:"" help:"Enhance recordings"`
}

func renderHelp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	parser, err := kong.New(&testCLI{},
		kong.Name("clearscribe"),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	_, _ = parser.Parse(args)
	return out.String()
}

func TestStyledHelpRoot(t *testing.T) {
	out := renderHelp(t, "--help")
	for _, want := range []string{"Clearscribe", "Commands:", "analyze", "Print metrics for recordings", "--debug", "-h, --help"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestStyledHelpCommand(t *testing.T) {
	out := renderHelp(t, "enhance", "--help")
	for _, want := range []string{"clearscribe enhance [flags]", "--report", "--debug"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Commands:") {
		t.Errorf("command help lists subcommands:\n%s", out)
	}
}
