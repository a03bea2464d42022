package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

func writeText(w io.Writer, res *transcript.Result, opts Options) error {
	bw := bufio.NewWriter(w)

	if opts.Header != "" {
		fmt.Fprintf(bw, "%s\n\n", opts.Header)
	}
	if opts.IncludeMetadata {
		writeTextMetadata(bw, res, opts)
	}

	if len(res.Words) == 0 {
		fmt.Fprintln(bw, res.Text)
	}
	for _, t := range speakerTurns(res.Words) {
		line := joinWords(t.Words)
		if opts.IncludeSpeakers && t.Speaker != "" {
			line = speakerLabel(t.Speaker) + ": " + line
		}
		if opts.IncludeTimestamps {
			line = "[" + FormatTimestamp(t.Start, '.') + "] " + line
		}
		fmt.Fprintln(bw, line)
	}

	if opts.Footer != "" {
		fmt.Fprintf(bw, "\n%s\n", opts.Footer)
	}
	return bw.Flush()
}

func writeTextMetadata(w io.Writer, res *transcript.Result, opts Options) {
	fmt.Fprintf(w, "Duration: %.2fs\n", res.Duration)
	fmt.Fprintf(w, "Confidence: %.1f%%\n", res.Confidence*100)
	if res.Language != "" {
		fmt.Fprintf(w, "Language: %s\n", res.Language)
	}
	if res.Provider != "" {
		fmt.Fprintf(w, "Provider: %s\n", res.Provider)
	}
	fmt.Fprintf(w, "Generated: %s\n\n", opts.Generated.UTC().Format("2006-01-02 15:04:05 MST"))
}
