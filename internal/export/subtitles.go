package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// Cue limits for subtitle output.
const (
	maxCueWords   = 12
	maxCueSeconds = 6.0
)

type cue struct {
	Start, End float64
	Speaker    string
	Text       string
}

// cues groups words into subtitle cues, breaking on speaker change and on
// the word and duration limits.
func cues(words []transcript.Word) []cue {
	var out []cue
	var cur []transcript.Word
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, cue{
			Start:   cur[0].Start,
			End:     cur[len(cur)-1].End,
			Speaker: cur[0].Speaker,
			Text:    joinWords(cur),
		})
		cur = nil
	}

	for _, w := range words {
		if len(cur) > 0 {
			first := cur[0]
			if w.Speaker != first.Speaker || len(cur) >= maxCueWords || w.End-first.Start > maxCueSeconds {
				flush()
			}
		}
		cur = append(cur, w)
	}
	flush()
	return out
}

func writeSRT(w io.Writer, res *transcript.Result) error {
	bw := bufio.NewWriter(w)
	for i, c := range cues(res.Words) {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(c.Start, ','), FormatTimestamp(c.End, ','), c.Text)
	}
	return bw.Flush()
}

func writeVTT(w io.Writer, res *transcript.Result, opts Options) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("WEBVTT\n\n")
	if opts.Header != "" {
		fmt.Fprintf(bw, "NOTE %s\n\n", opts.Header)
	}
	for _, c := range cues(res.Words) {
		text := c.Text
		if opts.IncludeSpeakers && c.Speaker != "" {
			text = fmt.Sprintf("<v %s>%s", speakerLabel(c.Speaker), text)
		}
		fmt.Fprintf(bw, "%s --> %s\n%s\n\n", FormatTimestamp(c.Start, '.'), FormatTimestamp(c.End, '.'), text)
	}
	return bw.Flush()
}
