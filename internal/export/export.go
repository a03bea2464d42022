// Package export renders transcripts as text, CSV, HTML, JSON, SRT and
// WebVTT.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// Format is an output format name.
type Format string

// Supported formats
const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatCSV, FormatHTML, FormatJSON, FormatSRT, FormatVTT}

// DefaultLowConfidence marks words in HTML output below this confidence.
const DefaultLowConfidence = 0.85

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if f == "text" {
		return FormatText, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q (supported: txt, csv, html, json, srt, vtt)", s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

// Options controls what an export includes.
type Options struct {
	Format            Format
	IncludeSpeakers   bool
	IncludeTimestamps bool
	IncludeMetadata   bool
	Header            string
	Footer            string
	// LowConfidence is the HTML highlight threshold; 0 uses DefaultLowConfidence.
	LowConfidence float64
	// Generated is stamped into metadata; zero uses time.Now.
	Generated time.Time
}

// DefaultOptions returns options with speakers, timestamps and metadata on.
func DefaultOptions(f Format) Options {
	return Options{
		Format:            f,
		IncludeSpeakers:   true,
		IncludeTimestamps: true,
		IncludeMetadata:   true,
		LowConfidence:     DefaultLowConfidence,
	}
}

// Write renders res to w in opts.Format.
func Write(w io.Writer, res *transcript.Result, opts Options) error {
	if res == nil {
		return fmt.Errorf("export: nil transcript")
	}
	if opts.LowConfidence == 0 {
		opts.LowConfidence = DefaultLowConfidence
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	var err error
	switch opts.Format {
	case FormatText, "":
		err = writeText(w, res, opts)
	case FormatCSV:
		err = writeCSV(w, res, opts)
	case FormatHTML:
		err = writeHTML(w, res, opts)
	case FormatJSON:
		err = writeJSON(w, res, opts)
	case FormatSRT:
		err = writeSRT(w, res)
	case FormatVTT:
		err = writeVTT(w, res, opts)
	default:
		return fmt.Errorf("export: unsupported format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", opts.Format, err)
	}
	return nil
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm, or HH:MM:SS,mmm when sep
// is ','. Negative and non-finite values render as zero.
func FormatTimestamp(seconds float64, sep byte) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}

// ParseTimestamp reads HH:MM:SS.mmm (or with a comma) back into seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: want HH:MM:SS.mmm", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return float64(h)*3600 + float64(m)*60 + sec, nil
}

func speakerLabel(s string) string {
	if s == "" {
		return ""
	}
	return "Speaker " + s
}

// speakerTurns groups consecutive words by speaker.
type turn struct {
	Speaker string
	Start   float64
	End     float64
	Words   []transcript.Word
}

func speakerTurns(words []transcript.Word) []turn {
	var turns []turn
	for _, w := range words {
		if n := len(turns); n > 0 && turns[n-1].Speaker == w.Speaker {
			turns[n-1].Words = append(turns[n-1].Words, w)
			turns[n-1].End = w.End
			continue
		}
		turns = append(turns, turn{Speaker: w.Speaker, Start: w.Start, End: w.End, Words: []transcript.Word{w}})
	}
	return turns
}

func joinWords(words []transcript.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	return strings.Join(parts, " ")
}
