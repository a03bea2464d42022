// Package transcript defines the uniform word-level transcript and adapts
// backend output into it.
package transcript

import (
	"fmt"
	"math"
	"strings"
)

// Word is one transcribed word with its timing in seconds.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Duration returns End - Start.
func (w Word) Duration() float64 { return w.End - w.Start }

// Segment is a backend-reported stretch of speech. Words is only set when
// the backend measured word timings itself.
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
	Words      []Word  `json:"words,omitempty"`
}

// Result is a complete transcript. Words are sorted by Start and do not
// overlap; every word has Start <= End.
type Result struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language,omitempty"`
	Duration   float64   `json:"duration"`
	Provider   string    `json:"provider,omitempty"`
	Words      []Word    `json:"words"`
	Segments   []Segment `json:"segments,omitempty"`
}

// timingTolerance absorbs float rounding in backend timestamps (seconds).
const timingTolerance = 1e-6

// Validate checks the timing invariants.
func (r *Result) Validate() error {
	var prev *Word
	for i := range r.Words {
		w := &r.Words[i]
		if !finite(w.Start) || !finite(w.End) {
			return fmt.Errorf("word %d (%q) has non-finite timing", i, w.Word)
		}
		if w.Start > w.End {
			return fmt.Errorf("word %d (%q) starts at %.3f after it ends at %.3f", i, w.Word, w.Start, w.End)
		}
		if prev != nil {
			if w.Start < prev.Start {
				return fmt.Errorf("word %d (%q) at %.3f is before word %d at %.3f", i, w.Word, w.Start, i-1, prev.Start)
			}
			if w.Start < prev.End-timingTolerance {
				return fmt.Errorf("word %d (%q) overlaps word %d (%.3f < %.3f)", i, w.Word, i-1, w.Start, prev.End)
			}
		}
		prev = w
	}
	return nil
}

// Speakers returns the distinct speaker labels in order of first appearance.
func (r *Result) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range r.Words {
		if w.Speaker != "" && !seen[w.Speaker] {
			seen[w.Speaker] = true
			out = append(out, w.Speaker)
		}
	}
	return out
}

// WordCount returns the number of words.
func (r *Result) WordCount() int { return len(r.Words) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// joinText builds the transcript text from segment texts.
func joinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
