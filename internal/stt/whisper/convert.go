package whisper

import (
	"math"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/transcript"
	openai "github.com/sashabaranov/go-openai"
)

// toSegments converts a verbose response into ordered segments. Word
// timestamps arrive as one flat list; each word is placed in the segment
// containing its midpoint, or the nearest one.
func toSegments(resp openai.AudioResponse) []transcript.Segment {
	segs := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segs = append(segs, transcript.Segment{
			Text:       strings.TrimSpace(s.Text),
			Start:      s.Start,
			End:        s.End,
			Confidence: confidence(s.AvgLogprob),
		})
	}

	if len(segs) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil
		}
		end := resp.Duration
		if n := len(resp.Words); n > 0 && resp.Words[n-1].End > end {
			end = resp.Words[n-1].End
		}
		segs = append(segs, transcript.Segment{Text: text, End: end, Confidence: 1})
	}

	for _, w := range resp.Words {
		i := segmentFor(segs, (w.Start+w.End)/2)
		segs[i].Words = append(segs[i].Words, transcript.Word{
			Word:       strings.TrimSpace(w.Word),
			Start:      w.Start,
			End:        w.End,
			Confidence: segs[i].Confidence,
		})
	}

	clampOverlaps(segs)
	return segs
}

// confidence turns a mean token log-probability into a 0-1 score.
func confidence(avgLogprob float64) float64 {
	c := math.Exp(avgLogprob)
	if math.IsNaN(c) {
		return 0
	}
	return math.Min(math.Max(c, 0), 1)
}

func segmentFor(segs []transcript.Segment, t float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, s := range segs {
		if t >= s.Start && t <= s.End {
			return i
		}
		d := math.Min(math.Abs(t-s.Start), math.Abs(t-s.End))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// clampOverlaps trims measured words so each starts no earlier than the
// previous one ended. Whisper word boundaries occasionally overlap by a few
// milliseconds. A segment left without words is later interpolated over its
// own range, so that range is moved past the previous measured word.
func clampOverlaps(segs []transcript.Segment) {
	prevEnd := math.Inf(-1)
	for i := range segs {
		s := &segs[i]
		if len(s.Words) == 0 {
			if strings.TrimSpace(s.Text) == "" {
				continue
			}
			if s.Start < prevEnd {
				s.Start = prevEnd
			}
			if s.End < s.Start {
				s.End = s.Start
			}
			prevEnd = s.End
			continue
		}
		for j := range s.Words {
			w := &segs[i].Words[j]
			if w.Start < prevEnd {
				w.Start = prevEnd
			}
			if w.End < w.Start {
				w.End = w.Start
			}
			prevEnd = w.End
		}
	}
}

// languageCode maps the full language names returned by verbose_json to
// ISO-639-1 codes where known.
func languageCode(lang string) string {
	if code, ok := languageCodes[strings.ToLower(lang)]; ok {
		return code
	}
	return lang
}

var languageCodes = map[string]string{
	"english":    "en",
	"german":     "de",
	"french":     "fr",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"polish":     "pl",
	"russian":    "ru",
	"ukrainian":  "uk",
	"japanese":   "ja",
	"chinese":    "zh",
	"korean":     "ko",
	"vietnamese": "vi",
	"arabic":     "ar",
	"hindi":      "hi",
	"turkish":    "tr",
	"swedish":    "sv",
}
