package transcript

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// WordTiming selects where word timestamps come from.
type WordTiming int

const (
	// TimingAuto uses backend word timings when a segment carries them and
	// interpolates otherwise.
	TimingAuto WordTiming = iota
	// TimingInterpolate always splits segments into equal word slices.
	TimingInterpolate
	// TimingBackend requires measured word timings on every non-empty segment.
	TimingBackend
)

func (t WordTiming) String() string {
	switch t {
	case TimingAuto:
		return "auto"
	case TimingInterpolate:
		return "interpolate"
	case TimingBackend:
		return "backend"
	}
	return fmt.Sprintf("WordTiming(%d)", int(t))
}

// ParseWordTiming parses the names returned by WordTiming.String.
func ParseWordTiming(s string) (WordTiming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TimingAuto, nil
	case "interpolate":
		return TimingInterpolate, nil
	case "backend":
		return TimingBackend, nil
	}
	return TimingAuto, fmt.Errorf("unknown word timing %q (want auto, interpolate or backend)", s)
}

// Adapter turns ordered backend segments into a Result.
type Adapter struct {
	Timing   WordTiming
	Language string
}

// Adapt normalises segments with the default Adapter.
func Adapt(segments []Segment) (*Result, error) {
	return Adapter{}.Adapt(segments)
}

// Adapt normalises segments into a Result. Output words keep segment order
// and then word order. Confidence is the mean segment confidence.
//
// Interpolated words get an equal share of the segment and inherit its
// confidence and speaker. This is an approximation; measured word timings
// are preferred when the Timing strategy allows.
func (a Adapter) Adapt(segments []Segment) (*Result, error) {
	if len(segments) == 0 {
		return nil, &AdapterError{Reason: ReasonEmptyInput, Segment: -1}
	}

	res := &Result{
		Language: a.Language,
		Segments: make([]Segment, 0, len(segments)),
	}

	var confidenceSum float64
	for i, seg := range segments {
		if !finite(seg.Start) || !finite(seg.End) || seg.End < seg.Start {
			return nil, &AdapterError{
				Reason:  ReasonInvalidTiming,
				Segment: i,
				Err:     fmt.Errorf("segment runs from %v to %v", seg.Start, seg.End),
			}
		}
		seg.Confidence = clampConfidence(seg.Confidence)
		confidenceSum += seg.Confidence

		words, err := a.segmentWords(seg)
		if err != nil {
			return nil, &AdapterError{Reason: reasonFor(err), Segment: i, Err: err}
		}

		seg.Words = words
		res.Words = append(res.Words, words...)
		res.Segments = append(res.Segments, seg)
		if seg.End > res.Duration {
			res.Duration = seg.End
		}
	}

	res.Confidence = confidenceSum / float64(len(segments))
	res.Text = joinText(segments)

	if err := res.Validate(); err != nil {
		return nil, &AdapterError{Reason: ReasonUnordered, Segment: -1, Err: err}
	}
	return res, nil
}

var (
	errMissingWords = errors.New("segment has no measured word timings")
	errWordTiming   = errors.New("word ends before it starts")
)

func reasonFor(err error) string {
	if errors.Is(err, errMissingWords) {
		return ReasonMissingWordTiming
	}
	return ReasonInvalidTiming
}

func (a Adapter) segmentWords(seg Segment) ([]Word, error) {
	measured := len(seg.Words) > 0
	switch a.Timing {
	case TimingBackend:
		if !measured {
			if strings.TrimSpace(seg.Text) == "" {
				return nil, nil
			}
			return nil, errMissingWords
		}
		return measuredWords(seg)
	case TimingAuto:
		if measured {
			return measuredWords(seg)
		}
	}
	return interpolateWords(seg), nil
}

// measuredWords copies backend words, filling in the segment speaker where
// the word has none.
func measuredWords(seg Segment) ([]Word, error) {
	out := make([]Word, 0, len(seg.Words))
	for _, w := range seg.Words {
		if !finite(w.Start) || !finite(w.End) || w.End < w.Start {
			return nil, fmt.Errorf("%w: %q %v-%v", errWordTiming, w.Word, w.Start, w.End)
		}
		w.Confidence = clampConfidence(w.Confidence)
		if w.Speaker == "" {
			w.Speaker = seg.Speaker
		}
		out = append(out, w)
	}
	return out, nil
}

// interpolateWords splits the segment text on whitespace and gives each
// word an equal slice of the segment.
func interpolateWords(seg Segment) []Word {
	fields := strings.Fields(seg.Text)
	if len(fields) == 0 {
		return nil
	}

	slice := (seg.End - seg.Start) / float64(len(fields))
	out := make([]Word, len(fields))
	for i, f := range fields {
		end := seg.Start + float64(i+1)*slice
		if i == len(fields)-1 {
			end = seg.End
		}
		out[i] = Word{
			Word:       f,
			Start:      seg.Start + float64(i)*slice,
			End:        end,
			Confidence: seg.Confidence,
			Speaker:    seg.Speaker,
		}
	}
	return out
}

// clampConfidence bounds a backend score to [0,1]. NaN maps to 0.
func clampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Min(math.Max(c, 0), 1)
}
