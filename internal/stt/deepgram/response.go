package deepgram

import (
	"strconv"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

// listenResponse is the subset of the pre-recorded response we read.
type listenResponse struct {
	Metadata struct {
		RequestID string  `json:"request_id"`
		Duration  float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string        `json:"detected_language"`
			Alternatives     []alternative `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Confidence float64 `json:"confidence"`
			Transcript string  `json:"transcript"`
			Speaker    *int    `json:"speaker"`
			Words      []word  `json:"words"`
		} `json:"utterances"`
	} `json:"results"`
}

type alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []word  `json:"words"`
}

type word struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker"`
}

func (w word) toWord() transcript.Word {
	text := w.PunctuatedWord
	if text == "" {
		text = w.Word
	}
	return transcript.Word{
		Word:       text,
		Start:      w.Start,
		End:        w.End,
		Confidence: w.Confidence,
		Speaker:    speakerLabel(w.Speaker),
	}
}

func speakerLabel(s *int) string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(*s)
}

func (r *listenResponse) language() string {
	if len(r.Results.Channels) == 0 {
		return ""
	}
	return r.Results.Channels[0].DetectedLanguage
}

// segments prefers utterances, which carry speaker turns, and otherwise
// treats the first alternative of the first channel as one segment.
func (r *listenResponse) segments() []transcript.Segment {
	if len(r.Results.Utterances) > 0 {
		out := make([]transcript.Segment, 0, len(r.Results.Utterances))
		for _, u := range r.Results.Utterances {
			out = append(out, transcript.Segment{
				Text:       u.Transcript,
				Start:      u.Start,
				End:        u.End,
				Confidence: u.Confidence,
				Speaker:    speakerLabel(u.Speaker),
				Words:      convertWords(u.Words),
			})
		}
		return out
	}

	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return nil
	}
	alt := r.Results.Channels[0].Alternatives[0]
	if alt.Transcript == "" && len(alt.Words) == 0 {
		return nil
	}

	seg := transcript.Segment{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Words:      convertWords(alt.Words),
	}
	if n := len(alt.Words); n > 0 {
		seg.Start = alt.Words[0].Start
		seg.End = alt.Words[n-1].End
	} else {
		seg.End = r.Metadata.Duration
	}
	return []transcript.Segment{seg}
}

func convertWords(ws []word) []transcript.Word {
	if len(ws) == 0 {
		return nil
	}
	out := make([]transcript.Word, len(ws))
	for i, w := range ws {
		out[i] = w.toWord()
	}
	return out
}
