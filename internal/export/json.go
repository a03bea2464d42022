package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

type jsonMetadata struct {
	Duration   float64   `json:"duration"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Speakers   []string  `json:"speakers,omitempty"`
	WordCount  int       `json:"word_count"`
	Generated  time.Time `json:"generated"`
}

type jsonDocument struct {
	Header   string               `json:"header,omitempty"`
	Metadata *jsonMetadata        `json:"metadata,omitempty"`
	Text     string               `json:"text"`
	Words    []transcript.Word    `json:"words"`
	Segments []transcript.Segment `json:"segments,omitempty"`
	Footer   string               `json:"footer,omitempty"`
}

func writeJSON(w io.Writer, res *transcript.Result, opts Options) error {
	doc := jsonDocument{
		Header:   opts.Header,
		Text:     res.Text,
		Words:    make([]transcript.Word, len(res.Words)),
		Segments: res.Segments,
		Footer:   opts.Footer,
	}
	copy(doc.Words, res.Words)
	if !opts.IncludeSpeakers {
		for i := range doc.Words {
			doc.Words[i].Speaker = ""
		}
		doc.Segments = nil
	}
	if opts.IncludeMetadata {
		doc.Metadata = &jsonMetadata{
			Duration:   res.Duration,
			Confidence: res.Confidence,
			Language:   res.Language,
			Provider:   res.Provider,
			Speakers:   res.Speakers(),
			WordCount:  res.WordCount(),
			Generated:  opts.Generated.UTC(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
