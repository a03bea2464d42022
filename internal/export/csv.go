package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

var csvHeader = []string{"Start Time", "End Time", "Speaker", "Text", "Confidence"}

// writeCSV writes one row per word.
func writeCSV(w io.Writer, res *transcript.Result, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, word := range res.Words {
		speaker := ""
		if opts.IncludeSpeakers {
			speaker = speakerLabel(word.Speaker)
		}
		row := []string{
			FormatTimestamp(word.Start, '.'),
			FormatTimestamp(word.End, '.'),
			speaker,
			word.Word,
			strconv.FormatFloat(word.Confidence, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads words written by the CSV exporter. Timestamps are at
// millisecond and confidence at 0.001 resolution.
func ParseCSV(r io.Reader) ([]transcript.Word, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("parse csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	for i, h := range csvHeader {
		if strings.TrimSpace(header[i]) != h {
			return nil, fmt.Errorf("parse csv: column %d is %q, want %q", i+1, header[i], h)
		}
	}

	var words []transcript.Word
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return words, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		start, err := ParseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: %w", line, err)
		}
		end, err := ParseTimestamp(rec[1])
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: %w", line, err)
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: confidence: %w", line, err)
		}

		words = append(words, transcript.Word{
			Word:       rec[3],
			Start:      start,
			End:        end,
			Confidence: conf,
			Speaker:    strings.TrimPrefix(rec[2], "Speaker "),
		})
	}
}
