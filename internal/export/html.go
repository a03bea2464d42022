package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

var htmlTemplate = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"ts":      func(s float64) string { return FormatTimestamp(s, '.') },
	"percent": func(c float64) string { return fmt.Sprintf("%.1f%%", c*100) },
	"rounded": func(c float64) string { return fmt.Sprintf("%.0f%%", c*100) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Transcript</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
    .speaker { font-weight: bold; margin-top: 1em; }
    .timestamp { color: #666; font-size: 0.9em; }
    .word { margin-right: 0.25em; }
    .low-confidence { background-color: #fff3cd; }
    .metadata { color: #666; margin-bottom: 2rem; }
  </style>
</head>
<body>
{{- if .Header}}
<h1>{{.Header}}</h1>
{{- end}}
{{- if .Metadata}}
<div class="metadata">
  <p>Duration: {{printf "%.2f" .Result.Duration}}s</p>
  <p>Confidence: {{percent .Result.Confidence}}</p>
  {{- if .Result.Language}}
  <p>Language: {{.Result.Language}}</p>
  {{- end}}
</div>
{{- end}}
{{- range .Turns}}
{{- if .Label}}
<div class="speaker">{{.Label}}:</div>
{{- end}}
<p>
{{- range .Words}}
<span class="word{{if .Low}} low-confidence{{end}}" title="Confidence: {{rounded .Confidence}}">
{{- if $.Timestamps}}<span class="timestamp">[{{ts .Start}}]</span> {{end}}{{.Text}}</span>
{{- end}}
</p>
{{- end}}
{{- if .Footer}}
<footer style="margin-top: 2rem; text-align: center;">{{.Footer}}</footer>
{{- end}}
</body>
</html>
`))

type htmlWord struct {
	Text       string
	Start      float64
	Confidence float64
	Low        bool
}

type htmlTurn struct {
	Label string
	Words []htmlWord
}

type htmlPage struct {
	Header     string
	Footer     string
	Metadata   bool
	Timestamps bool
	Result     *transcript.Result
	Turns      []htmlTurn
}

// writeHTML renders a standalone page. Words below opts.LowConfidence are
// highlighted.
func writeHTML(w io.Writer, res *transcript.Result, opts Options) error {
	page := htmlPage{
		Header:     opts.Header,
		Footer:     opts.Footer,
		Metadata:   opts.IncludeMetadata,
		Timestamps: opts.IncludeTimestamps,
		Result:     res,
	}
	for _, t := range speakerTurns(res.Words) {
		ht := htmlTurn{Words: make([]htmlWord, len(t.Words))}
		if opts.IncludeSpeakers {
			ht.Label = speakerLabel(t.Speaker)
		}
		for i, word := range t.Words {
			ht.Words[i] = htmlWord{
				Text:       word.Word,
				Start:      word.Start,
				Confidence: word.Confidence,
				Low:        word.Confidence < opts.LowConfidence,
			}
		}
		page.Turns = append(page.Turns, ht)
	}
	return htmlTemplate.Execute(w, page)
}
