package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/clearscribe/internal/transcript"
)

var generated = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult(t *testing.T) *transcript.Result {
	t.Helper()
	res, err := transcript.Adapt([]transcript.Segment{
		{Text: "Good morning, your honour.", Start: 0.5, End: 2.5, Confidence: 0.95, Speaker: "1"},
		{Text: `He said "objection" twice`, Start: 3, End: 5, Confidence: 0.7, Speaker: "2"},
		{Text: "Sustained.", Start: 3661.25, End: 3662, Confidence: 0.9, Speaker: "1"},
	})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	res.Provider = "mock"
	res.Language = "en"
	return res
}

func render(t *testing.T, res *transcript.Result, opts Options) string {
	t.Helper()
	opts.Generated = generated
	var buf bytes.Buffer
	if err := Write(&buf, res, opts); err != nil {
		t.Fatalf("Write(%s): %v", opts.Format, err)
	}
	return buf.String()
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		sep  byte
		want string
	}{
		{0, '.', "00:00:00.000"},
		{1.5, '.', "00:00:01.500"},
		{61.0005, ',', "00:01:01,001"},
		{3661.25, '.', "01:01:01.250"},
		{-3, '.', "00:00:00.000"},
		{math.NaN(), ',', "00:00:00,000"},
		{36000, '.', "10:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in, tt.sep); got != tt.want {
			t.Errorf("FormatTimestamp(%v, %q) = %q, want %q", tt.in, tt.sep, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"01:01:01.250", "01:01:01,250"} {
		got, err := ParseTimestamp(s)
		if err != nil || math.Abs(got-3661.25) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v, %v", s, got, err)
		}
	}
	for _, bad := range []string{"", "1:2", "aa:00:00.000", "00:bb:00.000", "00:00:cc"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) accepted", bad)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"txt": FormatText, "TEXT": FormatText, ".srt": FormatSRT, "vtt": FormatVTT, "Csv": FormatCSV}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	for _, bad := range []string{"pdf", "docx", ""} {
		if _, err := ParseFormat(bad); err == nil {
			t.Errorf("ParseFormat(%q) accepted", bad)
		}
	}
	if FormatSRT.Extension() != ".srt" {
		t.Error("Extension")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	res := sampleResult(t)
	out := render(t, res, DefaultOptions(FormatCSV))

	if !strings.HasPrefix(out, "Start Time,End Time,Speaker,Text,Confidence\n") {
		t.Fatalf("header missing: %q", out)
	}

	words, err := ParseCSV(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(words) != len(res.Words) {
		t.Fatalf("round trip has %d words, want %d", len(words), len(res.Words))
	}
	for i, w := range words {
		orig := res.Words[i]
		if w.Word != orig.Word || w.Speaker != orig.Speaker {
			t.Errorf("word %d = %+v, want %+v", i, w, orig)
		}
		if math.Abs(w.Start-orig.Start) > 0.0005 || math.Abs(w.End-orig.End) > 0.0005 {
			t.Errorf("word %d timing %v-%v, want %v-%v", i, w.Start, w.End, orig.Start, orig.End)
		}
		if math.Abs(w.Confidence-orig.Confidence) > 0.0005 {
			t.Errorf("word %d confidence %v, want %v", i, w.Confidence, orig.Confidence)
		}
	}
}

func TestCSVWithoutSpeakers(t *testing.T) {
	opts := DefaultOptions(FormatCSV)
	opts.IncludeSpeakers = false
	words, err := ParseCSV(strings.NewReader(render(t, sampleResult(t), opts)))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	for _, w := range words {
		if w.Speaker != "" {
			t.Fatalf("speaker %q exported with IncludeSpeakers off", w.Speaker)
		}
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"wrong header": "a,b,c,d,e\n",
		"short row":    "Start Time,End Time,Speaker,Text,Confidence\n00:00:00.000,00:00:01.000\n",
		"bad time":     "Start Time,End Time,Speaker,Text,Confidence\nnope,00:00:01.000,,hi,0.9\n",
		"bad conf":     "Start Time,End Time,Speaker,Text,Confidence\n00:00:00.000,00:00:01.000,,hi,high\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestText(t *testing.T) {
	opts := DefaultOptions(FormatText)
	opts.Header = "State v. Smith"
	opts.Footer = "End of record"
	out := render(t, sampleResult(t), opts)

	for _, want := range []string{
		"State v. Smith\n",
		"Duration: 3662.00s",
		"Confidence: 85.0%",
		"[00:00:00.500] Speaker 1: Good morning, your honour.",
		"[00:00:03.000] Speaker 2: He said",
		"End of record\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	plain := render(t, sampleResult(t), Options{Format: FormatText})
	if strings.Contains(plain, "Speaker") || strings.Contains(plain, "[") || strings.Contains(plain, "Duration") {
		t.Errorf("plain output has decorations:\n%s", plain)
	}
}

func TestHTML(t *testing.T) {
	opts := DefaultOptions(FormatHTML)
	opts.Header = "<Hearing & Notes>"
	out := render(t, sampleResult(t), opts)

	if !strings.Contains(out, "&lt;Hearing &amp; Notes&gt;") {
		t.Error("header not escaped")
	}
	if strings.Count(out, `class="word low-confidence"`) != 4 {
		t.Errorf("want 4 low-confidence words (segment at 0.70):\n%s", out)
	}
	if !strings.Contains(out, `<div class="speaker">Speaker 2:</div>`) {
		t.Error("speaker heading missing")
	}
	if !strings.Contains(out, "&#34;objection&#34;") {
		t.Error("word text not escaped")
	}
	if !strings.Contains(out, `title="Confidence: 95%"`) {
		t.Error("per-word confidence missing")
	}
	if !strings.Contains(out, "[00:00:00.500]") {
		t.Error("timestamps missing")
	}
}

func TestJSON(t *testing.T) {
	out := render(t, sampleResult(t), DefaultOptions(FormatJSON))

	var doc struct {
		Metadata struct {
			WordCount int       `json:"word_count"`
			Speakers  []string  `json:"speakers"`
			Generated time.Time `json:"generated"`
		} `json:"metadata"`
		Words []transcript.Word `json:"words"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Metadata.WordCount != 9 || len(doc.Words) != 9 {
		t.Errorf("word count = %d/%d, want 9", doc.Metadata.WordCount, len(doc.Words))
	}
	if len(doc.Metadata.Speakers) != 2 || !doc.Metadata.Generated.Equal(generated) {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
}

func TestSubtitles(t *testing.T) {
	res := sampleResult(t)

	srt := render(t, res, DefaultOptions(FormatSRT))
	if !strings.HasPrefix(srt, "1\n00:00:00,500 --> 00:00:02,500\nGood morning, your honour.\n\n2\n") {
		t.Errorf("srt:\n%s", srt)
	}
	if !strings.Contains(srt, "3\n01:01:01,250 --> 01:01:02,000\nSustained.") {
		t.Errorf("srt last cue:\n%s", srt)
	}

	vtt := render(t, res, DefaultOptions(FormatVTT))
	if !strings.HasPrefix(vtt, "WEBVTT\n\n") {
		t.Errorf("vtt header:\n%s", vtt)
	}
	if !strings.Contains(vtt, "00:00:03.000 --> 00:00:05.000\n<v Speaker 2>He said") {
		t.Errorf("vtt cue:\n%s", vtt)
	}
}

func TestCueLimits(t *testing.T) {
	var words []transcript.Word
	for i := range 30 {
		words = append(words, transcript.Word{Word: "w", Start: float64(i) * 0.2, End: float64(i)*0.2 + 0.2})
	}
	cs := cues(words)
	if len(cs) != 3 {
		t.Fatalf("got %d cues, want 3 (12-word limit)", len(cs))
	}

	slow := []transcript.Word{{Word: "a", Start: 0, End: 4}, {Word: "b", Start: 4, End: 8}}
	if got := len(cues(slow)); got != 2 {
		t.Errorf("got %d cues, want 2 (duration limit)", got)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(t), Options{Format: "pdf"}); err == nil {
		t.Error("expected error for pdf")
	}
	if err := Write(&buf, nil, Options{Format: FormatText}); err == nil {
		t.Error("expected error for nil transcript")
	}
}
