package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/processor"
)

// RecordingTip is one piece of actionable recording advice.
type RecordingTip struct {
	Priority int    // 1-10, higher first
	Message  string
	RuleID   string // e.g. "level_too_quiet"
}

// MaxRecordingTips caps the number of tips returned.
const MaxRecordingTips = 5

// TipInput is what the tip rules look at.
type TipInput struct {
	Metrics processor.AudioMetrics

	// HumDb is processor.HumLevelDb at MainsHz; SilenceDb if not measured.
	HumDb   float64
	MainsHz int

	SampleRate          int // of the recording
	PreferredSampleRate int // 0 disables the sample-rate rule
}

type tipRule func(TipInput) *RecordingTip

var tipRules = []tipRule{
	tipNoSignal,
	tipClipping,
	tipLevelTooQuiet,
	tipLevelQuiet,
	tipBackgroundNoise,
	tipMainsHum,
	tipPoorSNR,
	tipLowClarity,
	tipOverCompressed,
	tipLowSampleRate,
}

// GenerateRecordingTips returns up to MaxRecordingTips suggestions, most
// important first.
func GenerateRecordingTips(in TipInput) []RecordingTip {
	var tips []RecordingTip
	fired := make(map[string]bool)
	for _, rule := range tipRules {
		if tip := rule(in); tip != nil {
			tips = append(tips, *tip)
			fired[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, fired)
	sort.SliceStable(tips, func(i, j int) bool { return tips[i].Priority > tips[j].Priority })
	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}
	return tips
}

// applyExclusions drops tips made redundant by a more specific one.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	if fired["no_signal"] {
		for _, t := range tips {
			if t.RuleID == "no_signal" {
				return []RecordingTip{t}
			}
		}
	}

	var out []RecordingTip
	for _, t := range tips {
		switch t.RuleID {
		case "level_too_quiet", "level_quiet":
			if fired["level_clipping"] || fired["level_near_clipping"] {
				continue
			}
		case "poor_snr":
			if fired["background_noise"] {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func tipNoSignal(in TipInput) *RecordingTip {
	if in.Metrics.RMS > 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "no_signal",
		Message:  "The recording is silent - check that the right microphone is selected and not muted.",
	}
}

func tipClipping(in TipInput) *RecordingTip {
	switch peak := in.Metrics.PeakDb; {
	case peak >= -0.1:
		return &RecordingTip{
			Priority: 10,
			RuleID:   "level_clipping",
			Message:  "Your recording is clipping - turn your microphone gain down by 6-10 dB to prevent distortion.",
		}
	case peak > -1:
		return &RecordingTip{
			Priority: 9,
			RuleID:   "level_near_clipping",
			Message:  "Your recording peaks very close to full scale - turn the gain down by 3-6 dB for headroom.",
		}
	}
	return nil
}

func tipLevelTooQuiet(in TipInput) *RecordingTip {
	l := in.Metrics.Loudness
	if l >= -30 || l <= processor.SilenceDb {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_too_quiet",
		Message:  fmt.Sprintf("Your microphone gain is too low - try increasing it by about %.0f dB.", -18-l),
	}
}

func tipLevelQuiet(in TipInput) *RecordingTip {
	l := in.Metrics.Loudness
	if l < -30 || l >= -24 {
		return nil
	}
	return &RecordingTip{
		Priority: 8,
		RuleID:   "level_quiet",
		Message:  fmt.Sprintf("Your recording is a bit quiet - raising the gain by about %.0f dB would help transcription.", -18-l),
	}
}

func tipBackgroundNoise(in TipInput) *RecordingTip {
	if in.Metrics.RMS == 0 {
		return nil
	}
	floor := processor.LinearToDb(in.Metrics.NoiseFloor)
	switch {
	case floor > -45:
		return &RecordingTip{
			Priority: 8,
			RuleID:   "background_noise",
			Message:  fmt.Sprintf("Background noise is high (%.0f dBFS) - close windows, switch off fans, or move to a quieter room.", floor),
		}
	case floor > -55:
		return &RecordingTip{
			Priority: 6,
			RuleID:   "background_noise",
			Message:  fmt.Sprintf("There is noticeable background noise (%.0f dBFS) - a quieter room will give cleaner transcripts.", floor),
		}
	}
	return nil
}

func tipMainsHum(in TipInput) *RecordingTip {
	if in.MainsHz == 0 || in.HumDb <= -30 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "mains_hum",
		Message: fmt.Sprintf("There is %d Hz mains hum (%.0f dB) - check for ground loops, keep audio cables away from power leads, or enable the hum notch.",
			in.MainsHz, in.HumDb),
	}
}

func tipPoorSNR(in TipInput) *RecordingTip {
	if in.Metrics.RMS == 0 || in.Metrics.SNR >= 20 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "poor_snr",
		Message:  fmt.Sprintf("Speech is only %.0f dB above the noise - move closer to the microphone.", in.Metrics.SNR),
	}
}

func tipLowClarity(in TipInput) *RecordingTip {
	if in.Metrics.RMS == 0 || in.Metrics.Clarity >= 25 {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "low_clarity",
		Message:  "Speech lacks definition - point the microphone at the speaker's mouth and reduce room echo with soft furnishings.",
	}
}

// tipOverCompressed fires when peaks sit within 6 dB of the RMS level.
func tipOverCompressed(in TipInput) *RecordingTip {
	c := in.Metrics.CrestFactor
	if c <= 0 || c >= 2 {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		RuleID:   "over_compressed",
		Message:  "The recording sounds heavily compressed - turn off automatic gain control or noise suppression in your recorder.",
	}
}

func tipLowSampleRate(in TipInput) *RecordingTip {
	if in.PreferredSampleRate == 0 || in.SampleRate == 0 || in.SampleRate >= in.PreferredSampleRate {
		return nil
	}
	return &RecordingTip{
		Priority: 3,
		RuleID:   "low_sample_rate",
		Message:  fmt.Sprintf("The recording is %d Hz - record at %d Hz or higher to keep consonants crisp.", in.SampleRate, in.PreferredSampleRate),
	}
}

// wrapText wraps text at word boundaries to maxWidth columns, prefixing
// continuation lines with indent.
func wrapText(text string, maxWidth int, indent string) string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > maxWidth {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n"+indent)
}

// FormatTips renders tips as a numbered list wrapped to width.
func FormatTips(tips []RecordingTip, width int) string {
	if len(tips) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range tips {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, wrapText(t.Message, width-3, "   "))
	}
	return sb.String()
}
