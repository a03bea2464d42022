package processor

import (
	"math"
	"slices"
	"strings"
	"testing"
)

func TestDbLinearConversion(t *testing.T) {
	tests := []struct {
		db     float64
		linear float64
	}{
		{0, 1},
		{-6.0206, 0.5},
		{-20, 0.1},
		{20, 10},
	}

	for _, tt := range tests {
		if got := DbToLinear(tt.db); math.Abs(got-tt.linear) > 1e-4 {
			t.Errorf("DbToLinear(%v) = %v, want %v", tt.db, got, tt.linear)
		}
		if got := LinearToDb(tt.linear); math.Abs(got-tt.db) > 1e-3 {
			t.Errorf("LinearToDb(%v) = %v, want %v", tt.linear, got, tt.db)
		}
	}

	for _, v := range []float64{0, -1, 1e-30} {
		if got := LinearToDb(v); got != SilenceDb {
			t.Errorf("LinearToDb(%v) = %v, want floor %v", v, got, SilenceDb)
		}
	}
}

func TestBuildGraphDefault(t *testing.T) {
	g, err := BuildGraph(DefaultFilterConfig())
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	want := []FilterID{FilterHighpass, FilterLowpass, FilterNoiseGate}
	if got := g.Filters(); !slices.Equal(got, want) {
		t.Errorf("Filters() = %v, want %v", got, want)
	}

	wantSpec := "highpass=f=80:q=0.70,lowpass=f=12000:q=0.70," +
		"noise_gate=threshold=-50dB:knee=40dB:ratio=1.00:attack=0ms:release=250ms"
	if got := g.Describe(); got != wantSpec {
		t.Errorf("Describe() =\n%s\nwant\n%s", got, wantSpec)
	}
}

func TestWithOptions(t *testing.T) {
	base := DefaultFilterConfig()

	tests := []struct {
		name        string
		opts        EnhancementOptions
		wantRatio   float64
		wantFilters []FilterID
		wantLinear  float64
		wantTarget  float64
	}{
		{
			name:        "defaults",
			opts:        DefaultEnhancementOptions(),
			wantRatio:   10.5,
			wantFilters: []FilterID{FilterHighpass, FilterLowpass, FilterSpeechPresence, FilterNoiseGate, FilterGain},
			wantLinear:  1,
			wantTarget:  -14,
		},
		{
			name:        "all off",
			opts:        EnhancementOptions{},
			wantRatio:   1,
			wantFilters: []FilterID{FilterHighpass, FilterLowpass, FilterNoiseGate},
			wantLinear:  1,
			wantTarget:  0,
		},
		{
			name:        "linear gain and max reduction",
			opts:        EnhancementOptions{NoiseReduction: 1, VolumeNormalization: 2},
			wantRatio:   20,
			wantFilters: []FilterID{FilterHighpass, FilterLowpass, FilterNoiseGate, FilterGain},
			wantLinear:  2,
			wantTarget:  0,
		},
		{
			name:        "out of range is clamped",
			opts:        EnhancementOptions{NoiseReduction: 7, SpeechEnhancement: -1, VolumeNormalization: 100},
			wantRatio:   20,
			wantFilters: []FilterID{FilterHighpass, FilterLowpass, FilterNoiseGate, FilterGain},
			wantLinear:  MaxVolumeMultiplier,
			wantTarget:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.WithOptions(tt.opts)
			if cfg.GateRatio != tt.wantRatio {
				t.Errorf("GateRatio = %v, want %v", cfg.GateRatio, tt.wantRatio)
			}
			if cfg.GainLinear != tt.wantLinear || cfg.GainTargetLUFS != tt.wantTarget {
				t.Errorf("gain = (%v, %v), want (%v, %v)", cfg.GainLinear, cfg.GainTargetLUFS, tt.wantLinear, tt.wantTarget)
			}

			g, err := BuildGraph(cfg)
			if err != nil {
				t.Fatalf("BuildGraph failed: %v", err)
			}
			if got := g.Filters(); !slices.Equal(got, tt.wantFilters) {
				t.Errorf("Filters() = %v, want %v", got, tt.wantFilters)
			}
		})
	}

	if base.GateRatio != 1 || base.PresenceEnabled {
		t.Error("WithOptions modified the base config")
	}
}

func TestSpeechPresenceMapping(t *testing.T) {
	cfg := DefaultFilterConfig().WithOptions(EnhancementOptions{SpeechEnhancement: 0.5})
	if cfg.PresenceGainDb != 3 || cfg.PresenceQ != 3 {
		t.Errorf("presence = (%v dB, Q %v), want (3 dB, Q 3)", cfg.PresenceGainDb, cfg.PresenceQ)
	}
}

func TestBuildGraphHumNotch(t *testing.T) {
	cfg := DefaultFilterConfig()
	cfg.HumNotchEnabled = true
	cfg.HumNotchFreq = 60

	g, err := BuildGraph(cfg)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	if got := g.Filters(); len(got) < 2 || got[1] != FilterHumNotch {
		t.Errorf("Filters() = %v, want hum_notch second", got)
	}
	if !strings.Contains(g.Describe(), "hum_notch=f=60:q=30.00") {
		t.Errorf("Describe() = %s, missing hum notch", g.Describe())
	}
}

func TestBuildGraphErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FilterChainConfig)
	}{
		{"zero highpass", func(c *FilterChainConfig) { c.HighpassFreq = 0 }},
		{"negative lowpass Q", func(c *FilterChainConfig) { c.LowpassQ = -0.7 }},
		{"notch without frequency", func(c *FilterChainConfig) { c.HumNotchEnabled = true; c.HumNotchFreq = 0 }},
		{"ratio below one", func(c *FilterChainConfig) { c.GateRatio = 0.5 }},
		{"negative release", func(c *FilterChainConfig) { c.GateReleaseMs = -1 }},
		{"zero linear gain", func(c *FilterChainConfig) { c.GainLinear = 0 }},
		{"unknown filter", func(c *FilterChainConfig) { c.FilterOrder = []FilterID{FilterHighpass, "reverb"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFilterConfig()
			tt.mutate(cfg)
			if _, err := BuildGraph(cfg); err == nil {
				t.Error("BuildGraph succeeded, want error")
			}
		})
	}
}

func TestBuildGraphCustomOrder(t *testing.T) {
	cfg := DefaultFilterConfig()
	cfg.GainLinear = 0.5
	cfg.FilterOrder = []FilterID{FilterGain, FilterHighpass}

	g, err := BuildGraph(cfg)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	if got := g.Filters(); !slices.Equal(got, []FilterID{FilterGain, FilterHighpass}) {
		t.Errorf("Filters() = %v", got)
	}
}

func TestRenderPreservesShape(t *testing.T) {
	g, err := BuildGraph(DefaultFilterConfig().WithOptions(DefaultEnhancementOptions()))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts TestAudioOptions
	}{
		{"8 kHz mono", TestAudioOptions{SampleRate: 8000, ToneFreq: 300, ToneLevel: -20, NoiseLevel: -50}},
		{"16 kHz mono", TestAudioOptions{SampleRate: 16000, ToneFreq: 300, ToneLevel: -20}},
		{"44.1 kHz stereo", TestAudioOptions{SampleRate: 44100, Channels: 2, ToneFreq: 1000, ToneLevel: -12}},
		{"48 kHz short", TestAudioOptions{SampleRate: 48000, DurationSecs: 0.01, NoiseLevel: -30}},
		{"96 kHz six channel", TestAudioOptions{SampleRate: 96000, Channels: 6, DurationSecs: 0.2, ToneFreq: 100, ToneLevel: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := generateTestBuffer(t, tt.opts)
			out, err := g.Render(in)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if out.Len() != in.Len() || out.SampleRate() != in.SampleRate() || out.NumChannels() != in.NumChannels() {
				t.Errorf("shape = (%d, %d Hz, %d ch), want (%d, %d Hz, %d ch)",
					out.Len(), out.SampleRate(), out.NumChannels(),
					in.Len(), in.SampleRate(), in.NumChannels())
			}
			checkFinite(t, ComputeMetrics(out))
		})
	}
}

func TestRenderDoesNotModifyInput(t *testing.T) {
	cfg := DefaultFilterConfig()
	cfg.GainLinear = 0.5
	g, err := BuildGraph(cfg)
	if err != nil {
		t.Fatal(err)
	}

	in := generateTestBuffer(t, TestAudioOptions{SampleRate: 8000, ToneFreq: 440, ToneLevel: -6})
	before := in.Channel(0)
	if _, err := g.Render(in); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(before, in.Channel(0)) {
		t.Error("Render modified its input buffer")
	}
}

func TestRenderRejectsUnsupportedFormats(t *testing.T) {
	g, err := BuildGraph(DefaultFilterConfig())
	if err != nil {
		t.Fatal(err)
	}

	many := make([][]float64, MaxRenderChannels+1)
	for i := range many {
		many[i] = make([]float64, 10)
	}

	tests := []struct {
		name string
		sr   int
		ch   [][]float64
	}{
		{"sample rate too low", 2000, [][]float64{make([]float64, 100)}},
		{"sample rate too high", 1000000, [][]float64{make([]float64, 100)}},
		{"too many channels", 44100, many},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Render(mustBuffer(t, tt.sr, tt.ch...)); err == nil {
				t.Error("Render succeeded, want error")
			}
		})
	}
}

func TestRenderBypassesLowpassAboveNyquist(t *testing.T) {
	g, err := BuildGraph(DefaultFilterConfig())
	if err != nil {
		t.Fatal(err)
	}

	_, rep, err := g.render(generateTestBuffer(t, TestAudioOptions{SampleRate: 16000, NoiseLevel: -20}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(rep.Bypassed, FilterLowpass) {
		t.Errorf("Bypassed = %v, want lowpass at 16 kHz", rep.Bypassed)
	}

	_, rep, err = g.render(generateTestBuffer(t, TestAudioOptions{SampleRate: 44100, NoiseLevel: -20}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Bypassed) != 0 {
		t.Errorf("Bypassed = %v, want none at 44.1 kHz", rep.Bypassed)
	}
}

func TestRenderProgress(t *testing.T) {
	g, err := BuildGraph(DefaultFilterConfig())
	if err != nil {
		t.Fatal(err)
	}

	var got []float64
	_, _, err = g.render(generateTestBuffer(t, TestAudioOptions{SampleRate: 8000, DurationSecs: 0.1}), func(p float64) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2] != 1 {
		t.Errorf("progress = %v, want three steps ending at 1", got)
	}
}
