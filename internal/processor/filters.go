package processor

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/linuxmatters/clearscribe/internal/audio"
)

// FilterID identifies a filter in the processing chain
type FilterID string

// Filter identifiers for the enhancement chain
const (
	FilterHighpass       FilterID = "highpass"        // Rumble and handling noise
	FilterHumNotch       FilterID = "hum_notch"       // Mains hum, off unless configured
	FilterLowpass        FilterID = "lowpass"         // Hiss above the speech band
	FilterSpeechPresence FilterID = "speech_presence" // Presence lift driven by speechEnhancement
	FilterNoiseGate      FilterID = "noise_gate"      // Compressor driven by noiseReduction
	FilterGain           FilterID = "gain"            // volumeNormalization
)

// EnhanceFilterOrder is the fixed chain order. Options tune the stages but
// never reorder them.
// - Highpass first: rumble would otherwise drive the gate detector
// - Hum notch next to the highpass, both are low-frequency cleanup
// - Presence after band limiting so it does not lift hiss
// - Gate before gain so loudness is measured on the gated signal
// - Gain last
var EnhanceFilterOrder = []FilterID{
	FilterHighpass,
	FilterHumNotch,
	FilterLowpass,
	FilterSpeechPresence,
	FilterNoiseGate,
	FilterGain,
}

// Render limits. Buffers outside these bounds fail with render_failed.
const (
	MinRenderSampleRate = 3000
	MaxRenderSampleRate = 768000
	MaxRenderChannels   = 32
)

// filterBuilderFunc builds a stage from config.
// Returns nil if the filter is disabled.
type filterBuilderFunc func(*FilterChainConfig) stage

// filterBuilders maps FilterID to its builder function.
var filterBuilders = map[FilterID]filterBuilderFunc{
	FilterHighpass:       (*FilterChainConfig).buildHighpassFilter,
	FilterHumNotch:       (*FilterChainConfig).buildHumNotchFilter,
	FilterLowpass:        (*FilterChainConfig).buildLowpassFilter,
	FilterSpeechPresence: (*FilterChainConfig).buildSpeechPresenceFilter,
	FilterNoiseGate:      (*FilterChainConfig).buildNoiseGateFilter,
	FilterGain:           (*FilterChainConfig).buildGainFilter,
}

// FilterChainConfig holds configuration for the enhancement filter chain
type FilterChainConfig struct {
	// Highpass - removes rumble and handling noise below the voice
	HighpassEnabled bool
	HighpassFreq    float64 // Hz
	HighpassQ       float64

	// Hum notch - narrow cut at the mains frequency
	HumNotchEnabled bool
	HumNotchFreq    float64 // Hz, 50 or 60
	HumNotchQ       float64

	// Lowpass - removes hiss above the speech band
	// Bypassed at render time when the cutoff is at or above Nyquist
	LowpassEnabled bool
	LowpassFreq    float64 // Hz
	LowpassQ       float64

	// Speech presence - peaking lift around 1 kHz
	PresenceEnabled bool
	PresenceFreq    float64 // Hz
	PresenceGainDb  float64 // dB
	PresenceQ       float64

	// Noise gate - feed-forward soft-knee compressor
	GateEnabled     bool
	GateThresholdDb float64 // dB
	GateKneeDb      float64 // dB
	GateRatio       float64 // 1-20
	GateAttackMs    float64 // ms, 0 reacts within one sample
	GateReleaseMs   float64 // ms

	// Gain - volumeNormalization
	GainEnabled    bool
	GainLinear     float64 // multiplier, used when GainTargetLUFS is 0
	GainTargetLUFS float64 // < 0 selects loudness normalisation
	GainCeilingDb  float64 // peak ceiling for loudness mode

	// Dereverberation is carried for completeness; no stage implements it.
	Dereverberation bool

	// FilterOrder overrides EnhanceFilterOrder. Used by tests.
	FilterOrder []FilterID
}

// DefaultFilterConfig returns the stock chain with neutral option settings.
func DefaultFilterConfig() *FilterChainConfig {
	return &FilterChainConfig{
		HighpassEnabled: true,
		HighpassFreq:    80.0,
		HighpassQ:       0.7,

		HumNotchEnabled: false,
		HumNotchFreq:    50.0,
		HumNotchQ:       30.0,

		LowpassEnabled: true,
		LowpassFreq:    12000.0,
		LowpassQ:       0.7,

		PresenceEnabled: false,
		PresenceFreq:    1000.0,
		PresenceGainDb:  0,
		PresenceQ:       1.0,

		GateEnabled:     true,
		GateThresholdDb: -50.0,
		GateKneeDb:      40.0,
		GateRatio:       1.0,
		GateAttackMs:    0,
		GateReleaseMs:   250.0,

		GainEnabled:    true,
		GainLinear:     1.0,
		GainTargetLUFS: 0,
		GainCeilingDb:  DefaultPeakCeilingDb,
	}
}

// WithOptions returns a copy of cfg tuned by the user-facing options.
// The options are clamped first.
func (cfg *FilterChainConfig) WithOptions(opts EnhancementOptions) *FilterChainConfig {
	opts = opts.Clamp()
	out := *cfg
	out.FilterOrder = slices.Clone(cfg.FilterOrder)

	// Noise reduction maps 0-1 onto a 1:1 to 20:1 ratio
	out.GateRatio = 1 + opts.NoiseReduction*19

	// Speech enhancement drives presence gain and narrows the bell as it rises
	out.PresenceEnabled = opts.SpeechEnhancement > 0
	out.PresenceGainDb = opts.SpeechEnhancement * 6
	out.PresenceQ = 1 + opts.SpeechEnhancement*4

	switch v := opts.VolumeNormalization; {
	case v > 0:
		out.GainLinear = v
		out.GainTargetLUFS = 0
	case v < 0:
		out.GainLinear = 1
		out.GainTargetLUFS = v
	default:
		out.GainLinear = 1
		out.GainTargetLUFS = 0
	}

	out.Dereverberation = opts.Dereverberation
	return &out
}

// DbToLinear converts decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibel value.
// Inverse of DbToLinear.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return SilenceDb
	}
	return math.Max(20.0*math.Log10(linear), SilenceDb)
}

func (cfg *FilterChainConfig) buildHighpassFilter() stage {
	if !cfg.HighpassEnabled {
		return nil
	}
	return &biquad{filter: FilterHighpass, kind: biquadHighpass, freq: cfg.HighpassFreq, q: cfg.HighpassQ}
}

func (cfg *FilterChainConfig) buildHumNotchFilter() stage {
	if !cfg.HumNotchEnabled {
		return nil
	}
	return &biquad{filter: FilterHumNotch, kind: biquadNotch, freq: cfg.HumNotchFreq, q: cfg.HumNotchQ}
}

func (cfg *FilterChainConfig) buildLowpassFilter() stage {
	if !cfg.LowpassEnabled {
		return nil
	}
	return &biquad{filter: FilterLowpass, kind: biquadLowpass, freq: cfg.LowpassFreq, q: cfg.LowpassQ}
}

func (cfg *FilterChainConfig) buildSpeechPresenceFilter() stage {
	if !cfg.PresenceEnabled || cfg.PresenceGainDb == 0 {
		return nil
	}
	return &biquad{
		filter: FilterSpeechPresence,
		kind:   biquadPeaking,
		freq:   cfg.PresenceFreq,
		q:      cfg.PresenceQ,
		gainDb: cfg.PresenceGainDb,
	}
}

func (cfg *FilterChainConfig) buildNoiseGateFilter() stage {
	if !cfg.GateEnabled {
		return nil
	}
	return &compressor{
		filter:      FilterNoiseGate,
		thresholdDb: cfg.GateThresholdDb,
		kneeDb:      cfg.GateKneeDb,
		ratio:       cfg.GateRatio,
		attackMs:    cfg.GateAttackMs,
		releaseMs:   cfg.GateReleaseMs,
	}
}

func (cfg *FilterChainConfig) buildGainFilter() stage {
	if !cfg.GainEnabled {
		return nil
	}
	if cfg.GainTargetLUFS == 0 && cfg.GainLinear == 1 {
		return nil
	}
	return &gainStage{
		filter:     FilterGain,
		linear:     cfg.GainLinear,
		targetLUFS: cfg.GainTargetLUFS,
		ceilingDb:  cfg.GainCeilingDb,
	}
}

// validate rejects parameter combinations no stage can realise.
func (cfg *FilterChainConfig) validate() error {
	positive := func(name string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
		return nil
	}

	var checks []error
	if cfg.HighpassEnabled {
		checks = append(checks, positive("highpass frequency", cfg.HighpassFreq), positive("highpass Q", cfg.HighpassQ))
	}
	if cfg.HumNotchEnabled {
		checks = append(checks, positive("hum notch frequency", cfg.HumNotchFreq), positive("hum notch Q", cfg.HumNotchQ))
	}
	if cfg.LowpassEnabled {
		checks = append(checks, positive("lowpass frequency", cfg.LowpassFreq), positive("lowpass Q", cfg.LowpassQ))
	}
	if cfg.PresenceEnabled {
		checks = append(checks, positive("presence frequency", cfg.PresenceFreq), positive("presence Q", cfg.PresenceQ))
	}
	if cfg.GateEnabled {
		if cfg.GateRatio < 1 || math.IsNaN(cfg.GateRatio) {
			checks = append(checks, fmt.Errorf("gate ratio must be at least 1, got %v", cfg.GateRatio))
		}
		if cfg.GateKneeDb < 0 || cfg.GateAttackMs < 0 || cfg.GateReleaseMs < 0 {
			checks = append(checks, fmt.Errorf("gate knee and timings must not be negative"))
		}
	}
	if cfg.GainEnabled && cfg.GainTargetLUFS == 0 {
		checks = append(checks, positive("gain", cfg.GainLinear))
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Graph is a built, ready-to-render enhancement chain. It holds no
// per-render state and may be rendered any number of times.
type Graph struct {
	stages []stage
}

// RenderReport describes what happened during one render.
type RenderReport struct {
	Bypassed      []FilterID           // stages skipped for this sample rate
	Normalisation *NormalisationResult // nil unless the gain stage ran in loudness mode
}

// BuildGraph builds the chain in cfg.FilterOrder (or EnhanceFilterOrder if
// empty). Disabled filters are left out.
func BuildGraph(cfg *FilterChainConfig) (*Graph, error) {
	if cfg == nil {
		cfg = DefaultFilterConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid filter configuration: %w", err)
	}

	order := cfg.FilterOrder
	if len(order) == 0 {
		order = EnhanceFilterOrder
	}

	g := &Graph{}
	for _, id := range order {
		builder, ok := filterBuilders[id]
		if !ok {
			return nil, fmt.Errorf("unknown filter %q", id)
		}
		if s := builder(cfg); s != nil {
			g.stages = append(g.stages, s)
		}
	}
	return g, nil
}

// Filters returns the IDs of the stages in the graph, in order.
func (g *Graph) Filters() []FilterID {
	ids := make([]FilterID, len(g.stages))
	for i, s := range g.stages {
		ids[i] = s.id()
	}
	return ids
}

// Describe returns the chain as a filter spec string for logs.
func (g *Graph) Describe() string {
	if len(g.stages) == 0 {
		return "anull"
	}
	specs := make([]string, len(g.stages))
	for i, s := range g.stages {
		specs[i] = s.describe()
	}
	return strings.Join(specs, ",")
}

// Render runs buf through the chain offline and returns a new buffer of
// the same sample rate, channel count and length.
func (g *Graph) Render(buf audio.Buffer) (audio.Buffer, error) {
	out, _, err := g.render(buf, nil)
	return out, err
}

// render is Render with a report and an optional per-stage progress callback.
func (g *Graph) render(buf audio.Buffer, progress func(float64)) (audio.Buffer, *RenderReport, error) {
	sr := buf.SampleRate()
	if sr < MinRenderSampleRate || sr > MaxRenderSampleRate {
		return audio.Buffer{}, nil, fmt.Errorf("unsupported sample rate %d Hz", sr)
	}
	if nc := buf.NumChannels(); nc < 1 || nc > MaxRenderChannels {
		return audio.Buffer{}, nil, fmt.Errorf("unsupported channel count %d", nc)
	}

	ch := make([][]float64, buf.NumChannels())
	for i := range ch {
		ch[i] = buf.Channel(i)
	}

	rep := &RenderReport{}
	for i, s := range g.stages {
		s.render(ch, float64(sr), rep)
		if progress != nil {
			progress(float64(i+1) / float64(len(g.stages)))
		}
	}

	out, err := audio.NewBuffer(sr, ch...)
	if err != nil {
		return audio.Buffer{}, nil, err
	}
	return out, rep, nil
}
