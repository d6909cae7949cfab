package dsp

import "math"

// Transition records the playback state on both sides of the most recent
// play/pause edge.
type Transition struct {
	From bool
	To   bool
}

// PlaybackState is the play/pause state seen by the smoother.
type PlaybackState struct {
	Playing    bool
	Transition Transition
}

// Set records a play/pause edge.
func (ps *PlaybackState) Set(playing bool) {
	ps.Transition = Transition{From: ps.Playing, To: playing}
	ps.Playing = playing
}

type SmootherConfig struct {
	FadeOutFactor   float64 `toml:"fade_out"`  // amount the fade memory drops per tick after a pause
	SmoothingFactor float64 `toml:"smoothing"` // exponential smoothing rate applied every tick
	SnapThreshold   float64 `toml:"snap"`      // values below this snap to zero when the target is zero
}

func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{
		FadeOutFactor:   0.05,
		SmoothingFactor: 0.1,
		SnapThreshold:   1e-4,
	}
}

// Smoother turns the raw per-tick amplitude into the value the animation
// consumes. It first picks a target from the playback state (silent, fading
// out after a pause, or live) and then eases toward that target at a fixed
// rate. The output is always in [0, 1].
type Smoother struct {
	cfg SmootherConfig

	value    float64 // smoothed output
	previous float64 // fade memory
	fading   bool
}

func NewSmoother(cfg SmootherConfig) *Smoother {
	if cfg.SmoothingFactor <= 0 || cfg.SmoothingFactor > 1 {
		cfg.SmoothingFactor = DefaultSmootherConfig().SmoothingFactor
	}

	if cfg.FadeOutFactor <= 0 {
		cfg.FadeOutFactor = DefaultSmootherConfig().FadeOutFactor
	}

	return &Smoother{cfg: cfg}
}

// Smooth runs one tick and returns the smoothed amplitude.
func (sm *Smoother) Smooth(raw float64, st PlaybackState) float64 {
	raw = clamp01(raw)

	var target float64

	switch {
	case !st.Transition.From && !st.Transition.To:
		sm.previous = 0
		sm.fading = false

	case !st.Playing && !st.Transition.To:
		// start the fade from what is on screen, not from the last raw value.
		if !sm.fading {
			sm.previous = sm.value
			sm.fading = true
		}

		sm.previous = math.Max(sm.previous-sm.cfg.FadeOutFactor, 0)
		target = sm.previous

	case st.Playing:
		sm.fading = false
		sm.previous = raw
		target = raw

	default:
		sm.fading = false
		target = raw
	}

	sm.value += (target - sm.value) * sm.cfg.SmoothingFactor

	if target == 0 && sm.value < sm.cfg.SnapThreshold {
		sm.value = 0
	}

	sm.value = clamp01(sm.value)

	return sm.value
}

// Value returns the last smoothed amplitude.
func (sm *Smoother) Value() float64 {
	return sm.value
}

// Reset clears all smoothing memory.
func (sm *Smoother) Reset() {
	sm.value = 0
	sm.previous = 0
	sm.fading = false
}
