package config

import (
	"math"

	"github.com/ivlev/chatmotion/internal/motion"
)

// SceneConfig is the output geometry and frame rate.
type SceneConfig struct {
	FPS    int `yaml:"fps"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (s SceneConfig) Validate() error {
	switch {
	case s.FPS <= 0:
		return invalid("scene.fps", "must be positive, got %d", s.FPS)
	case s.Width <= 0:
		return invalid("scene.width", "must be positive, got %d", s.Width)
	case s.Height <= 0:
		return invalid("scene.height", "must be positive, got %d", s.Height)
	}
	return nil
}

// Timing holds the frame constants of the staggered entrance.
type Timing struct {
	BaseStartFrame      int `yaml:"base_start"`
	StaggerFrames       int `yaml:"stagger"`
	EnterDurationFrames int `yaml:"enter_duration"`
	FadeInFrames        int `yaml:"fade_in"`
	SettleDelayFrames   int `yaml:"settle_delay"`
	HeaderDelayFrames   int `yaml:"header_delay"`
	// HoldFrames keeps the finished scene on screen before the video ends.
	HoldFrames int `yaml:"hold"`
}

func DefaultTiming() Timing {
	return Timing{
		BaseStartFrame:      12,
		StaggerFrames:       18,
		EnterDurationFrames: 28,
		FadeInFrames:        10,
		SettleDelayFrames:   6,
		HeaderDelayFrames:   2,
		HoldFrames:          60,
	}
}

func (t Timing) Validate() error {
	switch {
	case t.StaggerFrames <= 0:
		return invalid("timing.stagger", "must be positive, got %d", t.StaggerFrames)
	case t.EnterDurationFrames <= 0:
		return invalid("timing.enter_duration", "must be positive, got %d", t.EnterDurationFrames)
	case t.FadeInFrames <= 0:
		return invalid("timing.fade_in", "must be positive, got %d", t.FadeInFrames)
	case t.SettleDelayFrames < 0:
		return invalid("timing.settle_delay", "must not be negative, got %d", t.SettleDelayFrames)
	case t.HeaderDelayFrames < 0:
		return invalid("timing.header_delay", "must not be negative, got %d", t.HeaderDelayFrames)
	case t.HoldFrames < 0:
		return invalid("timing.hold", "must not be negative, got %d", t.HoldFrames)
	}
	return nil
}

// Pulse is the post-landing micro bump, in frames after an entity's start.
type Pulse struct {
	StartOffset int     `yaml:"start"`
	PeakOffset  int     `yaml:"peak"`
	EndOffset   int     `yaml:"end"`
	Scale       float64 `yaml:"scale"`
}

// Motion collects the springs and output ranges of every animated value.
// The entrance spring's duration always comes from Timing.EnterDurationFrames.
type Motion struct {
	Entrance motion.SpringConfig `yaml:"entrance"`
	Settle   motion.SpringConfig `yaml:"settle"`
	Header   motion.SpringConfig `yaml:"header"`

	SlideDistance float64 `yaml:"slide_distance"`
	PopLow        float64 `yaml:"pop_low"`
	PopHigh       float64 `yaml:"pop_high"`
	SettleHigh    float64 `yaml:"settle_high"`
	Pulse         Pulse   `yaml:"pulse"`
	MaxBlur       float64 `yaml:"max_blur"`

	HeaderOffset  float64 `yaml:"header_offset"`
	IdleAmplitude float64 `yaml:"idle_amplitude"`
	// IdleRate is the angular rate of the idle float in rad/s.
	IdleRate float64 `yaml:"idle_rate"`

	// FadeEasing names a gween easing for the opacity fade; empty is linear.
	FadeEasing string `yaml:"fade_easing,omitempty"`
}

func DefaultMotion() Motion {
	return Motion{
		Entrance:      motion.SpringConfig{Damping: 10, Stiffness: 190, Mass: 0.75},
		Settle:        motion.SpringConfig{Damping: 18, Stiffness: 120, Mass: 1.1, DurationInFrames: 40},
		Header:        motion.SpringConfig{Damping: 16, Stiffness: 170, Mass: 0.8, DurationInFrames: 26},
		SlideDistance: 54,
		PopLow:        0.92,
		PopHigh:       1.0,
		SettleHigh:    1.02,
		Pulse:         Pulse{StartOffset: 16, PeakOffset: 22, EndOffset: 30, Scale: 1.03},
		MaxBlur:       8,
		HeaderOffset:  14,
		IdleAmplitude: 2,
		IdleRate:      1.1,
	}
}

func (m Motion) Validate() error {
	springs := []struct {
		field string
		cfg   motion.SpringConfig
	}{
		{"motion.entrance", m.Entrance},
		{"motion.settle", m.Settle},
		{"motion.header", m.Header},
	}
	for _, s := range springs {
		if err := s.cfg.Validate(); err != nil {
			return &ConfigError{Field: s.field, Err: err}
		}
	}

	positive := []struct {
		field string
		value float64
	}{
		{"motion.slide_distance", m.SlideDistance},
		{"motion.pop_low", m.PopLow},
		{"motion.pop_high", m.PopHigh},
		{"motion.settle_high", m.SettleHigh},
		{"motion.pulse.scale", m.Pulse.Scale},
	}
	for _, f := range positive {
		if !finite(f.value) || f.value <= 0 {
			return invalid(f.field, "must be positive and finite, got %v", f.value)
		}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"motion.max_blur", m.MaxBlur},
		{"motion.header_offset", m.HeaderOffset},
		{"motion.idle_amplitude", m.IdleAmplitude},
		{"motion.idle_rate", m.IdleRate},
	}
	for _, f := range nonNegative {
		if !finite(f.value) || f.value < 0 {
			return invalid(f.field, "must be non-negative and finite, got %v", f.value)
		}
	}

	p := m.Pulse
	if !(p.StartOffset < p.PeakOffset && p.PeakOffset < p.EndOffset) {
		return invalid("motion.pulse", "offsets must increase, got %d/%d/%d", p.StartOffset, p.PeakOffset, p.EndOffset)
	}
	if _, err := motion.EasingByName(m.FadeEasing); err != nil {
		return &ConfigError{Field: "motion.fade_easing", Err: err}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
