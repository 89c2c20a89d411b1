package motion

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// RestThreshold is the distance from the target at which a spring counts as
// settled. A spring with DurationInFrames set is time-stretched so it reaches
// this distance exactly at that frame.
const RestThreshold = 1e-3

// criticalBand widens the critically damped case so nearly critical presets do
// not hit the ill-conditioned over/under-damped coefficients.
const criticalBand = 1e-6

// SpringConfig describes one damped harmonic oscillator.
type SpringConfig struct {
	Damping   float64 `yaml:"damping"`
	Stiffness float64 `yaml:"stiffness"`
	Mass      float64 `yaml:"mass"`
	// DurationInFrames stretches time so the spring settles at this frame.
	// Zero keeps the natural duration.
	DurationInFrames int `yaml:"duration_frames,omitempty"`
}

// Validate checks that the oscillator is physically meaningful.
func (c SpringConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"damping", c.Damping},
		{"stiffness", c.Stiffness},
		{"mass", c.Mass},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidSpring, f.name, f.value)
		}
	}
	if c.DurationInFrames < 0 {
		return fmt.Errorf("%w: duration_frames must not be negative, got %d", ErrInvalidSpring, c.DurationInFrames)
	}
	return nil
}

// AngularFrequency returns sqrt(k/m) in rad/s.
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// DampingRatio returns c / (2*sqrt(k*m)). Below 1 the spring overshoots.
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// Spring converts elapsed frames into progress toward 1. It holds only values
// derived from its config, so one Spring may be shared across goroutines.
type Spring struct {
	config SpringConfig
	fps    int

	omega float64
	zeta  float64
	// seconds of oscillator time per elapsed frame
	timeScale float64
}

// NewSpring validates cfg and precomputes the time stretch for fps.
func NewSpring(cfg SpringConfig, fps int) (*Spring, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidSpring, fps)
	}

	s := &Spring{
		config: cfg,
		fps:    fps,
		omega:  cfg.AngularFrequency(),
		zeta:   cfg.DampingRatio(),
	}
	if math.Abs(s.zeta-1) < criticalBand {
		s.zeta = 1
	}

	s.timeScale = 1 / float64(fps)
	if cfg.DurationInFrames > 0 {
		s.timeScale = SettleTime(s.omega, s.zeta) / float64(cfg.DurationInFrames)
	}
	return s, nil
}

// Config returns the config the spring was built from.
func (s *Spring) Config() SpringConfig { return s.config }

// Progress returns the oscillator position at elapsed frames after release.
// Anything at or before frame zero is at rest at 0.
func (s *Spring) Progress(elapsed float64) float64 {
	if elapsed <= 0 || math.IsNaN(elapsed) {
		return 0
	}
	t := elapsed * s.timeScale
	pos, _ := harmonica.NewSpring(t, s.omega, s.zeta).Update(0, 0, 1)
	return pos
}

// SettleFrames is the first whole frame after which the spring stays within
// RestThreshold of 1.
func (s *Spring) SettleFrames() int {
	if s.config.DurationInFrames > 0 {
		return s.config.DurationInFrames
	}
	return int(math.Ceil(SettleTime(s.omega, s.zeta) / s.timeScale))
}

// Overshoots reports whether the spring passes its target before settling.
func (s *Spring) Overshoots() bool {
	return s.zeta < 1
}

// Progress is the one-shot form of NewSpring(cfg, fps).Progress(elapsed).
func Progress(elapsed float64, fps int, cfg SpringConfig) (float64, error) {
	s, err := NewSpring(cfg, fps)
	if err != nil {
		return 0, err
	}
	return s.Progress(elapsed), nil
}

// FramesWithin is the first whole frame after which the spring stays within
// threshold of 1. Unlike SettleFrames it ignores DurationInFrames and asks
// the envelope directly, so it can be used for thresholds tighter than
// RestThreshold.
func (s *Spring) FramesWithin(threshold float64) int {
	return int(math.Ceil(SettleTimeWithin(s.omega, s.zeta, threshold) / s.timeScale))
}

// SettleTime returns the time in seconds after which a spring released from
// rest at 0 stays within RestThreshold of 1. It is derived from the decay
// envelope, so it is an upper bound on the true settle time.
func SettleTime(omega, zeta float64) float64 {
	return SettleTimeWithin(omega, zeta, RestThreshold)
}

// SettleTimeWithin is SettleTime for an arbitrary threshold. A threshold of 1
// or more is met from the start.
func SettleTimeWithin(omega, zeta, threshold float64) float64 {
	if threshold >= 1 {
		return 0
	}
	var t float64
	switch {
	case zeta < 1:
		// |x-1| <= e^(-zeta*omega*t) / sqrt(1-zeta^2)
		t = math.Log(1/(threshold*math.Sqrt(1-zeta*zeta))) / (zeta * omega)
	case zeta > 1:
		// |x-1| <= zeta/sqrt(zeta^2-1) * e^(-slow*t)
		root := math.Sqrt(zeta*zeta - 1)
		slow := omega * (zeta - root)
		t = math.Log(zeta/(root*threshold)) / slow
	default:
		// (1+u)e^-u = threshold with u = omega*t; strictly decreasing for u > 0
		envelope := func(u float64) float64 { return (1 + u) * math.Exp(-u) }
		hi := 1.0
		for envelope(hi) > threshold {
			hi *= 2
		}
		lo := 0.0
		for i := 0; i < 64; i++ {
			mid := (lo + hi) / 2
			if envelope(mid) > threshold {
				lo = mid
			} else {
				hi = mid
			}
		}
		t = hi / omega
	}
	return max(t, 0)
}
