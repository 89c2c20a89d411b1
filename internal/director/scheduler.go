package director

import (
	"fmt"
	"math"

	"github.com/ivlev/chatmotion/internal/config"
)

// Phase is where an entity is in its entrance at a given frame. It is always
// derived from the frame, never stored.
type Phase int

const (
	// PhasePending: not started, fully displaced and invisible.
	PhasePending Phase = iota
	// PhaseEntering: entrance spring running.
	PhaseEntering
	// PhaseSettled: entrance duration elapsed; the pulse may still fire.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseEntering:
		return "entering"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// Scheduler derives start frames from entity indices.
type Scheduler struct {
	baseStart int
	stagger   int
	enter     int
}

// NewScheduler validates timing; StaggerFrames > 0 keeps start frames strictly
// increasing with index.
func NewScheduler(timing config.Timing) (*Scheduler, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		baseStart: timing.BaseStartFrame,
		stagger:   timing.StaggerFrames,
		enter:     timing.EnterDurationFrames,
	}, nil
}

// StartFrame returns baseStart + index*stagger.
func (s *Scheduler) StartFrame(index int) int {
	return s.baseStart + index*s.stagger
}

// Elapsed returns frames since the entity at index started, saturating at
// the int range instead of wrapping.
func (s *Scheduler) Elapsed(frame, index int) int {
	start := s.StartFrame(index)
	d := frame - start
	switch {
	case start > 0 && d > frame:
		return math.MinInt
	case start < 0 && d < frame:
		return math.MaxInt
	}
	return d
}

// Phase classifies the entity at index for frame.
func (s *Scheduler) Phase(frame, index int) Phase {
	elapsed := s.Elapsed(frame, index)
	switch {
	case elapsed <= 0:
		return PhasePending
	case elapsed < s.enter:
		return PhaseEntering
	default:
		return PhaseSettled
	}
}

// SettledFrame is the first frame at which the entity at index is settled.
func (s *Scheduler) SettledFrame(index int) int {
	return s.StartFrame(index) + s.enter
}
