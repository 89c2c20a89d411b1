package renderer

import (
	"fmt"
	"math"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/motion"
)

// HeaderState is the title bar transform.
type HeaderState struct {
	OffsetY float64 `yaml:"offset_y"`
	Opacity float64 `yaml:"opacity"`
}

// SceneState is everything the frame source needs to draw one frame.
// Entities keep scene order, which is also the drawing order.
type SceneState struct {
	Frame       int           `yaml:"frame"`
	Header      HeaderState   `yaml:"header"`
	IdleOffsetY float64       `yaml:"idle_offset_y"`
	Entities    []RenderState `yaml:"entities"`
}

// Scene answers Query for any frame. It is immutable after NewScene and safe
// for concurrent use.
type Scene struct {
	config config.SceneConfig
	timing config.Timing
	motion config.Motion

	scheduler *director.Scheduler
	entities  []Entity
	animators []*entityAnimator

	entrance *motion.Spring
	settle   *motion.Spring
	curves   *sharedCurves

	header        *motion.Spring
	headerOffset  *motion.Curve
	headerOpacity *motion.Curve
	idle          *motion.Curve
}

// NewScene validates the configuration and entity list once. The entity slice
// is copied.
func NewScene(sc config.SceneConfig, timing config.Timing, m config.Motion, entities []Entity) (*Scene, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	scheduler, err := director.NewScheduler(timing)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		field := fmt.Sprintf("entities[%d].id", i)
		if e.ID == "" {
			return nil, &config.ConfigError{Field: field, Err: fmt.Errorf("must not be empty")}
		}
		if prev, ok := seen[e.ID]; ok {
			return nil, &config.ConfigError{Field: field, Err: fmt.Errorf("duplicate id %q (also at index %d)", e.ID, prev)}
		}
		seen[e.ID] = i
	}

	s := &Scene{
		config:    sc,
		timing:    timing,
		motion:    m,
		scheduler: scheduler,
		entities:  append([]Entity(nil), entities...),
	}

	// The entrance spring always lands on the entrance duration.
	entranceCfg := m.Entrance
	entranceCfg.DurationInFrames = timing.EnterDurationFrames

	if s.entrance, err = motion.NewSpring(entranceCfg, sc.FPS); err != nil {
		return nil, &config.ConfigError{Field: "motion.entrance", Err: err}
	}
	if s.settle, err = motion.NewSpring(m.Settle, sc.FPS); err != nil {
		return nil, &config.ConfigError{Field: "motion.settle", Err: err}
	}
	if s.header, err = motion.NewSpring(m.Header, sc.FPS); err != nil {
		return nil, &config.ConfigError{Field: "motion.header", Err: err}
	}
	if s.curves, err = newSharedCurves(timing, m); err != nil {
		return nil, err
	}

	if s.headerOffset, err = motion.NewClampedCurve([]float64{0, 1}, []float64{-m.HeaderOffset, 0}); err != nil {
		return nil, fmt.Errorf("header offset curve: %w", err)
	}
	if s.headerOpacity, err = motion.NewClampedCurve([]float64{0, 1}, []float64{0, 1}); err != nil {
		return nil, fmt.Errorf("header opacity curve: %w", err)
	}
	if s.idle, err = motion.NewClampedCurve([]float64{-1, 1}, []float64{-m.IdleAmplitude, m.IdleAmplitude}); err != nil {
		return nil, fmt.Errorf("idle curve: %w", err)
	}

	s.animators = make([]*entityAnimator, len(s.entities))
	for i, e := range s.entities {
		a, err := newEntityAnimator(e, i, scheduler.StartFrame(i), s)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.ID, err)
		}
		s.animators[i] = a
	}

	return s, nil
}

// NewSceneFromScenario builds a scene from a loaded scenario.
func NewSceneFromScenario(sc *director.Scenario) (*Scene, error) {
	return NewScene(sc.Scene, sc.Timing, sc.Motion, EntitiesFromMessages(sc.Messages))
}

// EntitiesFromMessages maps chat messages to entities; sent messages are
// outbound.
func EntitiesFromMessages(messages []director.Message) []Entity {
	entities := make([]Entity, len(messages))
	for i, msg := range messages {
		entities[i] = Entity{ID: msg.ID, Outbound: msg.Sent, Content: msg.Text}
	}
	return entities
}

// Query returns the state of every entity at frame. Any integer frame is
// valid, including negative ones. The error is only a propagated curve
// DomainError, which validated configuration cannot produce.
func (s *Scene) Query(frame int) (SceneState, error) {
	header, err := s.headerState(frame)
	if err != nil {
		return SceneState{}, err
	}

	idle, err := s.idle.At(math.Sin(float64(frame) / float64(s.config.FPS) * s.motion.IdleRate))
	if err != nil {
		return SceneState{}, fmt.Errorf("idle: %w", err)
	}

	states := make([]RenderState, len(s.animators))
	for i, a := range s.animators {
		st, err := a.state(frame)
		if err != nil {
			return SceneState{}, fmt.Errorf("entity %s: %w", a.entity.ID, err)
		}
		st.Phase = s.scheduler.Phase(frame, i)
		states[i] = st
	}

	return SceneState{
		Frame:       frame,
		Header:      header,
		IdleOffsetY: idle,
		Entities:    states,
	}, nil
}

func (s *Scene) headerState(frame int) (HeaderState, error) {
	p := s.header.Progress(float64(frame) - float64(s.timing.HeaderDelayFrames))

	offset, err := s.headerOffset.At(p)
	if err != nil {
		return HeaderState{}, fmt.Errorf("header: %w", err)
	}
	opacity, err := s.headerOpacity.At(p)
	if err != nil {
		return HeaderState{}, fmt.Errorf("header: %w", err)
	}
	return HeaderState{OffsetY: offset, Opacity: opacity}, nil
}

// SettleWindow is how many frames past the entrance duration an entity needs
// before every factor of its transform is at rest. The slide counts as at rest
// once the remaining offset is under RestThreshold pixels, which for a long
// slide takes longer than the entrance duration.
func (s *Scene) SettleWindow() int {
	enter := s.timing.EnterDurationFrames
	window := s.timing.SettleDelayFrames + s.settle.SettleFrames() - enter
	window = max(window, s.motion.Pulse.EndOffset-enter, s.timing.FadeInFrames-enter)
	slide := s.entrance.FramesWithin(motion.RestThreshold/s.motion.SlideDistance) - enter
	return max(window, slide, 0)
}

// FrameCount is the number of frames needed to show every entity at rest and
// then hold the finished scene.
func (s *Scene) FrameCount() int {
	end := s.timing.HeaderDelayFrames + s.header.SettleFrames()
	if n := len(s.entities); n > 0 {
		end = max(end, s.scheduler.StartFrame(n-1)+s.timing.EnterDurationFrames+s.SettleWindow())
	}
	return max(end+s.timing.HoldFrames, 1)
}

// Entities returns a copy of the entity list in scene order.
func (s *Scene) Entities() []Entity {
	return append([]Entity(nil), s.entities...)
}

// Scheduler exposes the start frame schedule.
func (s *Scene) Scheduler() *director.Scheduler { return s.scheduler }

// Config returns the scene geometry and frame rate.
func (s *Scene) Config() config.SceneConfig { return s.config }

// Motion returns the motion settings the scene was built with.
func (s *Scene) Motion() config.Motion { return s.motion }
