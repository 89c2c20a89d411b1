package renderer

import (
	"fmt"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/motion"
)

// Entity is one animated bubble. Only Outbound affects the animation; Content
// is carried for the frame source.
type Entity struct {
	ID       string
	Outbound bool
	Content  string
}

// RenderState is the paint transform of one entity at one frame.
type RenderState struct {
	ID         string         `yaml:"id"`
	Phase      director.Phase `yaml:"phase"`
	OffsetX    float64        `yaml:"offset_x"`
	Scale      float64        `yaml:"scale"`
	Opacity    float64        `yaml:"opacity"`
	BlurRadius float64        `yaml:"blur_radius"`
}

// FromOffset is the horizontal displacement before the entrance starts.
// Outbound bubbles come in from the right.
func FromOffset(outbound bool, slideDistance float64) float64 {
	if outbound {
		return slideDistance
	}
	return -slideDistance
}

// sharedCurves do not depend on the entity and are built once per scene.
type sharedCurves struct {
	fade        *motion.Curve
	pop         *motion.Curve
	settleScale *motion.Curve
	blur        *motion.Curve
}

func newSharedCurves(timing config.Timing, m config.Motion) (*sharedCurves, error) {
	fadeEasing, err := motion.EasingByName(m.FadeEasing)
	if err != nil {
		return nil, err
	}

	fade, err := motion.NewClampedCurve([]float64{0, float64(timing.FadeInFrames)}, []float64{0, 1})
	if err != nil {
		return nil, fmt.Errorf("fade curve: %w", err)
	}
	pop, err := motion.NewClampedCurve([]float64{0, 1}, []float64{m.PopLow, m.PopHigh})
	if err != nil {
		return nil, fmt.Errorf("pop curve: %w", err)
	}
	settleScale, err := motion.NewClampedCurve([]float64{0, 1}, []float64{m.SettleHigh, 1})
	if err != nil {
		return nil, fmt.Errorf("settle curve: %w", err)
	}
	blur, err := motion.NewClampedCurve([]float64{0, 1}, []float64{m.MaxBlur, 0})
	if err != nil {
		return nil, fmt.Errorf("blur curve: %w", err)
	}

	return &sharedCurves{
		fade:        fade.WithEasing(fadeEasing),
		pop:         pop,
		settleScale: settleScale,
		blur:        blur,
	}, nil
}

// entityAnimator composes the springs and curves of one entity.
type entityAnimator struct {
	entity Entity
	index  int
	start  int

	entrance    *motion.Spring
	settle      *motion.Spring
	settleDelay int

	curves *sharedCurves
	slide  *motion.Curve
	pulse  *motion.Curve
}

func newEntityAnimator(e Entity, index, start int, s *Scene) (*entityAnimator, error) {
	m := s.motion

	slide, err := motion.NewClampedCurve([]float64{0, 1}, []float64{FromOffset(e.Outbound, m.SlideDistance), 0})
	if err != nil {
		return nil, fmt.Errorf("slide curve: %w", err)
	}

	p := m.Pulse
	pulse, err := motion.NewClampedCurve(
		[]float64{float64(start + p.StartOffset), float64(start + p.PeakOffset), float64(start + p.EndOffset)},
		[]float64{1, p.Scale, 1},
	)
	if err != nil {
		return nil, fmt.Errorf("pulse curve: %w", err)
	}

	return &entityAnimator{
		entity:      e,
		index:       index,
		start:       start,
		entrance:    s.entrance,
		settle:      s.settle,
		settleDelay: s.timing.SettleDelayFrames,
		curves:      s.curves,
		slide:       slide,
		pulse:       pulse,
	}, nil
}

// state computes the entity's transform at frame.
func (a *entityAnimator) state(frame int) (RenderState, error) {
	elapsed := float64(frame) - float64(a.start)

	opacity, err := a.curves.fade.At(elapsed)
	if err != nil {
		return RenderState{}, err
	}

	enter := a.entrance.Progress(elapsed)
	offsetX, err := a.slide.At(enter)
	if err != nil {
		return RenderState{}, err
	}
	popScale, err := a.curves.pop.At(enter)
	if err != nil {
		return RenderState{}, err
	}

	settle := a.settle.Progress(elapsed - float64(a.settleDelay))
	settleScale, err := a.curves.settleScale.At(settle)
	if err != nil {
		return RenderState{}, err
	}

	pulse, err := a.pulse.At(float64(frame))
	if err != nil {
		return RenderState{}, err
	}

	blur, err := a.curves.blur.At(opacity)
	if err != nil {
		return RenderState{}, err
	}

	return RenderState{
		ID:         a.entity.ID,
		OffsetX:    offsetX,
		Scale:      popScale * settleScale * pulse,
		Opacity:    opacity,
		BlurRadius: blur,
	}, nil
}
