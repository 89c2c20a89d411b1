package source

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/effects"
	"github.com/ivlev/chatmotion/internal/renderer"
	"github.com/ivlev/chatmotion/internal/system"
)

// Source produces the frames of a video. RenderFrame must be safe to call
// from several goroutines and in any order.
type Source interface {
	FrameCount() int
	Dimensions() (width, height int)
	// RenderFrame returns a pooled image; hand it back with system.PutImage
	// once it has been written.
	RenderFrame(index int) (*image.RGBA, error)
	Close() error
}

// SceneSource draws a chat scenario frame by frame from Scene.Query.
type SceneSource struct {
	scene  *renderer.Scene
	width  int
	height int

	pal        *palette
	background *image.RGBA
	header     *image.RGBA
	bubbles    []*bubble
	pad        int

	debug bool
}

// NewSceneSource validates the scenario, builds its scene and renders every
// static layer up front.
func NewSceneSource(sc *director.Scenario, debug bool) (*SceneSource, error) {
	scene, err := renderer.NewSceneFromScenario(sc)
	if err != nil {
		return nil, err
	}
	pal, err := newPalette(sc.Theme)
	if err != nil {
		return nil, err
	}

	w, h := sc.Scene.Width, sc.Scene.Height
	layout := sc.Layout.Resolve(w, h)

	fonts, err := loadFaces(layout.FontSize, layout.MetaFontSize, layout.TitleFontSize, layout.SubtitleFontSize)
	if err != nil {
		return nil, err
	}
	defer fonts.Close()

	s := &SceneSource{
		scene:  scene,
		width:  w,
		height: h,
		pal:    pal,
		pad:    layerPadding(sc.Motion.MaxBlur),
		debug:  debug,
	}

	if sc.Background != "" {
		if s.background, err = loadBackground(sc.Background, w, h, pal.background); err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
	}

	s.header = renderHeader(sc, layout, fonts, pal, w)

	builder := &bubbleBuilder{layout: layout, fonts: fonts, pal: pal, pad: s.pad, width: w, height: h}
	s.bubbles = builder.build(sc.Messages)

	return s, nil
}

// Scene exposes the animation state behind the frames.
func (s *SceneSource) Scene() *renderer.Scene { return s.scene }

func (s *SceneSource) FrameCount() int { return s.scene.FrameCount() }

func (s *SceneSource) Dimensions() (int, int) { return s.width, s.height }

// BubbleRect returns the resting frame rectangle of bubble i.
func (s *SceneSource) BubbleRect(i int) image.Rectangle { return s.bubbles[i].rect }

func (s *SceneSource) RenderFrame(index int) (*image.RGBA, error) {
	state, err := s.scene.Query(index)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", index, err)
	}

	frame := system.GetImage(s.width, s.height)
	if s.background != nil {
		copy(frame.Pix, s.background.Pix)
	} else {
		draw.Draw(frame, frame.Bounds(), image.NewUniform(s.pal.background), image.Point{}, draw.Src)
	}

	effects.Composite(frame, s.header, effects.HeaderPaint(state.Header))

	// scene order is z-order
	for i, st := range state.Entities {
		if st.Opacity <= 0 {
			continue
		}
		b := s.bubbles[i]

		blur := effects.NewBlurFilter(st.BlurRadius)
		if blur.Passes() == 0 {
			effects.Composite(frame, b.layer, effects.BubblePaint(st, b.rect, s.pad, b.outbound, state.IdleOffsetY))
			continue
		}
		soft := system.GetImage(b.layer.Bounds().Dx(), b.layer.Bounds().Dy())
		blur.Apply(b.layer, soft)
		effects.Composite(frame, soft, effects.BubblePaint(st, b.rect, s.pad, b.outbound, state.IdleOffsetY))
		system.PutImage(soft)
	}

	if s.debug {
		if err := stampFrame(frame, index); err != nil {
			system.PutImage(frame)
			return nil, err
		}
	}
	return frame, nil
}

func (s *SceneSource) Close() error {
	s.header = nil
	s.bubbles = nil
	s.background = nil
	return nil
}

// stampFrame draws a QR code of the frame index in the bottom-left corner so
// a decoded video frame can be matched to its state dump.
func stampFrame(frame *image.RGBA, index int) error {
	q, err := qrcode.New(fmt.Sprintf("frame:%d", index), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("debug stamp: %w", err)
	}
	size := max(64, frame.Bounds().Dy()/8)
	code := q.Image(size)

	b := code.Bounds()
	at := image.Pt(8, frame.Bounds().Dy()-b.Dy()-8)
	draw.Draw(frame, image.Rectangle{Min: at, Max: at.Add(b.Size())}, code, b.Min, draw.Src)
	return nil
}
