package effects

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/chatmotion/internal/renderer"
)

// Paint places a layer on the frame. The layer's top-left corner lands on
// (X, Y) before scaling; scaling is about (OriginX, OriginY) in layer
// coordinates.
type Paint struct {
	X, Y             float64
	OriginX, OriginY float64
	Scale            float64
	Opacity          float64
}

// Matrix returns the layer-to-frame transform.
func (p Paint) Matrix() f64.Aff3 {
	s := p.Scale
	return f64.Aff3{
		s, 0, p.X + p.OriginX*(1-s),
		0, s, p.Y + p.OriginY*(1-s),
	}
}

// Composite draws layer over dst. Invisible or collapsed layers are skipped.
func Composite(dst draw.Image, layer *image.RGBA, p Paint) {
	if p.Opacity <= 0 || p.Scale <= 0 {
		return
	}

	var opts *draw.Options
	if p.Opacity < 1 {
		alpha := uint16(math.Round(p.Opacity * 0xffff))
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha16{A: alpha})}
	}
	draw.BiLinear.Transform(dst, p.Matrix(), layer, layer.Bounds(), draw.Over, opts)
}

// BubblePaint maps an entity's render state onto a layer that was drawn for
// the bubble rect with pad pixels of margin. Outbound bubbles scale about
// their bottom-right corner, inbound ones about the bottom-left.
func BubblePaint(st renderer.RenderState, rect image.Rectangle, pad int, outbound bool, idleY float64) Paint {
	originX := float64(pad)
	if outbound {
		originX += float64(rect.Dx())
	}
	return Paint{
		X:       float64(rect.Min.X-pad) + st.OffsetX,
		Y:       float64(rect.Min.Y-pad) + idleY,
		OriginX: originX,
		OriginY: float64(pad + rect.Dy()),
		Scale:   st.Scale,
		Opacity: st.Opacity,
	}
}

// HeaderPaint places the header layer, drawn at the frame's top-left corner.
func HeaderPaint(h renderer.HeaderState) Paint {
	return Paint{Y: h.OffsetY, Scale: 1, Opacity: h.Opacity}
}
