package effects

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/chatmotion/internal/system"
)

// Filter processes a rendered layer. Padding is the margin the layer needs
// around its content so the effect is not clipped.
type Filter interface {
	Apply(src, dst *image.RGBA)
	Padding() int
}

// BlurFilter is a Kawase style blur: the layer is halved repeatedly with
// bilinear scaling and then scaled back up.
type BlurFilter struct {
	Radius float64
}

var _ Filter = (*BlurFilter)(nil)

func NewBlurFilter(radius float64) *BlurFilter {
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// Passes returns the number of halvings for the radius; 0 means no blur.
func (f *BlurFilter) Passes() int {
	if f.Radius < 0.5 {
		return 0
	}
	return max(1, int(math.Ceil(math.Log2(f.Radius))))
}

// Apply writes the blurred src into dst. Both must have the same size.
func (f *BlurFilter) Apply(src, dst *image.RGBA) {
	passes := f.Passes()
	if passes == 0 {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}

	chain := make([]*image.RGBA, passes)
	defer func() {
		for _, img := range chain {
			system.PutImage(img)
		}
	}()

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	current := src
	for i := range chain {
		w, h = max(w/2, 1), max(h/2, 1)
		chain[i] = system.GetImage(w, h)
		draw.BiLinear.Scale(chain[i], chain[i].Bounds(), current, current.Bounds(), draw.Src, nil)
		current = chain[i]
	}

	for i := passes - 2; i >= 0; i-- {
		draw.BiLinear.Scale(chain[i], chain[i].Bounds(), current, current.Bounds(), draw.Src, nil)
		current = chain[i]
	}

	draw.BiLinear.Scale(dst, dst.Bounds(), current, current.Bounds(), draw.Src, nil)
}

// Padding is enough margin for the blur to fade out inside the layer.
func (f *BlurFilter) Padding() int {
	return int(math.Ceil(2 * f.Radius))
}
