package source

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847

// painter rasterizes filled paths onto one RGBA target.
type painter struct {
	dst *image.RGBA
	r   *vector.Rasterizer
}

func newPainter(dst *image.RGBA) *painter {
	b := dst.Bounds()
	return &painter{dst: dst, r: vector.NewRasterizer(b.Dx(), b.Dy())}
}

func (p *painter) begin() {
	b := p.dst.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
}

func (p *painter) fill(c color.Color) {
	p.r.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{})
}

// roundedRect adds a rounded rectangle path. The radius is reduced to fit.
func (p *painter) roundedRect(x0, y0, x1, y1, radius float64) {
	rad := float32(math.Min(radius, math.Min((x1-x0)/2, (y1-y0)/2)))
	a0, b0, a1, b1 := float32(x0), float32(y0), float32(x1), float32(y1)
	k := rad * (1 - kappa)

	p.r.MoveTo(a0+rad, b0)
	p.r.LineTo(a1-rad, b0)
	p.r.CubeTo(a1-k, b0, a1, b0+k, a1, b0+rad)
	p.r.LineTo(a1, b1-rad)
	p.r.CubeTo(a1, b1-k, a1-k, b1, a1-rad, b1)
	p.r.LineTo(a0+rad, b1)
	p.r.CubeTo(a0+k, b1, a0, b1-k, a0, b1-rad)
	p.r.LineTo(a0, b0+rad)
	p.r.CubeTo(a0, b0+k, a0+k, b0, a0+rad, b0)
	p.r.ClosePath()
}

func (p *painter) circle(cx, cy, radius float64) {
	p.roundedRect(cx-radius, cy-radius, cx+radius, cy+radius, radius)
}

// diamond adds a square of the given side rotated by 45 degrees.
func (p *painter) diamond(cx, cy, side float64) {
	h := float32(side / math.Sqrt2)
	x, y := float32(cx), float32(cy)
	p.r.MoveTo(x, y-h)
	p.r.LineTo(x+h, y)
	p.r.LineTo(x, y+h)
	p.r.LineTo(x-h, y)
	p.r.ClosePath()
}

// segment adds a line of the given width from (x0, y0) to (x1, y1) as a quad.
func (p *painter) segment(x0, y0, x1, y1, width float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	p.r.MoveTo(float32(x0+nx), float32(y0+ny))
	p.r.LineTo(float32(x1+nx), float32(y1+ny))
	p.r.LineTo(float32(x1-nx), float32(y1-ny))
	p.r.LineTo(float32(x0-nx), float32(y0-ny))
	p.r.ClosePath()
}

// check adds a tick mark inside the size x size box at (x, y).
func (p *painter) check(x, y, size, width float64) {
	p.segment(x, y+size*0.55, x+size*0.35, y+size*0.9, width)
	p.segment(x+size*0.35, y+size*0.9, x+size, y+size*0.1, width)
}
