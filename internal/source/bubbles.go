package source

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/effects"
	"github.com/ivlev/chatmotion/internal/system"
)

const (
	tailSide   = 12
	tailReach  = 5 // how far the tail pokes past the bubble edge
	tailBottom = 10

	shadowOffset = 8
	shadowBlur   = 8
	shadowAlpha  = 0.28

	lineSpacing = 1.25
	metaSpacing = 8
)

// bubble is a message drawn once at its resting place. Frames only move,
// scale, fade and blur the finished layer.
type bubble struct {
	id       string
	outbound bool
	rect     image.Rectangle // frame coordinates of the bubble body
	layer    *image.RGBA     // rect grown by the layer padding on every side
}

// layerPadding is the margin around a bubble body that holds the tail, the
// shadow and the widest entrance blur.
func layerPadding(maxBlur float64) int {
	blur := effects.NewBlurFilter(maxBlur).Padding()
	shadow := shadowOffset + effects.NewBlurFilter(shadowBlur).Padding()
	return max(blur, shadow) + tailReach + tailSide/2
}

// timeLabel is the clock text under message i.
func timeLabel(msg director.Message, i int) string {
	if msg.Time != "" {
		return msg.Time
	}
	minutes := 10 + i
	return fmt.Sprintf("%d:%02d PM", 7+minutes/60, minutes%60)
}

type bubbleBuilder struct {
	layout config.Layout
	fonts  *faces
	pal    *palette
	pad    int
	width  int
	height int
}

// build lays the messages out bottom-up, newest at the bottom, and renders
// each bubble layer.
func (b *bubbleBuilder) build(messages []director.Message) []*bubble {
	l := b.layout
	lineHeight := int(math.Round(float64(l.FontSize) * lineSpacing))
	maxBubble := min(l.BubbleMaxWidth, b.width-2*l.PaddingX)
	maxContent := max(maxBubble-2*l.BubblePadX, 1)

	bubbles := make([]*bubble, len(messages))
	bottom := b.height - l.PaddingY
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		lines := wrapText(b.fonts.body, msg.Text, maxContent)
		label := timeLabel(msg, i)

		content := b.metaWidth(label, msg.Sent)
		for _, line := range lines {
			content = max(content, b.fonts.body.width(line))
		}

		w := content + 2*l.BubblePadX
		h := 2*l.BubblePadY + len(lines)*lineHeight + l.MetaGap + b.fonts.meta.height()
		x := l.PaddingX
		if msg.Sent {
			x = b.width - l.PaddingX - w
		}
		rect := image.Rect(x, bottom-h, x+w, bottom)
		bottom -= h + l.GapY

		bubbles[i] = &bubble{
			id:       msg.ID,
			outbound: msg.Sent,
			rect:     rect,
			layer:    b.render(rect.Size(), lines, lineHeight, label, msg.Sent),
		}
	}
	return bubbles
}

func (b *bubbleBuilder) checkSize() float64 {
	return float64(b.fonts.meta.ascent) * 0.8
}

func (b *bubbleBuilder) metaWidth(label string, sent bool) int {
	w := b.fonts.meta.width(label)
	if sent {
		w += metaSpacing + int(math.Ceil(b.checkSize()*1.45))
	}
	return w
}

func (b *bubbleBuilder) render(size image.Point, lines []string, lineHeight int, label string, sent bool) *image.RGBA {
	l := b.layout
	pad := b.pad
	layer := image.NewRGBA(image.Rect(0, 0, size.X+2*pad, size.Y+2*pad))
	x0, y0 := float64(pad), float64(pad)
	x1, y1 := x0+float64(size.X), y0+float64(size.Y)
	radius := float64(l.CornerRadius)

	tailX := x0 + tailSide/2 - tailReach
	if sent {
		tailX = x1 - tailSide/2 + tailReach
	}
	tailY := y1 - tailBottom - tailSide/2

	b.drawShadow(layer, x0, y0, x1, y1, radius)

	body, border := b.pal.received, b.pal.receivedBorder
	if sent {
		body, border = b.pal.sent, b.pal.sentBorder
	}

	p := newPainter(layer)
	p.begin()
	p.roundedRect(x0, y0, x1, y1, radius)
	p.diamond(tailX, tailY, tailSide)
	p.fill(border)

	p.begin()
	p.roundedRect(x0+1, y0+1, x1-1, y1-1, radius-1)
	p.diamond(tailX, tailY, tailSide-2)
	p.fill(body)

	textX := pad + l.BubblePadX
	top := pad + l.BubblePadY
	for i, line := range lines {
		lineTop := top + i*lineHeight + (lineHeight-b.fonts.body.height())/2
		b.fonts.body.draw(layer, line, textX, lineTop, b.pal.text)
	}

	metaTop := top + len(lines)*lineHeight + l.MetaGap
	right := pad + size.X - l.BubblePadX
	if sent {
		s := b.checkSize()
		checksLeft := float64(right) - s*1.45
		cy := float64(metaTop) + float64(b.fonts.meta.ascent) - s
		p.begin()
		p.check(checksLeft, cy, s, s*0.16)
		p.check(checksLeft+s*0.45, cy, s, s*0.16)
		p.fill(withAlpha(b.pal.text, 0.7))
		right = int(math.Floor(checksLeft)) - metaSpacing
	}
	b.fonts.meta.draw(layer, label, right-b.fonts.meta.width(label), metaTop, withAlpha(b.pal.text, 0.62))

	return layer
}

// drawShadow puts a soft drop shadow of the bubble body under the layer.
func (b *bubbleBuilder) drawShadow(layer *image.RGBA, x0, y0, x1, y1, radius float64) {
	w, h := layer.Bounds().Dx(), layer.Bounds().Dy()
	mask := system.GetImage(w, h)
	soft := system.GetImage(w, h)
	defer system.PutImage(mask)
	defer system.PutImage(soft)

	p := newPainter(mask)
	p.begin()
	p.roundedRect(x0, y0+shadowOffset, x1, y1+shadowOffset, radius)
	p.fill(withAlpha(color.RGBA{A: 255}, shadowAlpha))

	effects.NewBlurFilter(shadowBlur).Apply(mask, soft)
	draw.Draw(layer, layer.Bounds(), soft, image.Point{}, draw.Over)
}
