package source

import (
	"image"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
)

const (
	onlineLabel  = "Online"
	dotRadius    = 5
	glowRadius   = 9
	onlineGap    = 10
	subtitleGap  = 2
	headerBorder = 1
)

// renderHeader draws the top bar: title and subtitle on the left, the online
// indicator on the right.
func renderHeader(sc *director.Scenario, l config.Layout, fonts *faces, pal *palette, width int) *image.RGBA {
	h := l.TopBarHeight
	layer := image.NewRGBA(image.Rect(0, 0, width, h+headerBorder))

	p := newPainter(layer)
	p.begin()
	p.roundedRect(0, 0, float64(width), float64(h), 0)
	p.fill(pal.topBar)
	p.begin()
	p.roundedRect(0, float64(h), float64(width), float64(h+headerBorder), 0)
	p.fill(pal.topBarBorder)

	block := fonts.title.height() + subtitleGap + fonts.subtitle.height()
	top := (h - block) / 2
	fonts.title.draw(layer, sc.Title, l.PaddingX, top, pal.text)
	fonts.subtitle.draw(layer, sc.Subtitle, l.PaddingX, top+fonts.title.height()+subtitleGap, pal.meta)

	labelX := width - l.PaddingX - fonts.subtitle.width(onlineLabel)
	fonts.subtitle.draw(layer, onlineLabel, labelX, (h-fonts.subtitle.height())/2, pal.meta)

	cx := float64(labelX - onlineGap - glowRadius)
	cy := float64(h) / 2
	p.begin()
	p.circle(cx, cy, glowRadius)
	p.fill(pal.onlineGlow)
	p.begin()
	p.circle(cx, cy, dotRadius)
	p.fill(pal.online)

	return layer
}
