package source

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/chatmotion/internal/config"
)

// palette holds the theme resolved to concrete colors.
type palette struct {
	background color.RGBA
	sent       color.RGBA
	received   color.RGBA
	text       color.RGBA
	meta       color.RGBA
	topBar     color.RGBA
	online     color.RGBA

	// derived, translucent white strokes and glow flattened onto their base
	topBarBorder   color.RGBA
	sentBorder     color.RGBA
	receivedBorder color.RGBA
	onlineGlow     color.RGBA
}

func newPalette(t config.Theme) (*palette, error) {
	fields := []struct {
		name string
		hex  string
	}{
		{"theme.background", t.Background},
		{"theme.sent", t.Sent},
		{"theme.received", t.Received},
		{"theme.text", t.Text},
		{"theme.meta", t.Meta},
		{"theme.top_bar", t.TopBar},
		{"theme.online", t.Online},
	}

	parsed := make([]colorful.Color, len(fields))
	for i, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return nil, &config.ConfigError{Field: f.name, Err: fmt.Errorf("bad color %q: %w", f.hex, err)}
		}
		parsed[i] = c
	}
	bg, sent, received, text, meta, topBar, online := parsed[0], parsed[1], parsed[2], parsed[3], parsed[4], parsed[5], parsed[6]
	white := colorful.Color{R: 1, G: 1, B: 1}

	return &palette{
		background:     rgba(bg),
		sent:           rgba(sent),
		received:       rgba(received),
		text:           rgba(text),
		meta:           rgba(meta),
		topBar:         rgba(topBar),
		online:         rgba(online),
		topBarBorder:   rgba(topBar.BlendRgb(white, 0.06)),
		sentBorder:     rgba(sent.BlendRgb(white, 0.06)),
		receivedBorder: rgba(received.BlendRgb(white, 0.06)),
		onlineGlow:     rgba(topBar.BlendRgb(online, 0.12)),
	}, nil
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// withAlpha returns c at the given opacity, premultiplied.
func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := alpha * float64(c.A) / 255
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(255*a + 0.5),
	}
}
