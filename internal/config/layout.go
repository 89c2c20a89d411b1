package config

import "math"

// Layout carries drawing constants for the frame source. None of them feed the
// animation math. Zero fields are derived from the frame size by Resolve.
type Layout struct {
	TopBarHeight   int `yaml:"top_bar_height,omitempty"`
	PaddingX       int `yaml:"padding_x,omitempty"`
	PaddingY       int `yaml:"padding_y,omitempty"`
	GapY           int `yaml:"gap_y,omitempty"`
	BubbleMaxWidth int `yaml:"bubble_max_width,omitempty"`
	CornerRadius   int `yaml:"corner_radius,omitempty"`
	BubblePadX     int `yaml:"bubble_padding_x,omitempty"`
	BubblePadY     int `yaml:"bubble_padding_y,omitempty"`
	MetaGap        int `yaml:"meta_gap,omitempty"` // between message text and its time label

	FontSize         int `yaml:"font_size,omitempty"`
	MetaFontSize     int `yaml:"meta_font_size,omitempty"`
	TitleFontSize    int `yaml:"title_font_size,omitempty"`
	SubtitleFontSize int `yaml:"subtitle_font_size,omitempty"`
}

// Resolve fills zero fields for a width x height frame.
func (l Layout) Resolve(width, height int) Layout {
	w, h := float64(width), float64(height)
	fill := func(v *int, floor int, base, ratio float64) {
		if *v == 0 {
			*v = max(floor, int(math.Round(base*ratio)))
		}
	}

	fill(&l.TopBarHeight, 56, h, 0.09)
	fill(&l.PaddingX, 28, w, 0.05)
	fill(&l.PaddingY, 22, h, 0.04)
	fill(&l.GapY, 10, h, 0.012)
	fill(&l.BubbleMaxWidth, 420, w, 0.68)
	fill(&l.BubblePadX, 14, w, 0.018)
	fill(&l.BubblePadY, 10, h, 0.012)
	fill(&l.MetaGap, 6, h, 0.008)
	fill(&l.FontSize, 16, w, 0.02)
	fill(&l.MetaFontSize, 11, w, 0.013)
	fill(&l.TitleFontSize, 18, w, 0.022)
	fill(&l.SubtitleFontSize, 12, w, 0.014)
	if l.CornerRadius == 0 {
		l.CornerRadius = 18
	}
	return l
}

// Theme colors are hex strings, "#rrggbb".
type Theme struct {
	Background string `yaml:"background"`
	Sent       string `yaml:"sent"`
	Received   string `yaml:"received"`
	Text       string `yaml:"text"`
	Meta       string `yaml:"meta"`
	TopBar     string `yaml:"top_bar"`
	Online     string `yaml:"online"`
}

func DefaultTheme() Theme {
	return Theme{
		Background: "#0b141a",
		Sent:       "#1f8a70",
		Received:   "#202c33",
		Text:       "#e9edef",
		Meta:       "#9aa0a3",
		TopBar:     "#13191e",
		Online:     "#22c55e",
	}
}
