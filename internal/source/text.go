package source

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// typeface wraps a sized font face. Faces are not safe for concurrent use,
// so text is drawn only while layers are prepared.
type typeface struct {
	face    font.Face
	ascent  int
	descent int
}

func loadFace(ttf []byte, size int) (*typeface, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	m := face.Metrics()
	return &typeface{face: face, ascent: m.Ascent.Ceil(), descent: m.Descent.Ceil()}, nil
}

func (t *typeface) height() int { return t.ascent + t.descent }

func (t *typeface) width(s string) int {
	return font.MeasureString(t.face, s).Ceil()
}

// draw writes s with its top-left corner at (x, top).
func (t *typeface) draw(dst *image.RGBA, s string, x, top int, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: t.face,
		Dot:  fixed.P(x, top+t.ascent),
	}
	d.DrawString(s)
}

func (t *typeface) Close() error { return t.face.Close() }

// faces are the four text styles of the scene.
type faces struct {
	body     *typeface
	meta     *typeface
	title    *typeface
	subtitle *typeface
}

func loadFaces(bodySize, metaSize, titleSize, subtitleSize int) (*faces, error) {
	fs := &faces{}
	var err error
	if fs.body, err = loadFace(gomedium.TTF, bodySize); err != nil {
		return nil, err
	}
	if fs.meta, err = loadFace(gobold.TTF, metaSize); err != nil {
		fs.Close()
		return nil, err
	}
	if fs.title, err = loadFace(gobold.TTF, titleSize); err != nil {
		fs.Close()
		return nil, err
	}
	if fs.subtitle, err = loadFace(gomedium.TTF, subtitleSize); err != nil {
		fs.Close()
		return nil, err
	}
	return fs, nil
}

func (fs *faces) Close() {
	for _, t := range []*typeface{fs.body, fs.meta, fs.title, fs.subtitle} {
		if t != nil {
			t.Close()
		}
	}
}

// wrapText breaks text into lines no wider than maxWidth. Explicit newlines
// are kept and words longer than a line are split by rune.
func wrapText(t *typeface, text string, maxWidth int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if t.width(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = word
			for t.width(line) > maxWidth {
				head, tail := splitToWidth(t, line, maxWidth)
				lines = append(lines, head)
				line = tail
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// splitToWidth returns the longest prefix of s that fits, at least one rune.
func splitToWidth(t *typeface, s string, maxWidth int) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && t.width(string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
