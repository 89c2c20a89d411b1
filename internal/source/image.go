package source

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// wallpaperShade is how much of the theme background is laid over a
// wallpaper so bubbles stay readable.
const wallpaperShade = 0.85

// loadBackground decodes a jpeg or png, scales it to cover width x height
// and darkens it with the background color.
func loadBackground(path string, width, height int, shade color.RGBA) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, coverRect(img.Bounds(), width, height), draw.Src, nil)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(withAlpha(shade, wallpaperShade)), image.Point{}, draw.Over)
	return dst, nil
}

// coverRect is the centered part of src with the aspect ratio of the frame.
func coverRect(src image.Rectangle, width, height int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw*height > sh*width {
		w := sh * width / height
		x := src.Min.X + (sw-w)/2
		return image.Rect(x, src.Min.Y, x+w, src.Max.Y)
	}
	h := sw * height / width
	y := src.Min.Y + (sh-h)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+h)
}
