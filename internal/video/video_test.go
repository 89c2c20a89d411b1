package video

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/ivlev/chatmotion/internal/config"
)

func TestBuildFFmpegArgs(t *testing.T) {
	base := config.EncodeParams{Width: 1280, Height: 720, FPS: 30, VideoEncoder: "libx264", Quality: 23}

	tests := []struct {
		name   string
		mutate func(*config.EncodeParams)
		want   []string
		absent []string
	}{
		{
			name:   "x264",
			mutate: func(p *config.EncodeParams) {},
			want:   []string{"-video_size 1280x720", "-framerate 30", "-crf 23 -preset medium", "-c:v libx264", "-pix_fmt yuv420p"},
			absent: []string{"-shortest", "-b:v"},
		},
		{
			name: "videotoolbox bitrate",
			mutate: func(p *config.EncodeParams) {
				p.VideoEncoder = "h264_videotoolbox"
				p.Quality = 75
			},
			want:   []string{"-b:v 7500k"},
			absent: []string{"-crf"},
		},
		{
			name: "nvenc",
			mutate: func(p *config.EncodeParams) {
				p.VideoEncoder = "h264_nvenc"
				p.Quality = 28
			},
			want: []string{"-cq 28"},
		},
		{
			name:   "audio track",
			mutate: func(p *config.EncodeParams) { p.AudioPath = "voice.mp3" },
			want:   []string{"-i voice.mp3 -map 0:v -map 1:a", "-shortest"},
		},
	}

	e := &FFmpegEncoder{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			args := e.buildFFmpegArgs("out.mp4", p)
			line := strings.Join(args, " ")

			if args[len(args)-1] != "out.mp4" {
				t.Errorf("output path should come last: %v", args)
			}
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("missing %q in %q", w, line)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(line, a) {
					t.Errorf("unexpected %q in %q", a, line)
				}
			}
		})
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{1, 2, 3, 255})
	img.SetRGBA(1, 0, color.RGBA{4, 5, 6, 255})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3, 255, 4, 5, 6, 255}) {
		t.Errorf("raw = %v", buf.Bytes())
	}

	// a sub-image is repacked into a tight buffer
	sub := img.SubImage(image.Rect(1, 0, 2, 1))
	buf.Reset()
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{4, 5, 6, 255}) {
		t.Errorf("sub-image raw = %v", buf.Bytes())
	}
}
