package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"

	"github.com/ivlev/chatmotion/internal/config"
)

// VideoEncoder opens an output stream that accepts frames in order.
type VideoEncoder interface {
	Start(ctx context.Context, videoPath string, params config.EncodeParams) (FrameWriter, error)
}

// FrameWriter takes frames one at a time. Close flushes the stream and waits
// for the encoder to finish.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Start(ctx context.Context, videoPath string, params config.EncodeParams) (FrameWriter, error) {
	args := e.buildFFmpegArgs(videoPath, params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegStream{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		width:  params.Width,
		height: params.Height,
	}, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(videoPath string, params config.EncodeParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.AudioPath != "" {
		args = append(args, "-i", params.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest")
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.VideoEncoder,
	)

	// Quality depends on the encoder
	switch params.VideoEncoder {
	case "h264_videotoolbox":
		// VideoToolbox often ignores -q:v, so use a bitrate.
		bitrate := params.Quality * 100 // kbit/s. 75 -> 7.5Mbit/s
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	width  int
	height int
	frames int
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %d: size %dx%d, stream is %dx%d", s.frames, b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

func (s *ffmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, lastLines(s.stderr.String(), 8))
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
