package engine

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/director"
	"github.com/ivlev/chatmotion/internal/renderer"
	"github.com/ivlev/chatmotion/internal/system"
	"github.com/ivlev/chatmotion/internal/video"
)

// stubSource marks every frame with its index in the first pixel.
type stubSource struct {
	frames int
	failAt int
}

func (s *stubSource) FrameCount() int        { return s.frames }
func (s *stubSource) Dimensions() (int, int) { return 8, 4 }
func (s *stubSource) Close() error           { return nil }

func (s *stubSource) RenderFrame(i int) (*image.RGBA, error) {
	if s.failAt >= 0 && i == s.failAt {
		return nil, errors.New("boom")
	}
	img := system.GetImage(8, 4)
	img.Pix[0] = uint8(i)
	img.Pix[1] = uint8(i >> 8)
	return img, nil
}

type recordingEncoder struct {
	mu     sync.Mutex
	params config.EncodeParams
	frames []int
	closed bool
}

func (e *recordingEncoder) Start(ctx context.Context, path string, params config.EncodeParams) (video.FrameWriter, error) {
	e.params = params
	return e, nil
}

func (e *recordingEncoder) WriteFrame(img image.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rgba := img.(*image.RGBA)
	e.frames = append(e.frames, int(rgba.Pix[0])|int(rgba.Pix[1])<<8)
	return nil
}

func (e *recordingEncoder) Close() error {
	e.closed = true
	return nil
}

func newTestProject(t *testing.T, src *stubSource, enc *recordingEncoder, workers int) *VideoProject {
	t.Helper()
	scene, err := renderer.NewSceneFromScenario(director.DefaultScenario())
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{OutputVideo: "out.mp4", Workers: workers, VideoEncoder: "libx264", Quality: 23}
	return NewVideoProject(cfg, src, scene, enc)
}

func TestRunWritesFramesInOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		src := &stubSource{frames: 37, failAt: -1}
		enc := &recordingEncoder{}
		p := newTestProject(t, src, enc, workers)

		if err := p.Run(context.Background()); err != nil {
			t.Fatalf("workers=%d: Run: %v", workers, err)
		}
		if !enc.closed {
			t.Errorf("workers=%d: writer not closed", workers)
		}
		if len(enc.frames) != 37 {
			t.Fatalf("workers=%d: wrote %d frames, want 37", workers, len(enc.frames))
		}
		for i, f := range enc.frames {
			if f != i {
				t.Fatalf("workers=%d: frame %d carries index %d", workers, i, f)
			}
		}
		if enc.params.Width != 8 || enc.params.Height != 4 || enc.params.FPS != 30 || enc.params.TotalFrames != 37 {
			t.Errorf("workers=%d: params = %+v", workers, enc.params)
		}
	}
}

func TestRunStopsOnRenderError(t *testing.T) {
	src := &stubSource{frames: 50, failAt: 20}
	enc := &recordingEncoder{}
	p := newTestProject(t, src, enc, 4)

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if len(enc.frames) >= 20 {
		t.Errorf("frames past the failure were written: %d", len(enc.frames))
	}
	if !enc.closed {
		t.Error("writer should be closed after a failure")
	}
}

var errDiskFull = errors.New("disk full")

// failingEncoder accepts frames until failAt, then rejects every write.
type failingEncoder struct {
	recordingEncoder
	failAt int
}

func (e *failingEncoder) Start(ctx context.Context, path string, params config.EncodeParams) (video.FrameWriter, error) {
	e.params = params
	return e, nil
}

func (e *failingEncoder) WriteFrame(img image.Image) error {
	e.mu.Lock()
	n := len(e.frames)
	e.mu.Unlock()
	if n >= e.failAt {
		return errDiskFull
	}
	return e.recordingEncoder.WriteFrame(img)
}

func TestRunStopsOnWriteError(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		src := &stubSource{frames: 200, failAt: -1}
		enc := &failingEncoder{failAt: 7}
		scene, err := renderer.NewSceneFromScenario(director.DefaultScenario())
		if err != nil {
			t.Fatal(err)
		}
		cfg := &config.Config{OutputVideo: "out.mp4", Workers: workers, VideoEncoder: "libx264", Quality: 23}
		p := NewVideoProject(cfg, src, scene, enc)

		done := make(chan error, 1)
		go func() { done <- p.Run(context.Background()) }()

		select {
		case err := <-done:
			if !errors.Is(err, errDiskFull) {
				t.Errorf("workers=%d: expected the write error, got %v", workers, err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("workers=%d: Run did not return after a write error", workers)
		}
		if len(enc.frames) != 7 {
			t.Errorf("workers=%d: wrote %d frames, want 7", workers, len(enc.frames))
		}
		if !enc.closed {
			t.Errorf("workers=%d: writer should be closed after a failure", workers)
		}
	}
}

func TestRunDumpsStates(t *testing.T) {
	src := &stubSource{frames: 5, failAt: -1}
	enc := &recordingEncoder{}
	p := newTestProject(t, src, enc, 2)
	p.Config.DumpStates = filepath.Join(t.TempDir(), "dump", "states.yaml")

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(p.Config.DumpStates); err != nil {
		t.Errorf("dump not written: %v", err)
	}
}

func TestFramesFor(t *testing.T) {
	tests := []struct {
		scene, fps int
		audio      float64
		want       int
	}{
		{208, 30, 0, 208},
		{208, 30, 5, 208},
		{208, 30, 10, 300},
		{208, 30, 10.01, 301},
		{0, 30, 0, 1},
	}
	for _, tt := range tests {
		if got := framesFor(tt.scene, tt.fps, tt.audio); got != tt.want {
			t.Errorf("framesFor(%d, %d, %v) = %d, want %d", tt.scene, tt.fps, tt.audio, got, tt.want)
		}
	}
}

func TestEvaluateFramesMatchesSequential(t *testing.T) {
	scene, err := renderer.NewSceneFromScenario(director.DefaultScenario())
	if err != nil {
		t.Fatal(err)
	}

	frames := []int{200, 0, 57, -3, 57, 12, 119, 1000}
	got, err := EvaluateFrames(context.Background(), scene, frames, 4)
	if err != nil {
		t.Fatalf("EvaluateFrames: %v", err)
	}

	for i, f := range frames {
		want, err := scene.Query(f)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got[i], want) {
			t.Errorf("frame %d: parallel state differs from sequential", f)
		}
	}
}

func TestEvaluateFramesCancelled(t *testing.T) {
	scene, err := renderer.NewSceneFromScenario(director.DefaultScenario())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := EvaluateFrames(ctx, scene, frameRange(100), 2); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDumpStates(t *testing.T) {
	scene, err := renderer.NewSceneFromScenario(director.DefaultScenario())
	if err != nil {
		t.Fatal(err)
	}
	states, err := EvaluateFrames(context.Background(), scene, []int{0, 30, 207}, 2)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "states.yaml")
	if err := DumpStates(path, states); err != nil {
		t.Fatalf("DumpStates: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var dump struct {
		Frames []struct {
			Frame    int `yaml:"frame"`
			Entities []struct {
				ID      string  `yaml:"id"`
				Phase   string  `yaml:"phase"`
				Opacity float64 `yaml:"opacity"`
			} `yaml:"entities"`
		} `yaml:"frames"`
	}
	if err := yaml.Unmarshal(data, &dump); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}

	if len(dump.Frames) != 3 || dump.Frames[2].Frame != 207 {
		t.Fatalf("unexpected frames: %+v", dump.Frames)
	}
	first := dump.Frames[0].Entities[0]
	if first.ID != "m1" || first.Phase != "pending" || first.Opacity != 0 {
		t.Errorf("frame 0, m1 = %+v", first)
	}
	if last := dump.Frames[2].Entities[5]; last.Phase != "settled" {
		t.Errorf("frame 207, m6 phase = %q", last.Phase)
	}
}
