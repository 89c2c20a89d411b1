package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/chatmotion/internal/config"
	"github.com/ivlev/chatmotion/internal/renderer"
	"github.com/ivlev/chatmotion/internal/source"
	"github.com/ivlev/chatmotion/internal/system"
	"github.com/ivlev/chatmotion/internal/video"
)

// framesPerBatch is how many frames each worker renders ahead of the encoder.
const framesPerBatch = 2

type VideoProject struct {
	Config  *config.Config
	Source  source.Source
	Scene   *renderer.Scene
	Encoder video.VideoEncoder
}

func NewVideoProject(cfg *config.Config, src source.Source, scene *renderer.Scene, ve video.VideoEncoder) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Source:  src,
		Scene:   scene,
		Encoder: ve,
	}
}

type timings struct {
	render time.Duration
	encode time.Duration
}

type batch struct {
	start  int
	frames []*image.RGBA
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	total, err := p.totalFrames()
	if err != nil {
		return err
	}
	fps := p.Scene.Config().FPS
	width, height := p.Source.Dimensions()
	workers := max(p.Config.Workers, 1)

	fmt.Println("--- [PROJECT: CHAT MOTION ENGINE] ---")
	fmt.Printf("[*] Сценарий: %s | Сообщений: %d\n", scenarioName(p.Config.ScenarioPath), len(p.Scene.Entities()))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Кадров: %d | Потоков: %d\n", width, height, fps, total, workers)
	fmt.Println("-----------------------------")

	if p.Config.DumpStates != "" {
		states, err := EvaluateFrames(ctx, p.Scene, frameRange(total), workers)
		if err != nil {
			return fmt.Errorf("ошибка расчета состояний: %w", err)
		}
		if err := DumpStates(p.Config.DumpStates, states); err != nil {
			return fmt.Errorf("ошибка записи состояний: %w", err)
		}
		fmt.Printf("[*] Состояния кадров сохранены: %s\n", p.Config.DumpStates)
	}

	writer, err := p.Encoder.Start(ctx, p.Config.OutputVideo, config.EncodeParams{
		Width:        width,
		Height:       height,
		FPS:          fps,
		TotalFrames:  total,
		VideoEncoder: p.Config.VideoEncoder,
		Quality:      p.Config.Quality,
		AudioPath:    p.Config.AudioPath,
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска кодировщика: %w", err)
	}

	t, err := p.renderAndWrite(ctx, writer, total, workers)
	if err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("ошибка кодирования видео: %w", err)
	}

	if p.Config.ShowStats {
		p.report(time.Since(startTime), t, total)
	}
	return nil
}

// totalFrames covers the scene and, when there is a soundtrack, the whole
// audio.
func (p *VideoProject) totalFrames() (int, error) {
	var audio float64
	if p.Config.AudioPath != "" {
		d, err := system.GetAudioDuration(p.Config.AudioPath)
		if err != nil {
			return 0, fmt.Errorf("не удалось определить длительность аудио: %w", err)
		}
		audio = d
	}
	return framesFor(p.Source.FrameCount(), p.Scene.Config().FPS, audio), nil
}

func framesFor(sceneFrames, fps int, audioSeconds float64) int {
	audioFrames := int(math.Ceil(audioSeconds * float64(fps)))
	return max(sceneFrames, audioFrames, 1)
}

// renderAndWrite renders batches of frames in parallel while the previous
// batch is written in order. Each frame goes back to the pool once written.
func (p *VideoProject) renderAndWrite(ctx context.Context, w video.FrameWriter, total, workers int) (timings, error) {
	var t timings
	size := workers * framesPerBatch
	batches := make(chan batch, 1)

	// writeErr outranks the cancellation the renderer reports after stop
	var writeErr error
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// 1. Render (CPU bound)
	g.Go(func() error {
		defer close(batches)
		for start := 0; start < total; start += size {
			began := time.Now()
			frames, err := p.renderBatch(gctx, start, min(size, total-start), workers)
			t.render += time.Since(began)
			if err != nil {
				return err
			}
			select {
			case batches <- batch{start: start, frames: frames}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// 2. Encode, strictly in frame order
	g.Go(func() error {
		for b := range batches {
			began := time.Now()
			for i, frame := range b.frames {
				if err := w.WriteFrame(frame); err != nil {
					writeErr = fmt.Errorf("ошибка записи кадра %d: %w", b.start+i, err)
					releaseFrames(b.frames[i:])
					// stop the renderer, then take back whatever it already queued
					stop()
					for rest := range batches {
						releaseFrames(rest.frames)
					}
					return writeErr
				}
				system.PutImage(frame)
			}
			t.encode += time.Since(began)
			fmt.Printf("[>] Ready: %d/%d\n", b.start+len(b.frames), total)
		}
		return nil
	})

	err := g.Wait()
	if writeErr != nil {
		err = writeErr
	}
	return t, err
}

func (p *VideoProject) renderBatch(ctx context.Context, start, n, workers int) ([]*image.RGBA, error) {
	frames := make([]*image.RGBA, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := p.Source.RenderFrame(start + i)
			if err != nil {
				return fmt.Errorf("ошибка рендеринга кадра %d: %w", start+i, err)
			}
			frames[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		releaseFrames(frames)
		return nil, err
	}
	return frames, nil
}

func releaseFrames(frames []*image.RGBA) {
	for _, f := range frames {
		system.PutImage(f)
	}
}

func (p *VideoProject) report(total time.Duration, t timings, frames int) {
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding (GPU/CPU): %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), t.render.Seconds(), t.encode.Seconds(), fps,
	)
	fmt.Print(report)

	// Append to the benchmark log
	logEntry := fmt.Sprintf("[%s] Build: %s | Scenario: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		scenarioName(p.Config.ScenarioPath),
		frames,
		total.Seconds(),
		t.render.Seconds(),
		t.encode.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

func scenarioName(path string) string {
	if path == "" {
		return "built-in"
	}
	return filepath.Base(path)
}

func frameRange(n int) []int {
	frames := make([]int, n)
	for i := range frames {
		frames[i] = i
	}
	return frames
}

// EvaluateFrames queries scene for every frame in parallel. States come back
// in the order the frames were requested, whatever order they finish in.
func EvaluateFrames(ctx context.Context, scene *renderer.Scene, frames []int, workers int) ([]renderer.SceneState, error) {
	states := make([]renderer.SceneState, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := scene.Query(frame)
			if err != nil {
				return err
			}
			states[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

// StateDump is the YAML document written by DumpStates.
type StateDump struct {
	Frames []renderer.SceneState `yaml:"frames"`
}

// DumpStates writes states as YAML, creating the parent directory.
func DumpStates(path string, states []renderer.SceneState) error {
	data, err := yaml.Marshal(StateDump{Frames: states})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
