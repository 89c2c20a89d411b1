package system

import (
	"image"
	"image/color"
	"testing"
)

func TestImagePoolClearsReusedImages(t *testing.T) {
	p := NewImagePool()

	img := p.Get(8, 4)
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	img.Set(3, 2, color.RGBA{255, 0, 0, 255})
	p.Put(img)

	again := p.Get(8, 4)
	for i, v := range again.Pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d, want cleared image", i, v)
		}
	}
}

func TestImagePoolIgnoresForeignImages(t *testing.T) {
	p := NewImagePool()

	// never requested size and non-zero origin
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	p.Put(image.NewRGBA(image.Rect(5, 5, 8, 8)))
	p.Put(nil)

	if len(p.pools) != 0 {
		t.Errorf("Put created pools: %d", len(p.pools))
	}
}

func TestWorkersFor(t *testing.T) {
	const frame = 1280 * 720 * 4

	tests := []struct {
		name string
		info HostInfo
		want int
	}{
		{"cpu bound", HostInfo{LogicalCPUs: 8, AvailableMemory: 64 << 30}, 8},
		{"memory bound", HostInfo{LogicalCPUs: 16, AvailableMemory: 2 * 3 * frame * framesPerWorker}, 3},
		{"tiny memory", HostInfo{LogicalCPUs: 4, AvailableMemory: 1024}, 1},
		{"unknown memory", HostInfo{LogicalCPUs: 4}, 4},
		{"no cpu info", HostInfo{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workersFor(tt.info, frame); got != tt.want {
				t.Errorf("workersFor = %d, want %d", got, tt.want)
			}
		})
	}
}
