package system

import (
	"image"
	"sync"
)

// ImagePool reuses same-sized image.RGBA values so bubble layers and blur
// buffers do not churn the GC every frame.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage returns a cleared w x h image anchored at the origin.
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage hands img back for reuse.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) pool(size image.Point, create bool) *sync.Pool {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()
	if exists || !create {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Double check
	if pool, exists = p.pools[size]; !exists {
		pool = &sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
			},
		}
		p.pools[size] = pool
	}
	return pool
}

// Get returns a transparent image; pooled images are cleared before reuse.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	img := p.pool(image.Pt(w, h), true).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	if pool := p.pool(img.Rect.Size(), false); pool != nil {
		pool.Put(img)
	}
}
