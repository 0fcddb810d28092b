package page

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ErrNoTextureCreator is returned when a GPU page is created without a
// texture creator.
var ErrNoTextureCreator = errors.New("page: texture creator is nil")

// textureDestroyer is implemented by textures that release GPU resources.
type textureDestroyer interface {
	Destroy()
}

// maxDirtyRects bounds the dirty list; past it the regions collapse into
// their bounding box.
const maxDirtyRects = 16

// GPU is a Page mirrored into a GPU texture.
//
// Writes go to a CPU shadow copy and record a dirty region. Flush uploads
// the shadow: the first upload creates the texture. Later ones upload only
// the dirty regions when the texture implements
// gpucontext.TextureRegionUpdater, the whole page when it implements
// gpucontext.TextureUpdater, and recreate the texture otherwise.
//
// Textures are always RGBA8. Alpha8 pages upload as premultiplied white, so
// a glyph drawn with the texture composites like a coverage mask.
type GPU struct {
	mu      sync.Mutex
	shadow  *Memory
	creator gpucontext.TextureCreator
	texture gpucontext.Texture
	dirty   []image.Rectangle
	lost    bool
	upload  []byte
}

// NewGPU creates a GPU page. No texture is created until the first Flush.
func NewGPU(creator gpucontext.TextureCreator, width, height int, format Format) (*GPU, error) {
	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	shadow, err := NewMemory(width, height, format)
	if err != nil {
		return nil, err
	}
	g := &GPU{shadow: shadow, creator: creator}
	g.dirty = []image.Rectangle{g.bounds()}
	return g, nil
}

// Width implements Page.
func (g *GPU) Width() int { return g.shadow.Width() }

// Height implements Page.
func (g *GPU) Height() int { return g.shadow.Height() }

// Format implements Page.
func (g *GPU) Format() Format { return g.shadow.Format() }

// TextureFormat returns the format of the uploaded texture, which is RGBA8
// whatever the page format.
func (g *GPU) TextureFormat() gputypes.TextureFormat {
	return FormatRGBA8.TextureFormat()
}

func (g *GPU) bounds() image.Rectangle {
	return image.Rect(0, 0, g.shadow.Width(), g.shadow.Height())
}

// WriteRegion implements Page.
func (g *GPU) WriteRegion(x, y, w, h int, pix []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lost {
		return ErrDataLost
	}
	if err := g.shadow.WriteRegion(x, y, w, h, pix); err != nil {
		return err
	}
	g.markDirty(image.Rect(x, y, x+w, y+h))
	return nil
}

// markDirty adds r to the dirty list, merging it into a region it overlaps
// or touches. Caller must hold g.mu.
func (g *GPU) markDirty(r image.Rectangle) {
	if r.Empty() {
		return
	}
	for i, d := range g.dirty {
		if d.Inset(-1).Overlaps(r) {
			g.dirty[i] = d.Union(r)
			return
		}
	}
	g.dirty = append(g.dirty, r)
	if len(g.dirty) > maxDirtyRects {
		u := image.Rectangle{}
		for _, d := range g.dirty {
			u = u.Union(d)
		}
		g.dirty = append(g.dirty[:0], u)
	}
}

// IsDataLost implements Page.
func (g *GPU) IsDataLost() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lost
}

// MarkLost records that the device context holding the texture was lost.
// The texture handle is dropped without being destroyed.
func (g *GPU) MarkLost() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lost = true
	g.texture = nil
}

// IsDirty reports whether the shadow copy has changes not yet uploaded.
func (g *GPU) IsDirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.dirty) > 0
}

// DirtyRegions returns the regions written since the last Flush.
func (g *GPU) DirtyRegions() []image.Rectangle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]image.Rectangle(nil), g.dirty...)
}

// Flush uploads pending changes and returns the texture. On error the
// dirty regions are kept for the next attempt.
func (g *GPU) Flush() (gpucontext.Texture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lost {
		return nil, ErrDataLost
	}
	if len(g.dirty) == 0 && g.texture != nil {
		return g.texture, nil
	}

	if g.texture != nil {
		switch tex := g.texture.(type) {
		case gpucontext.TextureRegionUpdater:
			for len(g.dirty) > 0 {
				r := g.dirty[0]
				if err := tex.UpdateRegion(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), g.rgba(r)); err != nil {
					return nil, fmt.Errorf("page: texture region update failed: %w", err)
				}
				g.dirty = g.dirty[1:]
			}
			g.dirty = nil
			return g.texture, nil
		case gpucontext.TextureUpdater:
			if err := tex.UpdateData(g.rgba(g.bounds())); err != nil {
				return nil, fmt.Errorf("page: texture update failed: %w", err)
			}
			g.dirty = nil
			return g.texture, nil
		}
		g.destroyTexture()
	}

	tex, err := g.creator.NewTextureFromRGBA(g.shadow.Width(), g.shadow.Height(), g.rgba(g.bounds()))
	if err != nil {
		return nil, fmt.Errorf("page: texture creation failed: %w", err)
	}
	g.texture = tex
	g.dirty = nil
	return tex, nil
}

// Texture returns the current texture without flushing. It is nil before
// the first Flush and after MarkLost.
func (g *GPU) Texture() gpucontext.Texture {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.texture
}

// Close destroys the texture.
func (g *GPU) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyTexture()
	return nil
}

func (g *GPU) destroyTexture() {
	if d, ok := g.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	g.texture = nil
}

// rgba returns region r of the shadow as tightly packed RGBA8 bytes. The
// result aliases a buffer reused across calls. Caller must hold g.mu.
func (g *GPU) rgba(r image.Rectangle) []byte {
	stride := g.shadow.Stride()
	src := g.shadow.Pix()
	bpp := g.shadow.Format().BytesPerPixel()

	if bpp == 4 && r == g.bounds() {
		return src
	}

	n := r.Dx() * r.Dy() * 4
	if cap(g.upload) < n {
		g.upload = make([]byte, n)
	}
	out := g.upload[:n]

	o := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := src[y*stride+r.Min.X*bpp : y*stride+r.Max.X*bpp]
		if bpp == 4 {
			o += copy(out[o:], row)
			continue
		}
		for _, a := range row {
			out[o+0] = a
			out[o+1] = a
			out[o+2] = a
			out[o+3] = a
			o += 4
		}
	}
	return out
}

// GPUAllocator creates GPU pages sharing one texture creator.
type GPUAllocator struct {
	creator gpucontext.TextureCreator

	mu    sync.Mutex
	pages []*GPU
}

// NewGPUAllocator creates an allocator for GPU pages.
func NewGPUAllocator(creator gpucontext.TextureCreator) *GPUAllocator {
	return &GPUAllocator{creator: creator}
}

// NewPage implements Allocator.
func (a *GPUAllocator) NewPage(width, height int, format Format) (Page, error) {
	p, err := NewGPU(a.creator, width, height, format)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.pages = append(a.pages, p)
	a.mu.Unlock()
	return p, nil
}

// MarkLost marks every page created by the allocator as lost, as happens
// when the device context is reset.
func (a *GPUAllocator) MarkLost() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.pages {
		p.MarkLost()
	}
	a.pages = nil
}

// Flush uploads every live page.
func (a *GPUAllocator) Flush() error {
	a.mu.Lock()
	pages := append([]*GPU(nil), a.pages...)
	a.mu.Unlock()

	var errs []error
	for _, p := range pages {
		if _, err := p.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
