package page

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
)

// mockTexture is a texture with a whole-texture update path.
type mockTexture struct {
	width     int
	height    int
	data      []byte
	destroyed bool
	updated   int
	failNext  bool
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }

func (m *mockTexture) UpdateData(data []byte) error {
	if m.failNext {
		m.failNext = false
		return errors.New("mock update failed")
	}
	m.data = append(m.data[:0], data...)
	m.updated++
	return nil
}

func (m *mockTexture) Destroy() {
	m.destroyed = true
}

// regionTexture also accepts sub-rectangle uploads.
type regionTexture struct {
	mockTexture
	regions []image.Rectangle
	uploads [][]byte
}

func (r *regionTexture) UpdateRegion(x, y, w, h int, data []byte) error {
	if r.failNext {
		r.failNext = false
		return errors.New("mock region update failed")
	}
	r.regions = append(r.regions, image.Rect(x, y, x+w, y+h))
	r.uploads = append(r.uploads, append([]byte(nil), data...))
	return nil
}

// staticTexture has no update path, forcing recreation.
type staticTexture struct {
	destroyed bool
}

func (s *staticTexture) Width() int  { return 0 }
func (s *staticTexture) Height() int { return 0 }
func (s *staticTexture) Destroy()    { s.destroyed = true }

// mockCreator implements gpucontext.TextureCreator for testing.
type mockCreator struct {
	textures []*mockTexture
	regions  []*regionTexture
	statics  []*staticTexture
	static   bool
	region   bool
	failNext bool
}

func (m *mockCreator) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock texture creation failed")
	}
	switch {
	case m.static:
		tex := &staticTexture{}
		m.statics = append(m.statics, tex)
		return tex, nil
	case m.region:
		tex := &regionTexture{mockTexture: mockTexture{width: width, height: height}}
		tex.data = append([]byte(nil), data...)
		m.regions = append(m.regions, tex)
		return tex, nil
	}
	tex := &mockTexture{
		width:  width,
		height: height,
		data:   append([]byte(nil), data...),
	}
	m.textures = append(m.textures, tex)
	return tex, nil
}

func TestNewGPU(t *testing.T) {
	if _, err := NewGPU(nil, 4, 4, FormatAlpha8); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("NewGPU(nil) error = %v, want ErrNoTextureCreator", err)
	}
	if _, err := NewGPU(&mockCreator{}, 0, 4, FormatAlpha8); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewGPU(0x4) error = %v, want ErrInvalidSize", err)
	}

	g, err := NewGPU(&mockCreator{}, 4, 2, FormatAlpha8)
	if err != nil {
		t.Fatalf("NewGPU failed: %v", err)
	}
	if g.Texture() != nil {
		t.Error("texture should not exist before Flush")
	}
	if !g.IsDirty() {
		t.Error("new page should be dirty")
	}
}

func TestGPU_FlushCreatesThenUpdates(t *testing.T) {
	creator := &mockCreator{}
	g, _ := NewGPU(creator, 2, 1, FormatAlpha8)

	if err := g.WriteRegion(1, 0, 1, 1, []byte{0x80}); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}

	tex, err := g.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(creator.textures) != 1 || tex != gpucontext.Texture(creator.textures[0]) {
		t.Fatalf("expected one created texture, got %d", len(creator.textures))
	}

	// Alpha8 uploads as premultiplied white.
	want := []byte{0, 0, 0, 0, 0x80, 0x80, 0x80, 0x80}
	if diff := cmp.Diff(want, creator.textures[0].data); diff != "" {
		t.Errorf("uploaded pixels (-want +got):\n%s", diff)
	}
	if g.IsDirty() {
		t.Error("page should be clean after Flush")
	}

	// A clean flush does not touch the texture.
	if _, err := g.Flush(); err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}
	if creator.textures[0].updated != 0 {
		t.Errorf("clean Flush updated the texture %d times", creator.textures[0].updated)
	}

	if err := g.WriteRegion(0, 0, 1, 1, []byte{0xFF}); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}
	if _, err := g.Flush(); err != nil {
		t.Fatalf("third Flush failed: %v", err)
	}
	if len(creator.textures) != 1 {
		t.Errorf("update should reuse the texture, created %d", len(creator.textures))
	}
	if creator.textures[0].updated != 1 {
		t.Errorf("expected one update, got %d", creator.textures[0].updated)
	}
	if creator.textures[0].data[0] != 0xFF {
		t.Errorf("updated data[0] = %#x, want 0xff", creator.textures[0].data[0])
	}
}

func TestGPU_FlushUploadsDirtyRegions(t *testing.T) {
	creator := &mockCreator{region: true}
	g, _ := NewGPU(creator, 8, 8, FormatAlpha8)
	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(creator.regions) != 1 {
		t.Fatalf("expected one created texture, got %d", len(creator.regions))
	}
	tex := creator.regions[0]

	if err := g.WriteRegion(1, 1, 2, 2, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}
	if err := g.WriteRegion(6, 6, 1, 1, []byte{9}); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}

	wantRegions := []image.Rectangle{image.Rect(1, 1, 3, 3), image.Rect(6, 6, 7, 7)}
	if diff := cmp.Diff(wantRegions, g.DirtyRegions()); diff != "" {
		t.Errorf("dirty regions (-want +got):\n%s", diff)
	}

	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if diff := cmp.Diff(wantRegions, tex.regions); diff != "" {
		t.Errorf("uploaded regions (-want +got):\n%s", diff)
	}
	wantUploads := [][]byte{
		{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4},
		{9, 9, 9, 9},
	}
	if diff := cmp.Diff(wantUploads, tex.uploads); diff != "" {
		t.Errorf("uploaded pixels (-want +got):\n%s", diff)
	}
	if tex.updated != 0 {
		t.Errorf("region texture got %d whole-texture updates", tex.updated)
	}
	if g.IsDirty() {
		t.Error("page should be clean after Flush")
	}
}

func TestGPU_FlushRegionRGBA(t *testing.T) {
	creator := &mockCreator{region: true}
	g, _ := NewGPU(creator, 4, 2, FormatRGBA8)
	_, _ = g.Flush()

	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if err := g.WriteRegion(1, 0, 2, 2, pix); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}
	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	tex := creator.regions[0]
	if diff := cmp.Diff([][]byte{pix}, tex.uploads); diff != "" {
		t.Errorf("uploaded pixels (-want +got):\n%s", diff)
	}
}

func TestGPU_FlushRegionErrorKeepsDirty(t *testing.T) {
	creator := &mockCreator{region: true}
	g, _ := NewGPU(creator, 4, 4, FormatAlpha8)
	_, _ = g.Flush()

	_ = g.WriteRegion(0, 0, 1, 1, []byte{1})
	creator.regions[0].failNext = true
	if _, err := g.Flush(); err == nil {
		t.Fatal("expected region update error")
	}
	if !g.IsDirty() {
		t.Fatal("failed Flush should keep the dirty region")
	}
	if _, err := g.Flush(); err != nil {
		t.Fatalf("retry Flush failed: %v", err)
	}
	if len(creator.regions[0].regions) != 1 {
		t.Errorf("expected one uploaded region, got %d", len(creator.regions[0].regions))
	}
}

func TestGPU_DirtyRegionMerging(t *testing.T) {
	creator := &mockCreator{region: true}
	g, _ := NewGPU(creator, 64, 64, FormatAlpha8)
	_, _ = g.Flush()

	// Adjacent writes merge.
	_ = g.WriteRegion(0, 0, 1, 1, []byte{1})
	_ = g.WriteRegion(1, 0, 1, 1, []byte{1})
	if diff := cmp.Diff([]image.Rectangle{image.Rect(0, 0, 2, 1)}, g.DirtyRegions()); diff != "" {
		t.Errorf("adjacent writes (-want +got):\n%s", diff)
	}

	// Too many scattered writes collapse into their bounding box.
	for i := range maxDirtyRects {
		_ = g.WriteRegion(3*i+4, 10, 1, 1, []byte{1})
	}
	want := []image.Rectangle{image.Rect(0, 0, 3*(maxDirtyRects-1)+5, 11)}
	if diff := cmp.Diff(want, g.DirtyRegions()); diff != "" {
		t.Errorf("scattered writes (-want +got):\n%s", diff)
	}
}

func TestGPU_TextureFormat(t *testing.T) {
	g, _ := NewGPU(&mockCreator{}, 2, 2, FormatAlpha8)
	if g.TextureFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("TextureFormat() = %v, want RGBA8Unorm", g.TextureFormat())
	}
}

func TestGPU_FlushRecreatesWithoutUpdater(t *testing.T) {
	creator := &mockCreator{static: true}
	g, _ := NewGPU(creator, 2, 2, FormatRGBA8)

	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := g.WriteRegion(0, 0, 1, 1, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}
	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if len(creator.statics) != 2 {
		t.Fatalf("expected 2 textures, got %d", len(creator.statics))
	}
	if !creator.statics[0].destroyed {
		t.Error("replaced texture should be destroyed")
	}
	if creator.statics[1].destroyed {
		t.Error("current texture should not be destroyed")
	}
}

func TestGPU_FlushErrors(t *testing.T) {
	creator := &mockCreator{failNext: true}
	g, _ := NewGPU(creator, 2, 2, FormatAlpha8)

	if _, err := g.Flush(); err == nil {
		t.Fatal("expected creation error")
	}
	if !g.IsDirty() {
		t.Error("failed Flush should leave the page dirty")
	}
	if _, err := g.Flush(); err != nil {
		t.Fatalf("retry Flush failed: %v", err)
	}

	creator.textures[0].failNext = true
	_ = g.WriteRegion(0, 0, 1, 1, []byte{1})
	if _, err := g.Flush(); err == nil {
		t.Error("expected update error")
	}
}

func TestGPU_MarkLost(t *testing.T) {
	creator := &mockCreator{}
	g, _ := NewGPU(creator, 2, 2, FormatAlpha8)
	if _, err := g.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	g.MarkLost()

	if !g.IsDataLost() {
		t.Error("expected IsDataLost after MarkLost")
	}
	if g.Texture() != nil {
		t.Error("lost page should drop its texture")
	}
	if creator.textures[0].destroyed {
		t.Error("lost texture must not be destroyed through a dead context")
	}
	if err := g.WriteRegion(0, 0, 1, 1, []byte{1}); !errors.Is(err, ErrDataLost) {
		t.Errorf("WriteRegion error = %v, want ErrDataLost", err)
	}
	if _, err := g.Flush(); !errors.Is(err, ErrDataLost) {
		t.Errorf("Flush error = %v, want ErrDataLost", err)
	}
}

func TestGPU_Close(t *testing.T) {
	creator := &mockCreator{}
	g, _ := NewGPU(creator, 2, 2, FormatAlpha8)
	_, _ = g.Flush()

	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !creator.textures[0].destroyed {
		t.Error("Close should destroy the texture")
	}
}

func TestGPUAllocator(t *testing.T) {
	creator := &mockCreator{}
	a := NewGPUAllocator(creator)

	var pages []Page
	for range 3 {
		p, err := a.NewPage(4, 4, FormatAlpha8)
		if err != nil {
			t.Fatalf("NewPage failed: %v", err)
		}
		pages = append(pages, p)
	}

	if err := a.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(creator.textures) != 3 {
		t.Errorf("expected 3 textures, got %d", len(creator.textures))
	}

	a.MarkLost()
	for i, p := range pages {
		if !p.IsDataLost() {
			t.Errorf("page %d should be lost", i)
		}
	}

	if _, err := NewGPUAllocator(nil).NewPage(4, 4, FormatAlpha8); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("NewPage with nil creator error = %v, want ErrNoTextureCreator", err)
	}
}
