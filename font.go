package fontatlas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/flopp/go-findfont"
)

// FontType classifies font data.
type FontType uint8

const (
	// TypeNone is a font whose format could not be determined.
	TypeNone FontType = iota

	// TypeOutline is a TrueType, OpenType or collection font.
	TypeOutline

	// TypeBitmap is a BMFont description with page images.
	TypeBitmap
)

// String returns a human-readable name for the type.
func (t FontType) String() string {
	switch t {
	case TypeOutline:
		return "outline"
	case TypeBitmap:
		return "bitmap"
	default:
		return "none"
	}
}

// typeOf classifies a font by its file extension.
func typeOf(name string) FontType {
	switch strings.ToLower(path.Ext(filepath.ToSlash(name))) {
	case ".ttf", ".otf", ".ttc":
		return TypeOutline
	case ".xml", ".fnt":
		return TypeBitmap
	default:
		return TypeNone
	}
}

// bitmapSizeKey is the registry key of a bitmap font's only face.
const bitmapSizeKey = 0

// Font holds font data and builds faces from it on demand, one per point
// size.
//
// Font is not safe for concurrent use.
type Font struct {
	name string
	data []byte
	typ  FontType
	cfg  fontConfig
	dir  string // page image directory within cfg.fsys

	faces     *treemap.Map // int -> Face
	memoryUse int
}

// NewFont creates a font from data. The type is taken from the extension
// of name: .ttf, .otf and .ttc are outline fonts, .xml and .fnt bitmap
// fonts. The data is copied.
func NewFont(name string, data []byte, opts ...Option) (*Font, error) {
	dir := strings.TrimPrefix(path.Dir(filepath.ToSlash(name)), "/")
	if dir == "" {
		dir = "."
	}
	return newFont(name, data, dir, opts)
}

func newFont(name string, data []byte, dir string, opts []Option) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	cfg := defaultFontConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.face.Validate(); err != nil {
		return nil, err
	}

	f := &Font{
		name:  name,
		data:  append([]byte(nil), data...),
		typ:   typeOf(name),
		cfg:   cfg,
		dir:   dir,
		faces: treemap.NewWithIntComparator(),
	}
	f.memoryUse = len(f.data)
	return f, nil
}

// LoadFont reads exactly size bytes of font data from r.
func LoadFont(name string, r io.Reader, size int64, opts ...Option) (*Font, error) {
	if size <= 0 {
		return nil, ErrEmptyFontData
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrShortRead, name)
		}
		return nil, fmt.Errorf("fontatlas: read %s: %w", name, err)
	}
	return NewFont(name, data, opts...)
}

// LoadFontFile reads a font file. Bitmap page images are loaded from the
// file's directory unless WithFS is given.
func LoadFontFile(filename string, opts ...Option) (*Font, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("fontatlas: %w", err)
	}

	all := append([]Option{WithFS(os.DirFS(filepath.Dir(filename)))}, opts...)
	return newFont(filename, data, ".", all)
}

// LoadSystemFont finds an installed font by file name, such as
// "DejaVuSans.ttf" or "arial", and loads it.
func LoadSystemFont(name string, opts ...Option) (*Font, error) {
	filename, err := findfont.Find(name)
	if err != nil {
		return nil, fmt.Errorf("fontatlas: find %s: %w", name, err)
	}
	return LoadFontFile(filename, opts...)
}

// Name returns the name the font was created with.
func (f *Font) Name() string { return f.name }

// Type returns the font type.
func (f *Font) Type() FontType { return f.typ }

// MemoryUse returns the bytes held by the font data and all faces.
func (f *Font) MemoryUse() int { return f.memoryUse }

// Face returns the face for a point size, building it on first use.
//
// Outline sizes are clamped to the configured range. Bitmap fonts have a
// single face and ignore pointSize. A face whose pages lost their contents
// is rebuilt.
func (f *Font) Face(pointSize int) (Face, error) {
	switch f.typ {
	case TypeOutline:
		pointSize = f.cfg.face.clampPointSize(pointSize)
	case TypeBitmap:
		pointSize = bitmapSizeKey
	default:
		return nil, &LoadError{Font: f.name, PointSize: pointSize, Err: ErrUnknownFontType}
	}

	log := Logger()

	if v, ok := f.faces.Get(pointSize); ok {
		face := v.(Face)
		if !face.IsDataLost() {
			return face, nil
		}
		log.Warn("fontatlas: face data lost, rebuilding", "font", f.name, "size", pointSize)
		f.discard(pointSize, face)
	}

	face, err := f.build(pointSize)
	if err != nil {
		return nil, &LoadError{Font: f.name, PointSize: pointSize, Err: err}
	}

	f.faces.Put(pointSize, face)
	f.memoryUse += face.TextureSize()
	log.Info("fontatlas: face created",
		"font", f.name,
		"type", f.typ.String(),
		"size", face.PointSize(),
		"glyphs", face.GlyphCount(),
		"texture", face.TextureSize())
	return face, nil
}

// build creates a face of the font's type.
func (f *Font) build(pointSize int) (Face, error) {
	log := Logger()

	if f.typ == TypeBitmap {
		return loadBitmapFace(f.data, f.cfg.fsys, f.dir, f.cfg.pages, log)
	}

	rf, err := f.cfg.rasterizer.Open(f.data)
	if err != nil {
		return nil, err
	}
	face, err := loadOutlineFace(rf, pointSize, f.cfg.face, f.cfg.pages, log)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}
	return face, nil
}

// discard removes a face from the registry and releases it.
func (f *Font) discard(key int, face Face) {
	f.faces.Remove(key)
	f.memoryUse -= face.TextureSize()
	if c, ok := face.(io.Closer); ok {
		if err := c.Close(); err != nil {
			Logger().Warn("fontatlas: face close failed", "font", f.name, "err", err)
		}
	}
}

// Sizes returns the point sizes of the built faces in ascending order.
// A bitmap font reports 0 for its face.
func (f *Font) Sizes() []int {
	keys := f.faces.Keys()
	sizes := make([]int, len(keys))
	for i, k := range keys {
		sizes[i] = k.(int)
	}
	return sizes
}

// ReleaseFaces drops every built face. Faces are rebuilt on the next Face
// call.
func (f *Font) ReleaseFaces() {
	for _, size := range f.Sizes() {
		if v, ok := f.faces.Get(size); ok {
			f.discard(size, v.(Face))
		}
	}
}
