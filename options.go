package fontatlas

import (
	"io/fs"

	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/raster"
)

// Limits applied by DefaultFaceConfig.
const (
	// MinPointSize and MaxPointSize bound outline face sizes. Requests
	// outside the range are clamped.
	MinPointSize = 6
	MaxPointSize = 48

	// MaxASCIICode is the last code kept resident when a font does not fit
	// its texture; codes above it go through the dynamic cache.
	MaxASCIICode = 127

	// MinTextureSize and MaxTextureSize bound outline page dimensions.
	MinTextureSize = 128
	MaxTextureSize = 2048

	// DefaultDPI is the resolution used to convert points to pixels.
	DefaultDPI = 96
)

// FaceConfig holds the sizing parameters for building faces.
type FaceConfig struct {
	// DPI converts point sizes to pixels.
	// Default: 96
	DPI int

	// MinTextureSize is the smallest page dimension.
	// Default: 128
	MinTextureSize int

	// MaxTextureSize is the largest page dimension at 32pt and above.
	// Smaller sizes use a fraction of it.
	// Default: 2048
	MaxTextureSize int

	// MinPointSize and MaxPointSize clamp requested outline sizes.
	// Default: 6 and 48
	MinPointSize int
	MaxPointSize int
}

// DefaultFaceConfig returns the default face configuration.
func DefaultFaceConfig() FaceConfig {
	return FaceConfig{
		DPI:            DefaultDPI,
		MinTextureSize: MinTextureSize,
		MaxTextureSize: MaxTextureSize,
		MinPointSize:   MinPointSize,
		MaxPointSize:   MaxPointSize,
	}
}

// Validate checks if the configuration is valid.
func (c *FaceConfig) Validate() error {
	if c.DPI < 1 {
		return &ConfigError{Field: "DPI", Reason: "must be positive"}
	}
	if c.MinTextureSize < 1 {
		return &ConfigError{Field: "MinTextureSize", Reason: "must be positive"}
	}
	if c.MaxTextureSize < c.MinTextureSize {
		return &ConfigError{Field: "MaxTextureSize", Reason: "must be at least MinTextureSize"}
	}
	if c.MaxTextureSize > 16384 {
		return &ConfigError{Field: "MaxTextureSize", Reason: "must be at most 16384"}
	}
	if c.MinPointSize < 1 {
		return &ConfigError{Field: "MinPointSize", Reason: "must be positive"}
	}
	if c.MaxPointSize < c.MinPointSize {
		return &ConfigError{Field: "MaxPointSize", Reason: "must be at least MinPointSize"}
	}
	return nil
}

// clampPointSize limits p to the configured range.
func (c *FaceConfig) clampPointSize(p int) int {
	return max(c.MinPointSize, min(c.MaxPointSize, p))
}

// Option configures Font creation.
type Option func(*fontConfig)

// fontConfig holds configuration for Font.
type fontConfig struct {
	face       FaceConfig
	rasterizer raster.Rasterizer
	pages      page.Allocator
	fsys       fs.FS
}

// defaultFontConfig returns the default font configuration.
func defaultFontConfig() fontConfig {
	return fontConfig{
		face:       DefaultFaceConfig(),
		rasterizer: raster.NewSFNT(),
		pages:      page.MemoryAllocator{},
	}
}

// WithRasterizer sets the rasterizer used for outline fonts.
// The default is raster.SFNT.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(c *fontConfig) {
		c.rasterizer = r
	}
}

// WithPageAllocator sets where faces keep their pixels.
// The default is page.MemoryAllocator.
func WithPageAllocator(a page.Allocator) Option {
	return func(c *fontConfig) {
		c.pages = a
	}
}

// WithFS sets the file system bitmap fonts load their page images from.
// Page paths are resolved against the directory of the font name.
func WithFS(fsys fs.FS) Option {
	return func(c *fontConfig) {
		c.fsys = fsys
	}
}

// WithDPI sets the resolution used to convert points to pixels.
func WithDPI(dpi int) Option {
	return func(c *fontConfig) {
		c.face.DPI = dpi
	}
}

// WithTextureLimits sets the smallest and largest outline page dimension.
func WithTextureLimits(minSize, maxSize int) Option {
	return func(c *fontConfig) {
		c.face.MinTextureSize = minSize
		c.face.MaxTextureSize = maxSize
	}
}

// WithPointSizeRange sets the range outline sizes are clamped to.
func WithPointSizeRange(minSize, maxSize int) Option {
	return func(c *fontConfig) {
		c.face.MinPointSize = minSize
		c.face.MaxPointSize = maxSize
	}
}

// WithFaceConfig replaces all sizing parameters at once.
func WithFaceConfig(cfg FaceConfig) Option {
	return func(c *fontConfig) {
		c.face = cfg
	}
}
