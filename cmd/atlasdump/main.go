// Command atlasdump builds a glyph atlas for a font and writes its pages
// as PNG images.
//
// Usage:
//
//	atlasdump -font DejaVuSans.ttf -size 16 -output atlas.png
//	atlasdump -system arial -size 24 -text "Grüße" -output - > atlas.png
//	atlasdump -font fonts/anon.fnt -output anon.png
//
// Faces with more than one page write one file per page, numbered from 0.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/gogpu/fontatlas"
	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/raster"
)

func main() {
	var (
		fontPath = flag.String("font", "", "font file (.ttf, .otf, .ttc, .fnt, .xml)")
		system   = flag.String("system", "", "installed font to look up by name")
		size     = flag.Int("size", 16, "point size")
		dpi      = flag.Int("dpi", fontatlas.DefaultDPI, "resolution for point to pixel conversion")
		maxTex   = flag.Int("max-texture", fontatlas.MaxTextureSize, "largest page dimension")
		text     = flag.String("text", "", "characters to load into the glyph cache before dumping")
		output   = flag.String("output", "atlas.png", "output file, - for stdout")
		mono     = flag.Bool("mono", false, "render 1-bit glyphs")
		verbose  = flag.Bool("v", false, "log face construction")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *output == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal("refusing to write PNG data to a terminal")
	}

	opts := []fontatlas.Option{
		fontatlas.WithDPI(*dpi),
		fontatlas.WithTextureLimits(fontatlas.MinTextureSize, *maxTex),
	}
	if *mono {
		opts = append(opts, fontatlas.WithRasterizer(raster.NewSFNT(raster.WithMonochrome())))
	}

	font, err := openFont(*fontPath, *system, opts)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	face, err := font.Face(*size)
	if err != nil {
		log.Fatalf("Failed to build face: %v", err)
	}

	missing := 0
	for _, c := range *text {
		if _, ok := face.Glyph(c); !ok {
			missing++
		}
	}

	for i, p := range face.Pages() {
		name := pageName(*output, i, len(face.Pages()))
		if err := writePage(name, p); err != nil {
			log.Fatalf("Failed to write page %d: %v", i, err)
		}
	}

	report(os.Stderr, font, face, missing)
}

func openFont(path, system string, opts []fontatlas.Option) (*fontatlas.Font, error) {
	switch {
	case path != "" && system != "":
		return nil, errors.New("-font and -system are mutually exclusive")
	case path != "":
		return fontatlas.LoadFontFile(path, opts...)
	case system != "":
		return fontatlas.LoadSystemFont(system, opts...)
	default:
		return nil, errors.New("one of -font or -system is required")
	}
}

// pageName numbers output files when a face has several pages.
func pageName(output string, i, n int) string {
	if n == 1 || output == "-" {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(output, ext), i, ext)
}

func writePage(name string, p page.Page) error {
	m, ok := p.(*page.Memory)
	if !ok {
		return fmt.Errorf("page type %T has no readable pixels", p)
	}

	if name == "-" {
		return png.Encode(os.Stdout, m.Image())
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, m.Image()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func report(w io.Writer, font *fontatlas.Font, face fontatlas.Face, missing int) {
	fmt.Fprintf(w, "font:    %s (%s)\n", font.Name(), font.Type())
	fmt.Fprintf(w, "size:    %dpt, row height %dpx\n", face.PointSize(), face.RowHeight())
	fmt.Fprintf(w, "glyphs:  %d\n", face.GlyphCount())
	for i, p := range face.Pages() {
		fmt.Fprintf(w, "page %d:  %dx%d %s (%s)\n", i, p.Width(), p.Height(), p.Format(), p.Format().TextureFormat())
	}
	fmt.Fprintf(w, "memory:  %d bytes\n", font.MemoryUse())

	of, ok := face.(*fontatlas.OutlineFace)
	if !ok {
		return
	}
	ps := of.StaticPacking()
	fmt.Fprintf(w, "packing: %d boxes, %d px, %.1f%% of page\n", ps.Boxes, ps.UsedArea, 100*ps.Utilization)
	if of.LoadsAllGlyphs() {
		fmt.Fprintln(w, "cache:   all glyphs resident")
		return
	}
	s := of.CacheStats()
	fmt.Fprintf(w, "cache:   %d static, %d/%d slots, %.1f%% hits, %d failures\n",
		of.StaticCount(), len(of.CachedChars()), of.DynamicCapacity(), s.HitRate(), s.Failures)
	if missing > 0 {
		fmt.Fprintf(w, "missing: %d characters of -text\n", missing)
	}
}
