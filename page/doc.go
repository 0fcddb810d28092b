// Package page provides the pixel stores that hold a face's glyph atlas.
//
// A Page is a fixed-size 2D surface that glyph bitmaps are written into.
// Two implementations are included:
//
//   - Memory keeps pixels in an image.Alpha or image.RGBA and never loses
//     data unless Invalidate is called. It is the default.
//   - GPU keeps a CPU shadow copy and mirrors it into a texture created
//     through gpucontext.TextureCreator. A lost device context is reported
//     with MarkLost; the owning face then reports IsDataLost and is rebuilt.
//
// Allocators create pages on demand so faces stay independent of where
// their pixels live:
//
//	pages := page.NewGPUAllocator(creator)
//	p, err := pages.NewPage(512, 256, page.FormatAlpha8)
package page
