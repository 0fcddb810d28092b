// Package fontatlas packs font glyphs into texture pages for text
// rendering.
//
// # Overview
//
// A [Font] holds the bytes of a TrueType/OpenType font or a BMFont
// description and builds a [Face] per point size on first request. A face
// owns one or more pages (see package page) and answers glyph and kerning
// queries for a layout engine:
//
//	font, err := fontatlas.LoadFontFile("fonts/Anonymous Pro.ttf")
//	if err != nil {
//	    return err
//	}
//	face, err := font.Face(14)
//	if err != nil {
//	    return err
//	}
//	g, ok := face.Glyph('A')
//	dx := face.Kerning('A', 'V')
//
// # Outline faces
//
// Outline faces measure every glyph first. When the whole character set
// fits the page size allowed for the point size, every glyph is rendered at
// load time and the page is cropped to what was used. Otherwise the ASCII
// range stays resident and the remaining page area is cut into slots of the
// largest glyph's size. Other characters are rendered into slots on first
// use, replacing the least recently used one.
//
// # Bitmap faces
//
// Bitmap faces load a BMFont description (XML or text) and its page
// images, which are resolved relative to the description through an
// [io/fs.FS]. They have one size regardless of the size requested.
//
// # Data loss
//
// Pages backed by GPU textures can lose their contents when the device
// context is reset. [Font.Face] detects this and rebuilds the face in the
// same call.
//
// # Logging
//
// fontatlas is silent by default. Use [SetLogger] to receive diagnostics
// through log/slog.
package fontatlas
