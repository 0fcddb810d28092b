// Package bmfont reads AngelCode BMFont descriptions.
//
// Both the XML form and the plain text form are accepted; Parse tells them
// apart from the first non-blank byte. Binary descriptions are not
// supported.
//
// A description lists the page images of a pre-rendered font, the location
// of every character on those pages and optional kerning pairs. Loading the
// page images is left to the caller.
package bmfont
