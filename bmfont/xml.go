package bmfont

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
)

type xmlFont struct {
	XMLName xml.Name `xml:"font"`
	Info    Info     `xml:"info"`
	Common  Common   `xml:"common"`
	Pages   *struct {
		Page []Page `xml:"page"`
	} `xml:"pages"`
	Chars struct {
		Char []Char `xml:"char"`
	} `xml:"chars"`
	Kernings struct {
		Kerning []Kerning `xml:"kerning"`
	} `xml:"kernings"`
}

// charsetReader decodes declared encodings other than UTF-8. BMFont
// writes latin-1 descriptions unless told otherwise.
func charsetReader(label string, r io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("bmfont: unsupported encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(r), nil
}

func parseXML(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var f xmlFont
	if err := dec.Decode(&f); err != nil {
		if _, ok := err.(xml.UnmarshalError); ok {
			return nil, fmt.Errorf("%w: %v", ErrNoFontElement, err)
		}
		return nil, fmt.Errorf("bmfont: invalid XML: %w", err)
	}
	if f.Pages == nil {
		return nil, ErrNoPages
	}

	return &Document{
		Info:     f.Info,
		Common:   f.Common,
		Pages:    f.Pages.Page,
		Chars:    f.Chars.Char,
		Kernings: f.Kernings.Kerning,
	}, nil
}
