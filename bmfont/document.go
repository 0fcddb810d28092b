package bmfont

import (
	"bytes"
	"errors"
	"fmt"
)

// Sentinel errors for bmfont package.
var (
	// ErrEmpty is returned when the description has no content.
	ErrEmpty = errors.New("bmfont: empty description")

	// ErrNoFontElement is returned when an XML description has no <font>
	// root.
	ErrNoFontElement = errors.New("bmfont: missing font element")

	// ErrNoPages is returned when the description lists no pages.
	ErrNoPages = errors.New("bmfont: missing pages")

	// ErrMissingPage is returned when fewer pages are listed than
	// common.pages announces.
	ErrMissingPage = errors.New("bmfont: missing page")
)

// SyntaxError reports a malformed line of a text description.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bmfont: line %d: %s", e.Line, e.Msg)
}

// Info is the <info> block.
type Info struct {
	Face string `xml:"face,attr"`
	Size int    `xml:"size,attr"`
}

// Common is the <common> block.
type Common struct {
	LineHeight int `xml:"lineHeight,attr"`
	Base       int `xml:"base,attr"`
	ScaleW     int `xml:"scaleW,attr"`
	ScaleH     int `xml:"scaleH,attr"`
	Pages      int `xml:"pages,attr"`
}

// Page names one page image, relative to the description file.
type Page struct {
	ID   int    `xml:"id,attr"`
	File string `xml:"file,attr"`
}

// Char locates one character on a page.
type Char struct {
	ID       int `xml:"id,attr"`
	X        int `xml:"x,attr"`
	Y        int `xml:"y,attr"`
	Width    int `xml:"width,attr"`
	Height   int `xml:"height,attr"`
	XOffset  int `xml:"xoffset,attr"`
	YOffset  int `xml:"yoffset,attr"`
	XAdvance int `xml:"xadvance,attr"`
	Page     int `xml:"page,attr"`
}

// Kerning adjusts the advance between two characters.
type Kerning struct {
	First  int `xml:"first,attr"`
	Second int `xml:"second,attr"`
	Amount int `xml:"amount,attr"`
}

// Document is a parsed description.
type Document struct {
	Info     Info
	Common   Common
	Pages    []Page
	Chars    []Char
	Kernings []Kerning
}

// Parse decodes a description in XML or text form.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	var (
		doc *Document
		err error
	)
	if trimmed[0] == '<' {
		doc, err = parseXML(trimmed)
	} else {
		doc, err = parseText(trimmed)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) validate() error {
	if d.Common.Pages > len(d.Pages) {
		return fmt.Errorf("%w: %d listed, %d announced", ErrMissingPage, len(d.Pages), d.Common.Pages)
	}
	return nil
}

// PageFiles returns the first common.pages page files in listing order.
// A zero common.pages selects every listed page.
func (d *Document) PageFiles() []string {
	n := d.Common.Pages
	if n <= 0 || n > len(d.Pages) {
		n = len(d.Pages)
	}
	files := make([]string, n)
	for i := range files {
		files[i] = d.Pages[i].File
	}
	return files
}
