package bmfont

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// attrs holds the key=value pairs of one text line.
type attrs map[string]string

// splitLine splits a text description line into its tag and attributes.
// Values may be double-quoted to include spaces.
func splitLine(line string) (string, attrs, error) {
	line = strings.TrimSpace(line)
	tag, rest, _ := strings.Cut(line, " ")

	a := attrs{}
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return tag, a, nil
		}

		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return "", nil, fmt.Errorf("expected key=value, found %q", rest)
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var val string
		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return "", nil, fmt.Errorf("unterminated quote in %s", key)
			}
			val, rest = rest[1:end+1], rest[end+2:]
		} else {
			val, rest, _ = strings.Cut(rest, " ")
		}
		a[key] = val
	}
}

// num returns the named attribute as an integer, or 0 when absent. Lists
// such as padding=1,1,1,1 are not read through num.
func (a attrs) num(key string) (int, error) {
	v, ok := a[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// ints reads several integer attributes into the given pointers.
func (a attrs) ints(fields map[string]*int) error {
	for key, dst := range fields {
		n, err := a.num(key)
		if err != nil {
			return err
		}
		*dst = n
	}
	return nil
}

func parseText(data []byte) (*Document, error) {
	doc := &Document{}
	sawPage := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		tag, a, err := splitLine(line)
		if err != nil {
			return nil, &SyntaxError{Line: n, Msg: err.Error()}
		}

		switch tag {
		case "info":
			doc.Info.Face = a["face"]
			err = a.ints(map[string]*int{"size": &doc.Info.Size})
		case "common":
			c := &doc.Common
			err = a.ints(map[string]*int{
				"lineHeight": &c.LineHeight,
				"base":       &c.Base,
				"scaleW":     &c.ScaleW,
				"scaleH":     &c.ScaleH,
				"pages":      &c.Pages,
			})
		case "page":
			var p Page
			p.File = a["file"]
			err = a.ints(map[string]*int{"id": &p.ID})
			doc.Pages = append(doc.Pages, p)
			sawPage = true
		case "char":
			var c Char
			err = a.ints(map[string]*int{
				"id":       &c.ID,
				"x":        &c.X,
				"y":        &c.Y,
				"width":    &c.Width,
				"height":   &c.Height,
				"xoffset":  &c.XOffset,
				"yoffset":  &c.YOffset,
				"xadvance": &c.XAdvance,
				"page":     &c.Page,
			})
			doc.Chars = append(doc.Chars, c)
		case "kerning":
			var k Kerning
			err = a.ints(map[string]*int{
				"first":  &k.First,
				"second": &k.Second,
				"amount": &k.Amount,
			})
			doc.Kernings = append(doc.Kernings, k)
		}
		if err != nil {
			return nil, &SyntaxError{Line: n, Msg: err.Error()}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bmfont: read description: %w", err)
	}

	if !sawPage {
		return nil, ErrNoPages
	}
	return doc, nil
}
