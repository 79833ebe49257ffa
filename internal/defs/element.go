// Package defs parses RimWorld definition documents and extracts the
// definition elements they contain.
//
// Documents are parsed into a light element tree that keeps only what the
// extraction needs: local names, attributes, element text and the text
// that follows each child. Comments, processing instructions and
// directives are dropped.
package defs

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Attr is an attribute of an element, namespace stripped.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of a parsed document.
type Element struct {
	Name     string // Local name, namespace stripped
	Space    string // Resolved namespace, if any
	Attrs    []Attr
	Text     string // Character data before the first child
	Tail     string // Character data after this element's end tag, inside its parent
	Children []*Element
}

// Attr returns the value of the named attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given local name.
func (e *Element) Child(name string) *Element {
	for _, ch := range e.Children {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// HasChild reports whether e has a direct child with the given local name.
func (e *Element) HasChild(name string) bool {
	return e.Child(name) != nil
}

// Walk calls fn for e and every descendant, depth first in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, ch := range e.Children {
		ch.Walk(fn)
	}
}

// ParseFile parses the document at path.
func ParseFile(path string) (*Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads one XML document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, transcoded, err := decodeBOM(data)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	if transcoded {
		// Already UTF-8; the declaration still names the original encoding.
		dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	}

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				line, _ := dec.InputPos()
				return nil, fmt.Errorf("junk after document element: line %d", line)
			}
			el := newElement(t)
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					line, _ := dec.InputPos()
					return nil, fmt.Errorf("text outside document element: line %d", line)
				}
				continue
			}
			top := stack[len(stack)-1]
			if n := len(top.Children); n > 0 {
				top.Children[n-1].Tail += string(t)
			} else {
				top.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no element found")
	}
	return root, nil
}

// decodeBOM strips a UTF-8 byte-order mark and transcodes UTF-16 input
// marked with a BOM to UTF-8. The flag reports whether it transcoded.
func decodeBOM(data []byte) ([]byte, bool, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return data[len(utf8BOM):], false, nil
	case bytes.HasPrefix(data, utf16LEBOM), bytes.HasPrefix(data, utf16BEBOM):
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, false, fmt.Errorf("decode utf-16: %w", err)
		}
		return out, true, nil
	}
	return data, false, nil
}

func newElement(start xml.StartElement) *Element {
	el := &Element{Name: start.Name.Local, Space: start.Name.Space}
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}
	return el
}

// LocalName strips a namespace from a tag written either as
// "{namespace}Local" or "prefix:Local".
func LocalName(tag string) string {
	if strings.HasPrefix(tag, "{") {
		if i := strings.Index(tag, "}"); i >= 0 {
			return tag[i+1:]
		}
	}
	if i := strings.LastIndex(tag, ":"); i >= 0 {
		return tag[i+1:]
	}
	return tag
}
