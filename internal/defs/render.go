package defs

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Render returns a pretty-printed rendering of el and its descendants,
// indented by two spaces, without an XML declaration. If pretty printing
// fails the compact rendering is returned instead.
func Render(el *Element) string {
	if s, err := renderPretty(el); err == nil {
		return s
	}
	return RenderCompact(el)
}

func renderPretty(el *Element) (string, error) {
	var b strings.Builder
	if err := writePretty(&b, el, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writePretty lays el out like xml.Encoder with a two-space indent: text
// stays inline with the start tag, children go on their own lines and
// tails follow the child's end tag. Only markup characters are escaped so
// that quotes and tabs stay readable.
func writePretty(b *strings.Builder, el *Element, depth int) error {
	if el.Name == "" {
		return errors.New("element with no name")
	}
	b.WriteByte('<')
	b.WriteString(el.Name)
	for _, a := range el.Attrs {
		if a.Name == "" {
			return fmt.Errorf("attribute with no name on %s", el.Name)
		}
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		attrEscaper.WriteString(b, a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	textEscaper.WriteString(b, strings.TrimSpace(el.Text))

	for _, ch := range el.Children {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth+1))
		if err := writePretty(b, ch, depth+1); err != nil {
			return err
		}
		textEscaper.WriteString(b, strings.TrimSpace(ch.Tail))
	}
	if len(el.Children) > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth))
	}

	b.WriteString("</")
	b.WriteString(el.Name)
	b.WriteByte('>')
	return nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;")
)

// RenderCompact returns el and its descendants as non-indented text. It
// writes only to an in-memory buffer and cannot fail.
func RenderCompact(el *Element) string {
	var b strings.Builder
	writeCompact(&b, el)
	return b.String()
}

func writeCompact(b *strings.Builder, el *Element) {
	b.WriteByte('<')
	b.WriteString(el.Name)
	for _, a := range el.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		escape(b, a.Value)
		b.WriteByte('"')
	}
	if el.Text == "" && len(el.Children) == 0 {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
	escape(b, el.Text)
	for _, ch := range el.Children {
		writeCompact(b, ch)
		escape(b, ch.Tail)
	}
	b.WriteString("</")
	b.WriteString(el.Name)
	b.WriteByte('>')
}

func escape(b *strings.Builder, s string) {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	b.Write(buf.Bytes())
}
