package defs

import (
	"fmt"
	"strings"
)

// DocumentError reports a document that could not be read or parsed.
// It is scoped to one document: callers skip the document and continue.
type DocumentError struct {
	Path    string
	Message string
	Err     error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Extractor selects definition elements from parsed documents.
type Extractor struct {
	matcher   Matcher
	container string
}

// NewExtractor creates an Extractor using the given naming predicate.
// A Matcher without suffixes falls back to DefaultSuffixes.
func NewExtractor(m Matcher) *Extractor {
	if len(m.Suffixes) == 0 {
		m = DefaultMatcher()
	}
	return &Extractor{matcher: m, container: ContainerTag}
}

// ExtractFile parses the document at path and returns its definition
// elements. A document of any other shape yields no elements and no error.
// Read and parse failures are returned as *DocumentError.
func (x *Extractor) ExtractFile(path string) ([]*Element, error) {
	root, err := ParseFile(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Message: fmt.Sprintf("parse error: %v", err), Err: err}
	}
	return x.Extract(root), nil
}

// Extract returns the definition elements of an already parsed document.
func (x *Extractor) Extract(root *Element) []*Element {
	if root == nil {
		return nil
	}
	if root.Name == x.container {
		var out []*Element
		for _, ch := range root.Children {
			if x.matcher.Matches(ch.Name) {
				out = append(out, ch)
			}
		}
		return out
	}
	if x.matcher.Matches(root.Name) {
		return []*Element{root}
	}
	return nil
}

// DefName returns the identity of a definition element: the text of its
// defName child, else its Name attribute, else "".
func DefName(el *Element) string {
	if dn := el.Child("defName"); dn != nil {
		if t := strings.TrimSpace(dn.Text); t != "" {
			return t
		}
	}
	if name, ok := el.Attr("Name"); ok {
		if t := strings.TrimSpace(name); t != "" {
			return t
		}
	}
	return ""
}
