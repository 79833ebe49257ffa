package defs

import "strings"

// ContainerTag is the root tag of a multi-definition document.
const ContainerTag = "Defs"

// DefaultSuffixes are the tag suffixes that mark a definition element.
var DefaultSuffixes = []string{"Def", "DefBase", "RulePackDef"}

// Matcher decides whether a tag names a definition element. The rule is a
// naming convention, not a grammar: a tag matches when its local name ends
// with any of the suffixes.
type Matcher struct {
	Suffixes []string
}

// DefaultMatcher returns a Matcher using DefaultSuffixes.
func DefaultMatcher() Matcher {
	return Matcher{Suffixes: append([]string(nil), DefaultSuffixes...)}
}

// Matches reports whether tag looks like a definition tag.
func (m Matcher) Matches(tag string) bool {
	local := LocalName(tag)
	for _, s := range m.Suffixes {
		if s != "" && strings.HasSuffix(local, s) {
			return true
		}
	}
	return false
}
