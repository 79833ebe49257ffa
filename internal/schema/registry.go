package schema

import (
	"github.com/harrison/rimdefs/internal/defs"
	"github.com/harrison/rimdefs/internal/models"
)

// Registry accumulates member kinds per definition type for one build
// run. It has a single writer and is not safe for concurrent use.
type Registry struct {
	types map[string]map[string]Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]map[string]Kind)}
}

// Accumulate records every direct child of el as a member of defType.
// A member seen before is only updated when the new kind is strictly
// higher than the recorded one.
func (r *Registry) Accumulate(defType string, el *defs.Element) {
	members, ok := r.types[defType]
	if !ok {
		members = make(map[string]Kind)
		r.types[defType] = members
	}
	for _, ch := range el.Children {
		r.observe(members, ch.Name, Classify(ch))
	}
}

func (r *Registry) observe(members map[string]Kind, name string, kind Kind) {
	if prior, ok := members[name]; ok && kind <= prior {
		return
	}
	members[name] = kind
}

// Merge folds other into r with the same monotonic rule as Accumulate.
func (r *Registry) Merge(other *Registry) {
	for defType, theirs := range other.types {
		members, ok := r.types[defType]
		if !ok {
			members = make(map[string]Kind, len(theirs))
			r.types[defType] = members
		}
		for name, kind := range theirs {
			r.observe(members, name, kind)
		}
	}
}

// Kind returns the recorded kind of a member.
func (r *Registry) Kind(defType, member string) (Kind, bool) {
	k, ok := r.types[defType][member]
	return k, ok
}

// Len returns the number of definition types observed.
func (r *Registry) Len() int {
	return len(r.types)
}

// Meta returns the schema document for version. encoding/json writes map
// keys sorted, so the document is deterministic.
func (r *Registry) Meta(version string) models.Meta {
	meta := models.NewMeta(version)
	for defType, members := range r.types {
		dt := models.DefType{FQCN: defType, Members: make(map[string]models.Member, len(members))}
		for name, kind := range members {
			dt.Members[name] = models.Member{Kind: kind.String(), Type: models.UnknownType}
		}
		meta.DefTypes[defType] = dt
	}
	return meta
}

// Classify infers the kind of a member element from its own children.
// The checks run in a fixed order and the first that applies wins:
// no children is Scalar; children that are all li form a Map when any li
// holds a key and value pair, else a List; a member that itself holds key
// and value is a Map, as is one with any such child; anything else is a
// Class.
func Classify(member *defs.Element) Kind {
	if len(member.Children) == 0 {
		return Scalar
	}
	if allListItems(member.Children) {
		for _, li := range member.Children {
			if isPair(li) {
				return Map
			}
		}
		return List
	}
	if isPair(member) {
		return Map
	}
	for _, ch := range member.Children {
		if isPair(ch) {
			return Map
		}
	}
	return Class
}

func allListItems(children []*defs.Element) bool {
	for _, ch := range children {
		if ch.Name != "li" {
			return false
		}
	}
	return true
}

func isPair(el *defs.Element) bool {
	return el.HasChild("key") && el.HasChild("value")
}
