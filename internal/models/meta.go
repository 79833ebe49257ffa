package models

// UnknownType is the placeholder written for every member type.
const UnknownType = "unknown"

// Meta is the run-level schema and version report (rim_meta.json).
type Meta struct {
	Version  string             `json:"version"`
	DefTypes map[string]DefType `json:"defTypes"`
	Enums    map[string]any     `json:"enums"` // Reserved, always empty
	Types    map[string]any     `json:"types"` // Reserved, always empty
}

// DefType describes the members observed for one definition type.
type DefType struct {
	FQCN    string            `json:"fqcn"`
	Members map[string]Member `json:"members"`
}

// Member is the best-known shape of one member of a definition type.
type Member struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
}

// NewMeta returns an empty Meta for the given version.
func NewMeta(version string) Meta {
	return Meta{
		Version:  version,
		DefTypes: make(map[string]DefType),
		Enums:    make(map[string]any),
		Types:    make(map[string]any),
	}
}
