package models

// Standard layer names, in the order a build processes them.
const (
	LayerOfficial = "official"
	LayerWorkshop = "workshop"
	LayerDev      = "dev"
)

// StandardLayers lists the built-in layers in processing order.
var StandardLayers = []string{LayerOfficial, LayerWorkshop, LayerDev}

// ScanRoot is a named layer and the ordered filesystem paths scanned for it.
type ScanRoot struct {
	Layer string
	Paths []string
}

// ItemRecord is one extracted definition element, flattened for browsing.
// Field order matches the serialized layout of items.<layer>.json.
type ItemRecord struct {
	DefType    string              `json:"defType"`
	DefName    string              `json:"defName"`
	ModDisplay string              `json:"modDisplay"`
	Layer      string              `json:"layer"`
	Path       string              `json:"path"`    // Relative to the mod root, "/" separated
	AbsPath    string              `json:"absPath"` // Absolute, "/" separated
	XML        string              `json:"xml"`
	TagMap     map[string][]string `json:"tagMap"`
}

// IsStandardLayer reports whether name is one of StandardLayers.
func IsStandardLayer(name string) bool {
	for _, l := range StandardLayers {
		if l == name {
			return true
		}
	}
	return false
}

// ValidLayerName reports whether name can be used as a layer name. Layer
// names become part of an output file name, so only lowercase letters,
// digits, '-' and '_' are accepted.
func ValidLayerName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ItemsFileName returns the output file name of a layer.
func ItemsFileName(layer string) string {
	return "items." + layer + ".json"
}

// MetaFileName is the output file of the run-level schema.
const MetaFileName = "rim_meta.json"
