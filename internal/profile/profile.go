// Package profile defines the configuration profile model and the flatten
// operation that merges an overlay profile onto a base profile.
package profile

// Profile is a named, identified bundle of metadata and setting values.
// Settings map a setting key to its serialized value. Definition holds the
// identity of the machine definition the profile applies to; empty means
// unset.
type Profile struct {
	ID         string
	Name       string
	Definition string
	Metadata   map[string]string
	Settings   map[string]string
}

// New creates an empty profile with the given identity.
func New(id, name string) *Profile {
	return &Profile{
		ID:       id,
		Name:     name,
		Metadata: make(map[string]string),
		Settings: make(map[string]string),
	}
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	return &Profile{
		ID:         p.ID,
		Name:       p.Name,
		Definition: p.Definition,
		Metadata:   copyMap(p.Metadata),
		Settings:   copyMap(p.Settings),
	}
}

// MetadataEntry returns the metadata value for key, or fallback when the
// entry is absent.
func (p *Profile) MetadataEntry(key, fallback string) string {
	if v, ok := p.Metadata[key]; ok {
		return v
	}
	return fallback
}

// HasMetadata reports whether the metadata entry exists.
func (p *Profile) HasMetadata(key string) bool {
	_, ok := p.Metadata[key]
	return ok
}

// Flatten merges overlay onto base and returns a new profile.
//
// The result takes its identity and a deep copy of its metadata from base.
// The definition reference comes from overlay when overlay has one, and is
// left unset otherwise. Settings are copied from base first and then from
// overlay, so overlay values win on conflicting keys. Neither input is
// mutated.
func Flatten(overlay, base *Profile) *Profile {
	flat := &Profile{
		ID:       base.Name,
		Name:     base.Name,
		Metadata: copyMap(base.Metadata),
		Settings: make(map[string]string, len(base.Settings)+len(overlay.Settings)),
	}

	if overlay.Definition != "" {
		flat.Definition = overlay.Definition
	}

	for key, value := range base.Settings {
		flat.Settings[key] = value
	}
	for key, value := range overlay.Settings {
		flat.Settings[key] = value
	}

	return flat
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
