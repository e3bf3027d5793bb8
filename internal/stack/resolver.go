package stack

import "github.com/printforge/gcodetag/internal/profile"

// Default metadata applied to flattened quality-changes profiles.
const (
	typeKey            = "type"
	qualityTypeKey     = "quality_type"
	definitionKey      = "definition"
	qualityChangesType = "quality_changes"
	defaultQualityType = "normal"
)

// Resolver produces the flattened quality-changes profile for a machine and
// for each of its extruders. When a stack's quality-changes layer is the
// empty sentinel, a new profile is synthesized through the providers,
// seeded with the machine's active quality type and a uniquified name
// derived from the active quality profile.
type Resolver struct {
	machine     *Machine
	providers   Providers
	qualityType string
	searchDef   string
}

// NewResolver creates a resolver for the given machine stack.
func NewResolver(machine *Machine, providers Providers) *Resolver {
	return &Resolver{
		machine:     machine,
		providers:   providers,
		qualityType: machine.Quality.MetadataEntry(qualityTypeKey, ""),
		searchDef:   providers.Definitions.QualitySearchDefinition(machine),
	}
}

// QualitySearchDefinition returns the definition identity the resolver
// stamps into every flattened profile.
func (r *Resolver) QualitySearchDefinition() string {
	return r.searchDef
}

// Global resolves and flattens the machine-wide quality-changes overlay.
func (r *Resolver) Global() *profile.Profile {
	flat := r.flatten(r.machine.Layers)
	r.applyDefaults(flat, r.machine.Quality)
	return flat
}

// Extruder resolves and flattens one extruder's quality-changes overlay.
// Besides the machine-level defaults, the extruder's position metadata is
// filled in when the flattened profile does not carry one.
func (r *Resolver) Extruder(ext *Extruder) *profile.Profile {
	flat := r.flatten(ext.Layers)

	quality := ext.Quality
	if quality == nil {
		quality = r.machine.Quality
	}
	r.applyDefaults(flat, quality)

	if !flat.HasMetadata(PositionKey) {
		flat.Metadata[PositionKey] = ext.Position()
	}
	return flat
}

// flatten picks the quality-changes base, synthesizing one if the layer is
// the empty sentinel, and merges the user-changes overlay onto it.
func (r *Resolver) flatten(layers Layers) *profile.Profile {
	base := layers.QualityChanges
	if base.ID == EmptyQualityChangesID {
		name := r.providers.Names.UniqueName(r.machine.Quality.Name)
		base = r.providers.Quality.CreateQualityChanges(r.qualityType, name, r.machine)
	}
	return profile.Flatten(layers.UserChanges, base)
}

// applyDefaults fills in metadata the flattened profile may be missing.
// The definition entry is always overwritten with the quality-search
// definition, the rest only when absent.
func (r *Resolver) applyDefaults(flat *profile.Profile, quality *profile.Profile) {
	if !flat.HasMetadata(typeKey) {
		flat.Metadata[typeKey] = qualityChangesType
	}
	if !flat.HasMetadata(qualityTypeKey) {
		flat.Metadata[qualityTypeKey] = quality.MetadataEntry(qualityTypeKey, defaultQualityType)
	}
	flat.Metadata[definitionKey] = r.searchDef
}
