// Package stack models the layered configuration of a machine and resolves
// the quality-changes overlay that gets embedded into generated G-code.
package stack

import "github.com/printforge/gcodetag/internal/profile"

// EmptyQualityChangesID is the reserved identity of the sentinel profile
// that marks an unset quality-changes layer. It is compared by identity,
// never by content.
const EmptyQualityChangesID = "empty_quality_changes"

// PositionKey is the metadata entry carrying an extruder's integer position.
const PositionKey = "position"

// Layers groups the three profile layers every stack carries: the active
// quality profile, the quality-changes overlay and the user-changes overlay.
type Layers struct {
	Quality        *profile.Profile
	QualityChanges *profile.Profile
	UserChanges    *profile.Profile
}

// Extruder is one independently configurable extruder train. Metadata must
// contain a PositionKey entry parseable as an integer; that is a caller
// contract, not something this package defaults.
type Extruder struct {
	Layers
	Metadata map[string]string
}

// Position returns the raw position metadata entry.
func (e *Extruder) Position() string {
	return e.Metadata[PositionKey]
}

// Machine is the global configuration stack: the machine-wide profile
// layers, the machine definition identity and the per-extruder stacks.
// QualityDefinition, when set, names the definition identity used for
// quality profile lookup instead of Definition itself.
type Machine struct {
	Layers
	Name              string
	Definition        string
	QualityDefinition string
	Extruders         []*Extruder
}

// NameRegistry generates profile names that do not collide with names
// already known to the configuration registry.
type NameRegistry interface {
	UniqueName(base string) string
}

// QualityChangesFactory creates a fresh quality-changes profile seeded with
// the given quality type and name for the given machine.
type QualityChangesFactory interface {
	CreateQualityChanges(qualityType, name string, machine *Machine) *profile.Profile
}

// DefinitionResolver maps a machine stack to the canonical definition
// identity used when searching for quality profiles.
type DefinitionResolver interface {
	QualitySearchDefinition(machine *Machine) string
}

// Providers bundles the external collaborators the resolver consumes.
type Providers struct {
	Names       NameRegistry
	Quality     QualityChangesFactory
	Definitions DefinitionResolver
}
