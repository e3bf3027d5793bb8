// Package registry provides local implementations of the configuration
// collaborators the stack resolver consumes: unique profile naming,
// quality-changes synthesis and quality-search definition lookup.
package registry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/printforge/gcodetag/internal/profile"
	"github.com/printforge/gcodetag/internal/stack"
)

// Names generates profile names unique within a set of known names, in the
// "Name #2", "Name #3" style.
type Names struct {
	known map[string]struct{}
}

// NewNames creates a registry seeded with the given known names.
func NewNames(known ...string) *Names {
	n := &Names{known: make(map[string]struct{}, len(known))}
	for _, name := range known {
		n.known[name] = struct{}{}
	}
	return n
}

// Add marks a name as taken.
func (n *Names) Add(name string) {
	n.known[name] = struct{}{}
}

// UniqueName returns base when it is free, otherwise the first free
// "base #N" variant starting at 2. The returned name is recorded as taken.
func (n *Names) UniqueName(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := n.known[name]; !taken {
			n.known[name] = struct{}{}
			return name
		}
		name = fmt.Sprintf("%s #%d", base, i)
	}
}

// QualityFactory synthesizes quality-changes profiles for stacks whose
// quality-changes layer is the empty sentinel.
type QualityFactory struct{}

// CreateQualityChanges builds a fresh quality-changes profile with a
// random identity, seeded with the given quality type. The type metadata
// is left for the resolver's default fixups so synthesized and authored
// profiles go through the same path.
func (QualityFactory) CreateQualityChanges(qualityType, name string, machine *stack.Machine) *profile.Profile {
	p := profile.New(uuid.NewString(), name)
	if qualityType != "" {
		p.Metadata["quality_type"] = qualityType
	}
	p.Definition = machine.Definition
	return p
}

// Definitions resolves the definition identity used for quality lookup.
type Definitions struct{}

// QualitySearchDefinition returns the machine's quality-definition identity
// when the machine declares one, and the machine definition itself
// otherwise.
func (Definitions) QualitySearchDefinition(machine *stack.Machine) string {
	if machine.QualityDefinition != "" {
		return machine.QualityDefinition
	}
	return machine.Definition
}

// Providers bundles the local implementations into the provider set the
// resolver expects, seeding the name registry with the given known names.
func Providers(knownNames ...string) stack.Providers {
	return stack.Providers{
		Names:       NewNames(knownNames...),
		Quality:     QualityFactory{},
		Definitions: Definitions{},
	}
}
