package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/gcodetag/internal/profile"
)

type fakeNames struct {
	requested []string
}

func (f *fakeNames) UniqueName(base string) string {
	f.requested = append(f.requested, base)
	return base + " #2"
}

type fakeFactory struct {
	created []*profile.Profile
}

func (f *fakeFactory) CreateQualityChanges(qualityType, name string, _ *Machine) *profile.Profile {
	p := profile.New("synthesized", name)
	if qualityType != "" {
		p.Metadata["quality_type"] = qualityType
	}
	f.created = append(f.created, p)
	return p
}

type fakeDefinitions struct{}

func (fakeDefinitions) QualitySearchDefinition(machine *Machine) string {
	if machine.QualityDefinition != "" {
		return machine.QualityDefinition
	}
	return machine.Definition
}

func testMachine() (*Machine, *fakeNames, *fakeFactory, Providers) {
	quality := profile.New("ultra_normal", "Normal")
	quality.Metadata["quality_type"] = "normal"

	machine := &Machine{
		Name:       "Ultra One",
		Definition: "ultra_one",
		Layers: Layers{
			Quality:        quality,
			QualityChanges: profile.New(EmptyQualityChangesID, "empty"),
			UserChanges:    profile.New("user", "User changes"),
		},
	}

	names := &fakeNames{}
	factory := &fakeFactory{}
	providers := Providers{Names: names, Quality: factory, Definitions: fakeDefinitions{}}
	return machine, names, factory, providers
}

func TestResolver_SynthesizesWhenSentinel(t *testing.T) {
	machine, names, factory, providers := testMachine()
	machine.UserChanges.Settings["layer_height"] = "0.2"

	flat := NewResolver(machine, providers).Global()

	require.Len(t, factory.created, 1, "sentinel quality changes must be synthesized")
	assert.Equal(t, []string{"Normal"}, names.requested, "name is derived from the active quality")
	assert.Equal(t, "Normal #2", factory.created[0].Name)
	assert.Equal(t, "0.2", flat.Settings["layer_height"])
}

func TestResolver_KeepsExistingQualityChanges(t *testing.T) {
	machine, _, factory, providers := testMachine()
	qc := profile.New("my_changes", "My changes")
	qc.Settings["wall_count"] = "4"
	machine.QualityChanges = qc

	flat := NewResolver(machine, providers).Global()

	assert.Empty(t, factory.created, "existing quality changes must be used as-is")
	assert.Equal(t, "4", flat.Settings["wall_count"])
	assert.Equal(t, "My changes", flat.Name)
}

func TestResolver_DefaultMetadata(t *testing.T) {
	machine, _, _, providers := testMachine()

	flat := NewResolver(machine, providers).Global()

	assert.Equal(t, "quality_changes", flat.Metadata["type"])
	assert.Equal(t, "normal", flat.Metadata["quality_type"])
	assert.Equal(t, "ultra_one", flat.Metadata["definition"])
}

func TestResolver_QualityTypeDefaultsToNormal(t *testing.T) {
	machine, _, _, providers := testMachine()
	delete(machine.Quality.Metadata, "quality_type")

	flat := NewResolver(machine, providers).Global()

	assert.Equal(t, "normal", flat.Metadata["quality_type"])
}

func TestResolver_DefinitionAlwaysOverwritten(t *testing.T) {
	machine, _, _, providers := testMachine()
	machine.QualityDefinition = "ultra_base"
	qc := profile.New("my_changes", "My changes")
	qc.Metadata["definition"] = "stale_definition"
	machine.QualityChanges = qc

	flat := NewResolver(machine, providers).Global()

	assert.Equal(t, "ultra_base", flat.Metadata["definition"],
		"definition must be overwritten even when present")
}

func TestResolver_ExtruderPositionFixup(t *testing.T) {
	machine, _, _, providers := testMachine()
	ext := &Extruder{
		Layers: Layers{
			Quality:        machine.Quality,
			QualityChanges: profile.New(EmptyQualityChangesID, "empty"),
			UserChanges:    profile.New("ext_user", "Extruder user changes"),
		},
		Metadata: map[string]string{PositionKey: "1"},
	}
	machine.Extruders = []*Extruder{ext}

	flat := NewResolver(machine, providers).Extruder(ext)

	assert.Equal(t, "1", flat.Metadata[PositionKey])
	assert.Equal(t, "quality_changes", flat.Metadata["type"])
}

func TestResolver_ExtruderKeepsExplicitPosition(t *testing.T) {
	machine, _, _, providers := testMachine()
	qc := profile.New("ext_changes", "Extruder changes")
	qc.Metadata[PositionKey] = "0"
	ext := &Extruder{
		Layers: Layers{
			Quality:        machine.Quality,
			QualityChanges: qc,
			UserChanges:    profile.New("ext_user", "Extruder user changes"),
		},
		Metadata: map[string]string{PositionKey: "1"},
	}

	flat := NewResolver(machine, providers).Extruder(ext)

	assert.Equal(t, "0", flat.Metadata[PositionKey],
		"an authored position entry must not be overwritten")
}
