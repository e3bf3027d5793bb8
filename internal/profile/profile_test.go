package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_OverlayWinsOnConflict(t *testing.T) {
	base := New("base", "Base")
	base.Settings["layer_height"] = "0.1"
	base.Settings["wall_count"] = "3"

	overlay := New("overlay", "Overlay")
	overlay.Settings["layer_height"] = "0.2"
	overlay.Settings["infill_density"] = "20"

	flat := Flatten(overlay, base)

	assert.Equal(t, "0.2", flat.Settings["layer_height"], "overlay value must win")
	assert.Equal(t, "3", flat.Settings["wall_count"], "base-only keys must survive")
	assert.Equal(t, "20", flat.Settings["infill_density"], "overlay-only keys must survive")
	assert.Len(t, flat.Settings, 3)
}

func TestFlatten_MetadataComesFromBase(t *testing.T) {
	base := New("base", "Base")
	base.Metadata["quality_type"] = "normal"
	base.Metadata["type"] = "quality_changes"

	overlay := New("overlay", "Overlay")
	overlay.Metadata["quality_type"] = "draft"
	overlay.Metadata["extra"] = "ignored"

	flat := Flatten(overlay, base)

	assert.Equal(t, "normal", flat.Metadata["quality_type"])
	assert.Equal(t, "quality_changes", flat.Metadata["type"])
	assert.NotContains(t, flat.Metadata, "extra", "overlay metadata must not leak in")
	assert.Equal(t, "Base", flat.Name, "identity comes from base")
}

func TestFlatten_MetadataIsACopy(t *testing.T) {
	base := New("base", "Base")
	base.Metadata["quality_type"] = "normal"

	flat := Flatten(New("overlay", "Overlay"), base)
	flat.Metadata["quality_type"] = "draft"

	assert.Equal(t, "normal", base.Metadata["quality_type"], "base must not be mutated")
}

func TestFlatten_DefinitionFromOverlayOnly(t *testing.T) {
	base := New("base", "Base")
	base.Definition = "machine_base"

	overlay := New("overlay", "Overlay")
	overlay.Definition = "machine_overlay"

	flat := Flatten(overlay, base)
	assert.Equal(t, "machine_overlay", flat.Definition)

	overlay.Definition = ""
	flat = Flatten(overlay, base)
	assert.Empty(t, flat.Definition, "base definition is never inherited")
}

func TestFlatten_EmptyProfiles(t *testing.T) {
	flat := Flatten(New("", ""), New("", ""))
	require.NotNil(t, flat)
	assert.Empty(t, flat.Settings)
	assert.Empty(t, flat.Metadata)
}

func TestClone_Independent(t *testing.T) {
	p := New("id", "Name")
	p.Metadata["type"] = "quality_changes"
	p.Settings["layer_height"] = "0.2"

	c := p.Clone()
	c.Metadata["type"] = "other"
	c.Settings["layer_height"] = "0.3"

	assert.Equal(t, "quality_changes", p.Metadata["type"])
	assert.Equal(t, "0.2", p.Settings["layer_height"])
}
