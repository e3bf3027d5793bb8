package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_SectionsAndOrder(t *testing.T) {
	p := New("id", "Normal #2")
	p.Definition = "ultra_one"
	p.Metadata["type"] = "quality_changes"
	p.Metadata["quality_type"] = "normal"
	p.Settings["wall_count"] = "3"
	p.Settings["layer_height"] = "0.2"

	text := p.Serialize()

	assert.True(t, strings.HasPrefix(text, "[general]\n"))
	assert.Contains(t, text, "name = Normal #2\n")
	assert.Contains(t, text, "definition = ultra_one\n")
	assert.Contains(t, text, "[metadata]\n")
	assert.Contains(t, text, "[values]\n")

	// Keys are sorted within their section, so the output is stable.
	assert.Less(t,
		strings.Index(text, "layer_height = 0.2"),
		strings.Index(text, "wall_count = 3"))
	assert.Equal(t, text, p.Serialize())
}

func TestParseSerialized_RoundTrip(t *testing.T) {
	p := New("Fine Tuned", "Fine Tuned")
	p.Definition = "ultra_one"
	p.Metadata["type"] = "quality_changes"
	p.Metadata["position"] = "1"
	p.Settings["layer_height"] = "0.15"
	p.Settings["retraction_speed"] = "45"

	parsed, err := ParseSerialized(p.Serialize())
	require.NoError(t, err)

	assert.Equal(t, p.Name, parsed.Name)
	assert.Equal(t, p.Definition, parsed.Definition)
	assert.Equal(t, p.Metadata, parsed.Metadata)
	assert.Equal(t, p.Settings, parsed.Settings)
}

func TestParseSerialized_Malformed(t *testing.T) {
	_, err := ParseSerialized("[values]\nno separator here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed profile line")
}

func TestParseSerialized_ValueContainingEquals(t *testing.T) {
	p := New("p", "p")
	p.Settings["machine_start_gcode"] = "M104 S{temp} ; a = b"

	parsed, err := ParseSerialized(p.Serialize())
	require.NoError(t, err)
	assert.Equal(t, "M104 S{temp} ; a = b", parsed.Settings["machine_start_gcode"])
}
