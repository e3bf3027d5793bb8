package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/gcodetag/internal/profile"
)

func testResult() *ExtractResult {
	global := profile.New("Normal #2", "Normal #2")
	global.Definition = "ultra_one"
	global.Metadata["quality_type"] = "normal"
	global.Settings["layer_height"] = "0.2"
	global.Settings["wall_count"] = "3"

	ext := profile.New("Normal #2", "Normal #2")
	ext.Metadata["position"] = "0"
	ext.Settings["fan_speed"] = "100"

	return NewExtractResult("part.gcode", 3, global, []*profile.Profile{ext})
}

func TestExtractResult_SettingCount(t *testing.T) {
	assert.Equal(t, 3, testResult().SettingCount())
}

func TestExtractResult_FilterSettings(t *testing.T) {
	result := testResult()

	result.FilterSettings(func(_, _, key, _ string) bool {
		return strings.HasPrefix(key, "layer")
	})

	assert.Equal(t, map[string]string{"layer_height": "0.2"}, result.Global.Settings)
	assert.Empty(t, result.Extruders[0].Settings)
}

func TestExtractResult_FilterByPosition(t *testing.T) {
	result := testResult()

	result.FilterSettings(func(_, position, _, _ string) bool {
		return position == "0"
	})

	assert.Empty(t, result.Global.Settings, "global settings have no position")
	assert.Len(t, result.Extruders[0].Settings, 1)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).Format(testResult()))

	var decoded ExtractResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Version)
	assert.Equal(t, "0.2", decoded.Global.Settings["layer_height"])
	require.Len(t, decoded.Extruders, 1)
	assert.Equal(t, "0", decoded.Extruders[0].Position)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(testResult()))

	out := buf.String()
	assert.Contains(t, out, "version: 3")
	assert.Contains(t, out, "layer_height:")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(testResult()))

	out := buf.String()
	assert.Contains(t, out, "Source: part.gcode")
	assert.Contains(t, out, "Block version: 3")
	assert.Contains(t, out, "Global: Normal #2")
	assert.Contains(t, out, "Extruder 0: Normal #2")
	assert.Contains(t, out, "layer_height = 0.2")
	assert.Contains(t, out, "fan_speed = 100")
}

func TestTableFormatter_NoSettings(t *testing.T) {
	global := profile.New("Normal", "Normal")
	result := NewExtractResult("", 3, global, nil)

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(result))
	assert.Contains(t, buf.String(), "No customized settings.")
}
