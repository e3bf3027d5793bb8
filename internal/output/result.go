// Package output renders extracted settings blocks for human and machine
// consumption.
package output

import (
	"github.com/printforge/gcodetag/internal/profile"
	"github.com/printforge/gcodetag/internal/stack"
)

// ExtractResult is the decoded content of one embedded settings block.
type ExtractResult struct {
	Source    string          `json:"source,omitempty" yaml:"source,omitempty"`
	Version   int             `json:"version" yaml:"version"`
	Global    ProfileReport   `json:"global_quality" yaml:"global_quality"`
	Extruders []ProfileReport `json:"extruder_quality,omitempty" yaml:"extruder_quality,omitempty"`
}

// ProfileReport is one flattened profile recovered from the block.
type ProfileReport struct {
	Name       string            `json:"name" yaml:"name"`
	Definition string            `json:"definition,omitempty" yaml:"definition,omitempty"`
	Position   string            `json:"position,omitempty" yaml:"position,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Settings   map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// NewExtractResult assembles a result from the parsed profiles of a block.
func NewExtractResult(source string, version int, global *profile.Profile, extruders []*profile.Profile) *ExtractResult {
	result := &ExtractResult{
		Source:  source,
		Version: version,
		Global:  newProfileReport(global),
	}
	for _, ext := range extruders {
		result.Extruders = append(result.Extruders, newProfileReport(ext))
	}
	return result
}

func newProfileReport(p *profile.Profile) ProfileReport {
	return ProfileReport{
		Name:       p.Name,
		Definition: p.Definition,
		Position:   p.Metadata[stack.PositionKey],
		Metadata:   p.Metadata,
		Settings:   p.Settings,
	}
}

// SettingCount returns the number of settings across all profiles.
func (r *ExtractResult) SettingCount() int {
	n := len(r.Global.Settings)
	for _, ext := range r.Extruders {
		n += len(ext.Settings)
	}
	return n
}

// FilterSettings keeps only the settings the predicate accepts. The
// predicate sees the owning profile's name and position ("" for the global
// profile) along with each setting key and value.
func (r *ExtractResult) FilterSettings(keep func(profileName, position, key, value string) bool) {
	r.Global.Settings = filterMap(r.Global.Name, "", r.Global.Settings, keep)
	for i := range r.Extruders {
		ext := &r.Extruders[i]
		ext.Settings = filterMap(ext.Name, ext.Position, ext.Settings, keep)
	}
}

func filterMap(name, position string, settings map[string]string, keep func(string, string, string, string) bool) map[string]string {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		if keep(name, position, k, v) {
			out[k] = v
		}
	}
	return out
}
