// Package config loads machine stack descriptions from YAML files and
// validates embedded settings documents against the wire schema.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/printforge/gcodetag/internal/profile"
	"github.com/printforge/gcodetag/internal/stack"
	"github.com/printforge/gcodetag/internal/version"
)

// Stack is a machine stack loaded from a YAML file, together with the
// profile names the file already uses (so synthesized profiles can be
// given non-colliding names).
type Stack struct {
	Machine    *stack.Machine
	KnownNames []string
}

type stackFile struct {
	Requires  string         `yaml:"requires,omitempty"`
	Machine   machineSpec    `yaml:"machine"`
	Extruders []extruderSpec `yaml:"extruders,omitempty"`
}

type machineSpec struct {
	Name              string       `yaml:"name"`
	Definition        string       `yaml:"definition"`
	QualityDefinition string       `yaml:"quality_definition,omitempty"`
	Quality           *profileSpec `yaml:"quality"`
	QualityChanges    *profileSpec `yaml:"quality_changes,omitempty"`
	UserChanges       *profileSpec `yaml:"user_changes,omitempty"`
}

type extruderSpec struct {
	Position       *int         `yaml:"position"`
	Quality        *profileSpec `yaml:"quality,omitempty"`
	QualityChanges *profileSpec `yaml:"quality_changes,omitempty"`
	UserChanges    *profileSpec `yaml:"user_changes,omitempty"`
}

type profileSpec struct {
	ID         string            `yaml:"id,omitempty"`
	Name       string            `yaml:"name,omitempty"`
	Definition string            `yaml:"definition,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
	Values     map[string]any    `yaml:"values,omitempty"`
}

// LoadStack loads and validates a machine stack from a YAML file.
func LoadStack(path string) (*Stack, error) {
	// Use os.OpenRoot so a stack path cannot traverse outside its own
	// directory through symlinks.
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open stack directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open stack file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return LoadStackFromReader(file)
}

// LoadStackFromReader loads a machine stack from an io.Reader. Useful for
// testing with in-memory YAML data.
func LoadStackFromReader(r io.Reader) (*Stack, error) {
	var spec stackFile
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode stack YAML: %w", err)
	}

	if err := checkRequires(spec.Requires); err != nil {
		return nil, err
	}
	if err := validate(&spec); err != nil {
		return nil, fmt.Errorf("stack validation failed: %w", err)
	}

	return buildStack(&spec), nil
}

// checkRequires enforces the optional minimum tool version constraint a
// stack file may declare. Development builds skip the check.
func checkRequires(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", constraint, err)
	}

	current := version.Get().Version
	v, err := semver.NewVersion(current)
	if err != nil {
		slog.Debug("skipping requires check for non-semver build version", "version", current)
		return nil
	}
	if !c.Check(v) {
		return fmt.Errorf("stack file requires gcodetag %s, this is %s", constraint, current)
	}
	return nil
}

func validate(spec *stackFile) error {
	if spec.Machine.Definition == "" {
		return fmt.Errorf("machine definition cannot be empty")
	}
	if spec.Machine.Quality == nil || spec.Machine.Quality.Name == "" {
		return fmt.Errorf("machine quality profile must have a name")
	}

	positions := make(map[int]bool)
	for i, ext := range spec.Extruders {
		if ext.Position == nil {
			return fmt.Errorf("extruder %d is missing its position", i)
		}
		if positions[*ext.Position] {
			return fmt.Errorf("duplicate extruder position %d", *ext.Position)
		}
		positions[*ext.Position] = true
	}
	return nil
}

func buildStack(spec *stackFile) *Stack {
	machine := &stack.Machine{
		Name:              spec.Machine.Name,
		Definition:        spec.Machine.Definition,
		QualityDefinition: spec.Machine.QualityDefinition,
		Layers:            buildLayers(spec.Machine.Quality, spec.Machine.QualityChanges, spec.Machine.UserChanges),
	}

	names := collectNames(spec.Machine.Quality, spec.Machine.QualityChanges, spec.Machine.UserChanges)

	for _, ext := range spec.Extruders {
		quality := ext.Quality
		if quality == nil {
			quality = spec.Machine.Quality
		}
		machine.Extruders = append(machine.Extruders, &stack.Extruder{
			Layers: buildLayers(quality, ext.QualityChanges, ext.UserChanges),
			Metadata: map[string]string{
				stack.PositionKey: strconv.Itoa(*ext.Position),
			},
		})
		names = append(names, collectNames(ext.Quality, ext.QualityChanges, ext.UserChanges)...)
	}

	return &Stack{Machine: machine, KnownNames: names}
}

// buildLayers converts the three profile specs of one stack level. An
// omitted quality-changes layer becomes the empty sentinel profile and an
// omitted user-changes layer becomes an empty overlay.
func buildLayers(quality, qualityChanges, userChanges *profileSpec) stack.Layers {
	layers := stack.Layers{
		Quality:     toProfile(quality, "quality"),
		UserChanges: toProfile(userChanges, "user_changes"),
	}
	if qualityChanges == nil {
		layers.QualityChanges = profile.New(stack.EmptyQualityChangesID, "empty")
	} else {
		layers.QualityChanges = toProfile(qualityChanges, "quality_changes")
	}
	return layers
}

func toProfile(spec *profileSpec, fallbackID string) *profile.Profile {
	if spec == nil {
		return profile.New("empty_"+fallbackID, "empty")
	}

	id := spec.ID
	if id == "" {
		id = spec.Name
	}
	if id == "" {
		id = fallbackID
	}
	name := spec.Name
	if name == "" {
		name = id
	}

	p := profile.New(id, name)
	p.Definition = spec.Definition
	for k, v := range spec.Metadata {
		p.Metadata[k] = v
	}
	for k, v := range spec.Values {
		p.Settings[k] = settingString(v)
	}
	return p
}

// settingString renders a YAML scalar the way slicers store setting values,
// keeping integers free of a trailing ".0".
func settingString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func collectNames(specs ...*profileSpec) []string {
	var names []string
	for _, s := range specs {
		if s != nil && s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}
