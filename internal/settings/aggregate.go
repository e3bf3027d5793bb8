// Package settings aggregates a machine's flattened quality-changes
// profiles into the serializable settings document and encodes that
// document as the ;SETTING_ comment block embedded into G-code.
package settings

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/printforge/gcodetag/internal/stack"
)

// Document is the wire form of the embedded settings: the serialized
// machine-wide flattened profile plus one serialized profile per extruder,
// in ascending position order.
type Document struct {
	GlobalQuality   string   `json:"global_quality"`
	ExtruderQuality []string `json:"extruder_quality,omitempty"`
}

// Aggregate resolves and serializes the machine's flattened profiles into
// one document. Extruders are visited in strictly ascending order of their
// integer position metadata; a position that does not parse as an integer
// is a contract violation and yields an error.
//
// When no profile carries any setting at all there is nothing worth
// embedding and Aggregate returns (nil, nil); callers must skip encoding
// entirely in that case.
func Aggregate(machine *stack.Machine, providers stack.Providers) (*Document, error) {
	resolver := stack.NewResolver(machine, providers)

	global := resolver.Global()
	doc := &Document{GlobalQuality: global.Serialize()}

	allKeys := make(map[string]struct{}, len(global.Settings))
	for key := range global.Settings {
		allKeys[key] = struct{}{}
	}

	extruders, err := byPosition(machine.Extruders)
	if err != nil {
		return nil, err
	}
	for _, ext := range extruders {
		flat := resolver.Extruder(ext)
		doc.ExtruderQuality = append(doc.ExtruderQuality, flat.Serialize())
		for key := range flat.Settings {
			allKeys[key] = struct{}{}
		}
	}

	if len(allKeys) == 0 {
		return nil, nil
	}
	return doc, nil
}

// byPosition returns the extruders sorted by their integer position
// metadata, leaving the input slice untouched.
func byPosition(extruders []*stack.Extruder) ([]*stack.Extruder, error) {
	type positioned struct {
		ext *stack.Extruder
		pos int
	}

	ordered := make([]positioned, 0, len(extruders))
	for _, ext := range extruders {
		pos, err := strconv.Atoi(ext.Position())
		if err != nil {
			return nil, fmt.Errorf("extruder has no integer position metadata: %w", err)
		}
		ordered = append(ordered, positioned{ext: ext, pos: pos})
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].pos < ordered[j].pos })

	out := make([]*stack.Extruder, len(ordered))
	for i, p := range ordered {
		out[i] = p.ext
	}
	return out, nil
}
