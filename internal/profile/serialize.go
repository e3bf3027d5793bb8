package profile

import (
	"fmt"
	"sort"
	"strings"
)

// SerializeVersion is the version stamp written into the [general] section
// of every serialized profile.
const SerializeVersion = 4

// Serialize renders the profile in the cfg text form embedded into G-code:
// a [general] section with version, name and definition, a [metadata]
// section and a [values] section. Keys within a section are sorted so the
// output is deterministic.
func (p *Profile) Serialize() string {
	var b strings.Builder

	b.WriteString("[general]\n")
	fmt.Fprintf(&b, "version = %d\n", SerializeVersion)
	fmt.Fprintf(&b, "name = %s\n", p.Name)
	fmt.Fprintf(&b, "definition = %s\n", p.Definition)

	b.WriteString("\n[metadata]\n")
	for _, key := range sortedKeys(p.Metadata) {
		fmt.Fprintf(&b, "%s = %s\n", key, p.Metadata[key])
	}

	b.WriteString("\n[values]\n")
	for _, key := range sortedKeys(p.Settings) {
		fmt.Fprintf(&b, "%s = %s\n", key, p.Settings[key])
	}

	return b.String()
}

// ParseSerialized is the inverse of Serialize. It accepts the cfg text form
// and rebuilds the profile. Lines outside a recognized section and blank
// lines are ignored.
func ParseSerialized(text string) (*Profile, error) {
	p := New("", "")
	section := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		key, value, found := strings.Cut(line, " = ")
		if !found {
			// Tolerate the terser "key=value" form.
			key, value, found = strings.Cut(line, "=")
			if !found {
				return nil, fmt.Errorf("malformed profile line %q", line)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
		}

		switch section {
		case "general":
			switch key {
			case "name":
				p.Name = value
				p.ID = value
			case "definition":
				p.Definition = value
			case "version":
				// Carried for compatibility, nothing to restore.
			}
		case "metadata":
			p.Metadata[key] = value
		case "values":
			p.Settings[key] = value
		}
	}

	return p, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
