package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// TableFormatter formats extract results as a human-readable table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the extract result as a table.
func (f *TableFormatter) Format(result *ExtractResult) error {
	if result.Source != "" {
		fmt.Fprintf(f.writer, "Source: %s\n", result.Source)
	}
	fmt.Fprintf(f.writer, "Block version: %d\n", result.Version)
	fmt.Fprintf(f.writer, "Settings: %d\n", result.SettingCount())
	fmt.Fprintln(f.writer)

	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	f.formatProfile("Global", result.Global)

	for _, ext := range result.Extruders {
		label := "Extruder"
		if ext.Position != "" {
			label = "Extruder " + ext.Position
		}
		f.formatProfile(label, ext)
	}
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))

	return nil
}

// formatProfile formats a single recovered profile.
func (f *TableFormatter) formatProfile(label string, report ProfileReport) {
	fmt.Fprintf(f.writer, "%s: %s\n", label, report.Name)
	if report.Definition != "" {
		fmt.Fprintf(f.writer, "  Definition: %s\n", report.Definition)
	}
	if qt, ok := report.Metadata["quality_type"]; ok {
		fmt.Fprintf(f.writer, "  Quality type: %s\n", qt)
	}

	if len(report.Settings) == 0 {
		fmt.Fprintln(f.writer, "  No customized settings.")
		fmt.Fprintln(f.writer)
		return
	}

	keys := make([]string, 0, len(report.Settings))
	for key := range report.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintln(f.writer, "  Settings:")
	for _, key := range keys {
		fmt.Fprintf(f.writer, "    %s = %s\n", key, report.Settings[key])
	}
	fmt.Fprintln(f.writer)
}
