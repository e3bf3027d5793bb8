package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"

	"github.com/printforge/gcodetag/internal/config"
	"github.com/printforge/gcodetag/internal/output"
	"github.com/printforge/gcodetag/internal/profile"
	"github.com/printforge/gcodetag/internal/settings"
)

var (
	extractFormat string
	extractOut    string
	extractFilter string
)

// settingEnv is the expression environment for --filter, one instance per
// setting entry.
type settingEnv struct {
	Key      string `expr:"key"`
	Value    string `expr:"value"`
	Profile  string `expr:"profile"`
	Position string `expr:"position"`
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file.gcode>",
	Short: "Recover the settings block embedded in a G-code file",
	Long: `Decode the ;SETTING_ comment block of a G-code file back into the
flattened quality profiles it was built from.

Filtering:
  --filter is a boolean expression evaluated per setting entry, e.g.
  --filter "key startsWith 'layer'"
  --filter "profile == 'Normal' && value != '0'"
  --filter "position == '1'"`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFormat, "format", "table", "Output format: table, json, yaml")
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().StringVar(&extractFilter, "filter", "", "Setting filter expression")
}

// runExtract implements the core logic for the extract command
func runExtract(path string) error {
	result, err := extractResult(path)
	if err != nil {
		return err
	}

	if extractFilter != "" {
		program, err := expr.Compile(extractFilter,
			expr.Env(settingEnv{}),
			expr.AsBool())
		if err != nil {
			return fmt.Errorf("invalid --filter expression: %w\nExample: key startsWith 'layer'", err)
		}
		if err := applyFilter(result, program); err != nil {
			return err
		}
	}

	dst := io.Writer(os.Stdout)
	if extractOut != "" {
		file, err := os.Create(extractOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		dst = file
	}

	switch extractFormat {
	case "json":
		return output.NewJSONFormatter(dst, true).Format(result)
	case "yaml":
		return output.NewYAMLFormatter(dst).Format(result)
	case "table":
		return output.NewTableFormatter(dst).Format(result)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", extractFormat)
	}
}

// extractResult decodes, schema-validates and parses the settings block of
// one G-code file.
func extractResult(path string) (*output.ExtractResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	jsonText, blockVersion, found, err := settings.Decode(string(raw))
	if err != nil {
		return nil, fmt.Errorf("settings block in %s is corrupted: %w", path, err)
	}
	if !found {
		return nil, fmt.Errorf("no settings block found in %s", path)
	}

	if err := config.ValidateDocument([]byte(jsonText)); err != nil {
		return nil, fmt.Errorf("settings block in %s: %w", path, err)
	}

	var doc settings.Document
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings document: %w", err)
	}

	global, err := profile.ParseSerialized(doc.GlobalQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to parse global profile: %w", err)
	}

	var extruders []*profile.Profile
	for i, serialized := range doc.ExtruderQuality {
		ext, err := profile.ParseSerialized(serialized)
		if err != nil {
			return nil, fmt.Errorf("failed to parse extruder profile %d: %w", i, err)
		}
		extruders = append(extruders, ext)
	}

	return output.NewExtractResult(path, blockVersion, global, extruders), nil
}

func applyFilter(result *output.ExtractResult, program *vm.Program) error {
	var runErr error
	result.FilterSettings(func(profileName, position, key, value string) bool {
		if runErr != nil {
			return false
		}
		out, err := expr.Run(program, settingEnv{
			Key:      key,
			Value:    value,
			Profile:  profileName,
			Position: position,
		})
		if err != nil {
			runErr = fmt.Errorf("filter evaluation failed: %w", err)
			return false
		}
		keep, _ := out.(bool)
		return keep
	})
	return runErr
}
