package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/printforge/gcodetag/internal/config"
	"github.com/printforge/gcodetag/internal/settings"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file.gcode>",
	Short: "Check the integrity of an embedded settings block",
	Long: `Verify that the ;SETTING_ comment block of a G-code file is intact:
every line fits the 80 character budget, the payload decodes, the decoded
document matches the wire schema and each serialized profile parses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runVerify(args[0])
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// runVerify implements the core logic for the verify command
func runVerify(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(raw)

	lines := settings.BlockLines(text)
	if len(lines) == 0 {
		return fmt.Errorf("no settings block found in %s", path)
	}

	for i, line := range lines {
		if len(line) > settings.LineWidth {
			return fmt.Errorf("settings line %d is %d characters, limit is %d", i+1, len(line), settings.LineWidth)
		}
		if i < len(lines)-1 && len(line) != settings.LineWidth {
			return fmt.Errorf("settings line %d is short (%d characters); only the last line may be", i+1, len(line))
		}
	}

	jsonText, blockVersion, _, err := settings.Decode(text)
	if err != nil {
		return fmt.Errorf("settings block does not decode: %w", err)
	}

	if err := config.ValidateDocument([]byte(jsonText)); err != nil {
		return err
	}

	result, err := extractResult(path)
	if err != nil {
		return err
	}
	countProfiles := 1 + len(result.Extruders)

	// Round trip: re-encoding the decoded document must reproduce the
	// embedded block byte for byte.
	reencoded := settings.Encode(jsonText, blockVersion, settings.LineWidth)
	if reencoded != strings.Join(lines, "\n")+"\n" {
		return fmt.Errorf("settings block is not a canonical encoding of its document")
	}

	fmt.Printf("%s: settings block OK\n", path)
	fmt.Printf("  version:  %d\n", blockVersion)
	fmt.Printf("  lines:    %d\n", len(lines))
	fmt.Printf("  profiles: %d\n", countProfiles)
	fmt.Printf("  settings: %d\n", result.SettingCount())
	return nil
}
