package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/printforge/gcodetag/internal/config"
	"github.com/printforge/gcodetag/internal/registry"
	"github.com/printforge/gcodetag/internal/stack"
	"github.com/printforge/gcodetag/internal/writer"
)

var (
	stackPath    string
	embedOut     string
	writeInPlace bool
	assumeYes    bool
)

// maxConcurrentFiles bounds how many G-code files are rewritten at once.
const maxConcurrentFiles = 4

// embedCmd represents the embed command
var embedCmd = &cobra.Command{
	Use:   "embed <file.gcode> [file.gcode ...]",
	Short: "Append the machine's customized settings to sliced G-code",
	Long: `Write each G-code file back out with the machine's customized quality
settings appended as a ;SETTING_ comment block. Files that already carry a
settings block are passed through unchanged.

The machine stack is described by a YAML file naming the quality,
quality-changes and user-changes profiles of the machine and each extruder.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmbed(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVar(&stackPath, "stack", "", "Machine stack YAML file (required)")
	embedCmd.Flags().StringVarP(&embedOut, "output", "o", "", "Output file path (single input only, default: stdout)")
	embedCmd.Flags().BoolVar(&writeInPlace, "write", false, "Rewrite the input files in place")
	embedCmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the in-place rewrite confirmation")
	_ = embedCmd.MarkFlagRequired("stack")
}

// runEmbed implements the core logic for the embed command
func runEmbed(ctx context.Context, paths []string) error {
	if embedOut != "" && len(paths) > 1 {
		return fmt.Errorf("--output accepts a single input file, got %d", len(paths))
	}
	if len(paths) > 1 && !writeInPlace {
		return fmt.Errorf("multiple input files require --write")
	}
	if embedOut != "" && writeInPlace {
		return fmt.Errorf("--output and --write are mutually exclusive")
	}

	slog.Info("loading machine stack", "path", stackPath)
	loaded, err := config.LoadStack(stackPath)
	if err != nil {
		return fmt.Errorf("failed to load machine stack: %w", err)
	}
	slog.Info("machine stack loaded",
		"machine", loaded.Machine.Name,
		"extruders", len(loaded.Machine.Extruders))

	if writeInPlace && !assumeYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Rewrite %d file(s) in place?", len(paths))).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			slog.Info("aborted, no files written")
			return nil
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for _, path := range paths {
		g.Go(func() error {
			return embedFile(path, loaded)
		})
	}
	return g.Wait()
}

// embedFile runs the settings writer over one G-code file. Each file gets
// its own provider set so synthesized profile names stay independent.
func embedFile(path string, loaded *config.Stack) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	w := writer.New(
		fileSource{content: string(raw)},
		activeStack{machine: loaded.Machine},
		registry.Providers(loaded.KnownNames...),
		slog.Default(),
	)

	var buf bytes.Buffer
	if err := w.Write(&buf, writer.TextMode, 0); err != nil {
		return fmt.Errorf("failed to embed settings in %s: %w", path, err)
	}

	switch {
	case writeInPlace:
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to rewrite %s: %w", path, err)
		}
		slog.Info("rewrote gcode with settings block", "path", path)
	case embedOut != "":
		if err := os.WriteFile(embedOut, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", embedOut, err)
		}
		slog.Info("wrote gcode with settings block", "path", embedOut)
	default:
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

// fileSource serves a whole G-code file as a single pre-rendered chunk on
// build plate 0.
type fileSource struct {
	content string
}

func (s fileSource) Chunks(plate int) ([]string, bool) {
	if plate != 0 {
		return nil, false
	}
	return []string{s.content}, true
}

// activeStack adapts a loaded machine stack to the writer's provider
// interface.
type activeStack struct {
	machine *stack.Machine
}

func (s activeStack) ActiveMachine() *stack.Machine {
	return s.machine
}
