// Package writer orchestrates writing a sliced G-code artifact to an
// output stream and appending the embedded settings block when the
// artifact does not already carry one.
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/printforge/gcodetag/internal/settings"
	"github.com/printforge/gcodetag/internal/stack"
)

// Mode selects how the destination stream is written.
type Mode int

const (
	// TextMode writes the artifact as text. It is the only supported mode.
	TextMode Mode = iota
	// BinaryMode exists for callers that negotiate the mode dynamically;
	// requesting it is a hard failure.
	BinaryMode
)

var (
	// ErrUnsupportedMode is returned when a write is requested in any mode
	// other than TextMode. Nothing is written.
	ErrUnsupportedMode = errors.New("gcode writer supports text mode only")

	// ErrNoContent is returned when the artifact source has no G-code
	// chunks for the requested build plate.
	ErrNoContent = errors.New("no gcode available for build plate")
)

// ArtifactSource supplies the pre-rendered G-code chunks of an artifact,
// keyed by build plate index. The chunk list is fully materialized and
// already ordered; ok is false when the plate has no G-code.
type ArtifactSource interface {
	Chunks(plate int) (chunks []string, ok bool)
}

// StackProvider supplies the machine configuration stack that was active
// when the artifact was generated.
type StackProvider interface {
	ActiveMachine() *stack.Machine
}

// Writer writes G-code artifacts with the machine's customized settings
// embedded as a ;SETTING_ comment block. A Writer is stateless across
// calls; distinct destination streams may be written from one instance.
type Writer struct {
	source    ArtifactSource
	stacks    StackProvider
	providers stack.Providers
	version   int
	log       *slog.Logger
}

// New creates a writer. The logger is the diagnostic sink for failure and
// no-op conditions; nil falls back to the default logger.
func New(source ArtifactSource, stacks StackProvider, providers stack.Providers, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{
		source:    source,
		stacks:    stacks,
		providers: providers,
		version:   settings.Version,
		log:       log,
	}
}

// Write streams every G-code chunk of the given build plate to dst in
// order, then appends a freshly encoded settings block unless one of the
// chunks already contains a keyword line. When the machine stack carries no
// custom settings at all the block is skipped and the write still
// succeeds. The destination stream is never closed.
func (w *Writer) Write(dst io.Writer, mode Mode, plate int) error {
	if mode != TextMode {
		w.log.Error("gcode writer does not support non-text mode")
		return ErrUnsupportedMode
	}

	chunks, ok := w.source.Chunks(plate)
	if !ok {
		w.log.Error("no gcode found for build plate", "plate", plate)
		return fmt.Errorf("%w %d", ErrNoContent, plate)
	}

	hasBlock := false
	for _, chunk := range chunks {
		if settings.ContainsBlock(chunk) {
			hasBlock = true
		}
		if _, err := io.WriteString(dst, chunk); err != nil {
			return fmt.Errorf("write gcode chunk: %w", err)
		}
	}
	if hasBlock {
		return nil
	}

	doc, err := settings.Aggregate(w.stacks.ActiveMachine(), w.providers)
	if err != nil {
		return fmt.Errorf("aggregate settings: %w", err)
	}
	if doc == nil {
		w.log.Info("no custom settings found, not writing settings to gcode")
		return nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize settings document: %w", err)
	}

	block := settings.Encode(string(raw), w.version, settings.LineWidth)
	if _, err := io.WriteString(dst, block); err != nil {
		return fmt.Errorf("write settings block: %w", err)
	}
	return nil
}
