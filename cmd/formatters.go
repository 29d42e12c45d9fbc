package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/sink"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatTable is the default human-readable format
	FormatTable OutputFormat = "table"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs as YAML
	FormatYAML OutputFormat = "yaml"
)

const previewWidth = 60

// OutputWriter handles structured output formatting
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputWriter creates a new output writer with the specified format
func NewOutputWriter(format string) *OutputWriter {
	f := OutputFormat(format)
	if f != FormatJSON && f != FormatYAML {
		f = FormatTable // default
	}
	return &OutputWriter{
		format: f,
		writer: os.Stdout,
	}
}

// newCommandOutput returns an OutputWriter for --format writing to the
// command's stdout.
func newCommandOutput(cmd *cobra.Command) *OutputWriter {
	w := NewOutputWriter(outputFormat)
	w.SetWriter(cmd.OutOrStdout())
	return w
}

// SetWriter sets a custom writer (used in tests)
func (w *OutputWriter) SetWriter(writer io.Writer) {
	w.writer = writer
}

func (w *OutputWriter) GetFormat() OutputFormat {
	return w.format
}

// IsStructured returns true if the format is JSON or YAML
func (w *OutputWriter) IsStructured() bool {
	return w.format == FormatJSON || w.format == FormatYAML
}

// SinkFormat maps the output format onto the watch stream encoding.
func (w *OutputWriter) SinkFormat() sink.Format {
	if w.format == FormatYAML {
		return sink.FormatYAML
	}
	return sink.FormatJSON
}

// Write outputs the data in the configured format
func (w *OutputWriter) Write(data interface{}) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		encoder := yaml.NewEncoder(w.writer)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		// Table format is handled by individual commands
		return nil
	}
}

// Printf writes human-readable text. It is a no-op for structured formats.
func (w *OutputWriter) Printf(format string, args ...interface{}) {
	if w.IsStructured() {
		return
	}
	fmt.Fprintf(w.writer, format, args...)
}

// ValidFormats returns a list of valid output formats
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// Preview flattens content onto one line and shortens it for listings.
func Preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= previewWidth {
		return flat
	}
	return string(runes[:previewWidth-1]) + "…"
}

// CopyToClipboard writes content to the clipboard as plain text.
func CopyToClipboard(cb clipboard.Writer, content string) error {
	if err := cb.WriteAll(content); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// OutputWithCopy prints the terminal content and, if shouldCopy is true,
// also copies clipboardContent to the clipboard.
func OutputWithCopy(writer io.Writer, cb clipboard.Writer, terminalContent, clipboardContent string, shouldCopy bool) error {
	if _, err := fmt.Fprint(writer, terminalContent); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if shouldCopy {
		if err := CopyToClipboard(cb, clipboardContent); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "✓ Copied to clipboard!")
	}

	return nil
}
