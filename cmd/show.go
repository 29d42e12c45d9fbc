package cmd

import (
	stderrors "errors"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/logger"
	"clipwatch/pkg/sink"
	"clipwatch/pkg/watcher"

	"github.com/spf13/cobra"
)

var showBackend string

// Snapshot is a one-shot read of the clipboard or the selection.
type Snapshot struct {
	Source     watcher.Source `json:"source" yaml:"source"`
	Value      string         `json:"value" yaml:"value"`
	Empty      bool           `json:"empty" yaml:"empty"`
	ObservedAt time.Time      `json:"observed_at" yaml:"observed_at"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current clipboard",
	Long:  `Reads the clipboard once and prints its contents.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cb, err := openClipboard(showBackend)
		if err != nil {
			return err
		}
		return runShow(newCommandOutput(cmd), cb)
	},
}

func runShow(out *OutputWriter, cb clipboard.Reader) error {
	value, err := cb.ReadAll()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read clipboard")
		return clipboardReadError(err)
	}
	return writeSnapshot(out, Snapshot{
		Source:     watcher.SourceClipboard,
		Value:      value,
		Empty:      value == "",
		ObservedAt: time.Now(),
	})
}

func writeSnapshot(out *OutputWriter, snap Snapshot) error {
	if out.IsStructured() {
		return out.Write(snap)
	}
	if snap.Empty {
		logger.Info().Str("source", string(snap.Source)).Msg("Nothing to show")
		return nil
	}
	out.Printf("%s\n%s\n%s\n", sink.Rule, snap.Value, sink.Rule)
	return nil
}

func clipboardReadError(err error) error {
	if stderrors.Is(err, clipboard.ErrUnsupported) {
		return errors.UnsupportedError("Clipboard access")
	}
	return errors.ClipboardError(errors.ErrMsgClipboardRead, err)
}

func init() {
	showCmd.Flags().StringVar(&showBackend, "backend", backendSystem, "Clipboard backend (system, memory)")
}
