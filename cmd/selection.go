package cmd

import (
	"context"
	stderrors "errors"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/config"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/logger"
	"clipwatch/pkg/watcher"

	"github.com/spf13/cobra"
)

var selectionSettleMS int

var selectionCmd = &cobra.Command{
	Use:   "selection",
	Short: "Print the currently selected text",
	Long: `Prints the current text selection. On Linux the PRIMARY selection is read
with wl-paste, xclip or xsel. On macOS the copy keystroke is simulated through
osascript; the clipboard is saved first and restored afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settle := time.Duration(selectionSettleMS) * time.Millisecond
		if !cmd.Flags().Changed("settle") {
			if cfg, err := loadConfig(); err == nil {
				settle = cfg.Watch.Settle()
			}
		}
		capturer, err := clipboard.NewSystemCapturer(clipboard.NewSystem(), settle)
		if err != nil {
			if stderrors.Is(err, clipboard.ErrUnsupported) {
				return errors.UnsupportedError("Selection capture")
			}
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), selectionReadTimeout)
		defer cancel()
		return runSelection(ctx, newCommandOutput(cmd), capturer)
	},
}

func runSelection(ctx context.Context, out *OutputWriter, capturer clipboard.SelectionCapturer) error {
	text, ok, err := capturer.CaptureSelection(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to capture selection")
		switch {
		case stderrors.Is(err, clipboard.ErrUnsupported):
			return errors.UnsupportedError("Selection capture")
		case stderrors.Is(err, context.DeadlineExceeded):
			return errors.TimeoutError("selection capture")
		default:
			return errors.ClipboardError(errors.ErrMsgSelection, err)
		}
	}
	return writeSnapshot(out, Snapshot{
		Source:     watcher.SourceSelection,
		Value:      text,
		Empty:      !ok,
		ObservedAt: time.Now(),
	})
}

func init() {
	selectionCmd.Flags().IntVar(&selectionSettleMS, "settle", config.DefaultSettleMS, "Milliseconds to wait for the copy keystroke to land (macOS)")
}
