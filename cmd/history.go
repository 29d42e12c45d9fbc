package cmd

import (
	"fmt"
	"strconv"

	"clipwatch/pkg/errors"
	"clipwatch/pkg/history"
	"clipwatch/pkg/logger"
	"clipwatch/pkg/watcher"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historySource string
	historyKeep   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and prune recorded clipboard changes",
	Long:  `Query the SQLite history written by 'clipwatch watch --history'.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateSource(historySource); err != nil {
			return err
		}
		store, err := openHistoryFromConfig()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := GetContext()
		defer cancel()

		entries, err := store.Recent(ctx, historySource, historyLimit)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryQuery, err)
		}
		return writeEntries(newCommandOutput(cmd), entries)
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find changes containing text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryFromConfig()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := GetContext()
		defer cancel()

		entries, err := store.Search(ctx, args[0], historyLimit)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryQuery, err)
		}
		return writeEntries(newCommandOutput(cmd), entries)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest changes",
	Example: `  # Keep the newest 100 entries
  clipwatch history prune --keep 100

  # See what would be deleted
  clipwatch history prune --keep 0 --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyKeep < 0 {
			return errors.ValidationError("--keep must not be negative")
		}
		store, err := openHistoryFromConfig()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := GetContext()
		defer cancel()

		total, err := store.Count(ctx)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryQuery, err)
		}
		doomed := total - historyKeep
		if doomed <= 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing to prune (%d entries).\n", total)
			return nil
		}

		err = RequireConfirmation("delete history entries", map[string]string{
			"Entries":  strconv.Itoa(total),
			"Keep":     strconv.Itoa(historyKeep),
			"Deleting": strconv.Itoa(doomed),
		})
		if err == errDryRun {
			return nil
		}
		if err != nil {
			return err
		}

		deleted, err := store.Prune(ctx, historyKeep)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryQuery, err)
		}
		logger.Info().Int64("deleted", deleted).Int("kept", historyKeep).Msg("History pruned")
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries.\n", deleted)
		return nil
	},
}

func openHistoryFromConfig() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openHistory(cfg)
}

func validateSource(source string) error {
	switch watcher.Source(source) {
	case "", watcher.SourceClipboard, watcher.SourceSelection:
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("unknown source %q (want %s or %s)", source, watcher.SourceClipboard, watcher.SourceSelection))
}

func writeEntries(out *OutputWriter, entries []history.Entry) error {
	if out.IsStructured() {
		if entries == nil {
			entries = []history.Entry{}
		}
		return out.Write(entries)
	}

	if len(entries) == 0 {
		out.Printf("No entries.\n")
		return nil
	}
	for _, e := range entries {
		out.Printf("%s  %-9s  #%-4d  %s\n", FormatTimestamp(e.ObservedAt), e.Source, e.Seq, Preview(e.Content))
	}
	return nil
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
	historyListCmd.Flags().StringVar(&historySource, "source", "", "Only show one source (clipboard, selection)")
	historySearchCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 1000, "Number of newest entries to keep")
}
