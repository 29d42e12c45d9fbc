package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)

	root.AddCommand(watchCmd)
	root.AddCommand(showCmd)
	root.AddCommand(selectionCmd)
	root.AddCommand(nameCmd)
	root.AddCommand(titleCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(configCmd)

	historyCmd.AddCommand(
		historyListCmd,
		historySearchCmd,
		historyPruneCmd,
	)
}
