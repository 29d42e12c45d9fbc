package completions

import (
	"fmt"
	"strings"

	"clipwatch/pkg/config"
	"clipwatch/pkg/filter"
	"clipwatch/pkg/logger"

	"github.com/spf13/cobra"
)

type Completer struct {
	// loadConfig is swapped in tests.
	loadConfig func() (*config.Config, error)
}

func NewCompleter() *Completer {
	return &Completer{loadConfig: config.LoadFile}
}

func (c *Completer) CompleteLogLevel(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(logger.Levels(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := []string{
		"table\tHuman readable output",
		"json\tJSON (one document per change when watching)",
		"yaml\tYAML stream",
	}
	return filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteProfile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	var profiles []string
	for _, p := range cfg.Profiles {
		desc := p.LLM.Model
		if desc == "" {
			desc = "profile"
		}
		profiles = append(profiles, fmt.Sprintf("%s\t%s", p.Name, desc))
	}
	return filterPrefix(profiles, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteSource(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	sources := []string{
		"clipboard\tSystem clipboard",
		"selection\tCurrent text selection",
	}
	return filterPrefix(sources, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteIgnoreMode(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(filter.ModeNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteBackend(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	backends := []string{
		"system\tOperating system clipboard",
		"memory\tIn-process clipboard, for trying things out",
	}
	return filterPrefix(backends, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(items []string, prefix string) []string {
	result := []string{}
	for _, item := range items {
		itemName := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(itemName), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	rootCmd.RegisterFlagCompletionFunc("log-level", completer.CompleteLogLevel)
	rootCmd.RegisterFlagCompletionFunc("format", completer.CompleteFormat)
	rootCmd.RegisterFlagCompletionFunc("profile", completer.CompleteProfile)

	watchCmd, _, _ := rootCmd.Find([]string{"watch"})
	if watchCmd != nil && watchCmd != rootCmd {
		watchCmd.RegisterFlagCompletionFunc("ignore-mode", completer.CompleteIgnoreMode)
		watchCmd.RegisterFlagCompletionFunc("backend", completer.CompleteBackend)
	}

	for _, path := range [][]string{{"show"}, {"name"}, {"title"}} {
		c, _, _ := rootCmd.Find(path)
		if c != nil && c != rootCmd {
			c.RegisterFlagCompletionFunc("backend", completer.CompleteBackend)
		}
	}

	historyListCmd, _, _ := rootCmd.Find([]string{"history", "list"})
	if historyListCmd != nil && historyListCmd != rootCmd {
		historyListCmd.RegisterFlagCompletionFunc("source", completer.CompleteSource)
	}
}
