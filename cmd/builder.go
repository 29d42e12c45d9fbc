package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type CommandBuilder struct {
	cmd *cobra.Command
}

func NewCommand(name, short, long string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &cobra.Command{
			Use:     name,
			Short:   short,
			Long:    long,
			Example: "",
		},
	}
}

func (b *CommandBuilder) WithExample(example string) *CommandBuilder {
	b.cmd.Example = example
	return b
}

func (b *CommandBuilder) WithRunE(fn func(cmd *cobra.Command, args []string) error) *CommandBuilder {
	b.cmd.RunE = fn
	return b
}

// WithClipboardFallback documents that a missing argument (or "-") reads
// the clipboard.
func (b *CommandBuilder) WithClipboardFallback() *CommandBuilder {
	b.cmd.Long += "\n\nWith no argument, or \"-\", the text is read from the clipboard."
	return b
}

func (b *CommandBuilder) WithArgsValidation(minArgs, maxArgs int) *CommandBuilder {
	b.cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs {
			return fmt.Errorf("requires at least %d argument(s)", minArgs)
		}
		if maxArgs >= 0 && len(args) > maxArgs {
			return fmt.Errorf("accepts at most %d argument(s), received %d", maxArgs, len(args))
		}
		return nil
	}
	return b
}

func (b *CommandBuilder) Build() *cobra.Command {
	return b.cmd
}
