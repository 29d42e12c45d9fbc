package cmd

import (
	"context"
	stderrors "errors"
	"strings"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/llm"
	"clipwatch/pkg/logger"
	"clipwatch/pkg/progress"

	"github.com/spf13/cobra"
)

const clipboardArg = "-"

var (
	llmCopyFlag    bool
	llmBackendFlag string
)

// Suggestion is the structured output of the name and title commands.
type Suggestion struct {
	Kind   string `json:"kind" yaml:"kind"`
	Input  string `json:"input" yaml:"input"`
	Result string `json:"result" yaml:"result"`
	Model  string `json:"model" yaml:"model"`
}

// promptFunc is one of the llm helpers.
type promptFunc func(ctx context.Context, c llm.Completer, input string) (string, error)

var nameCmd = NewCommand("name [topic|-]",
	"Suggest a variable name for a topic",
	"Asks the chat model for one lower_snake_case variable name describing the topic.").
	WithClipboardFallback().
	WithExample(`  clipwatch name "number of retries"
  clipwatch name --copy`).
	WithArgsValidation(0, -1).
	WithRunE(func(cmd *cobra.Command, args []string) error {
		return runPromptCmd(cmd, args, "name", llm.VariableName)
	}).
	Build()

var titleCmd = NewCommand("title [content|-]",
	"Suggest a title for some text",
	"Asks the chat model for a 5 to 15 word title summarizing the content.").
	WithClipboardFallback().
	WithExample(`  clipwatch title "A smart home system with voice control"
  clipwatch title - --copy`).
	WithArgsValidation(0, -1).
	WithRunE(func(cmd *cobra.Command, args []string) error {
		return runPromptCmd(cmd, args, "title", llm.Title)
	}).
	Build()

func runPromptCmd(cmd *cobra.Command, args []string, kind string, prompt promptFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateLLM(); err != nil {
		return err
	}
	cb, err := openClipboard(llmBackendFlag)
	if err != nil {
		return err
	}

	input, err := promptInputFrom(args, cb)
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout())
	out := newCommandOutput(cmd)

	ctx, cancel := GetContext()
	defer cancel()

	spin := progress.StderrIsTerminal() && !out.IsStructured()
	suggestion, err := runPrompt(ctx, client, prompt, kind, input, spin)
	if err != nil {
		return err
	}
	suggestion.Model = cfg.LLM.Model

	if out.IsStructured() {
		if err := out.Write(suggestion); err != nil {
			return err
		}
		if llmCopyFlag {
			return CopyToClipboard(cb, strings.TrimSpace(suggestion.Result))
		}
		return nil
	}

	text := suggestion.Result
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return OutputWithCopy(out.writer, cb, text, strings.TrimSpace(suggestion.Result), llmCopyFlag)
}

// runPrompt calls prompt and maps failures onto exit codes.
func runPrompt(ctx context.Context, c llm.Completer, prompt promptFunc, kind, input string, spin bool) (Suggestion, error) {
	var result string
	err := progress.Run(spin, "Asking the model...", func() error {
		var err error
		result, err = prompt(ctx, c, input)
		return err
	})
	if err != nil {
		logger.Debug().Err(err).Str("kind", kind).Msg("Completion failed")
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			return Suggestion{}, errors.TimeoutError("chat completion")
		case stderrors.Is(err, context.Canceled):
			return Suggestion{}, errors.CancelledError("chat completion")
		default:
			return Suggestion{}, errors.CompletionError(err)
		}
	}
	return Suggestion{Kind: kind, Input: input, Result: result}, nil
}

// promptInputFrom joins the arguments, or reads the clipboard when there
// are none or the only one is "-".
func promptInputFrom(args []string, cb clipboard.Reader) (string, error) {
	var input string
	if len(args) == 0 || (len(args) == 1 && args[0] == clipboardArg) {
		value, err := cb.ReadAll()
		if err != nil {
			return "", clipboardReadError(err)
		}
		input = value
	} else {
		input = strings.Join(args, " ")
	}

	if strings.TrimSpace(input) == "" {
		return "", errors.ValidationError("nothing to send: the input is empty")
	}
	return input, nil
}

func init() {
	for _, c := range []*cobra.Command{nameCmd, titleCmd} {
		c.Flags().BoolVar(&llmCopyFlag, "copy", false, "Copy the result to the clipboard")
		c.Flags().StringVar(&llmBackendFlag, "backend", backendSystem, "Clipboard backend (system, memory)")
	}
}
