package completions

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"clipwatch/pkg/config"

	"github.com/spf13/cobra"
)

func TestFilterPrefix(t *testing.T) {
	items := []string{"clipboard\tSystem clipboard", "selection\tCurrent text selection"}

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: items},
		{prefix: "c", want: items[:1]},
		{prefix: "SEL", want: items[1:]},
		{prefix: "x", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := filterPrefix(items, tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("filterPrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleteProfile(t *testing.T) {
	c := &Completer{loadConfig: func() (*config.Config, error) {
		return &config.Config{Profiles: []config.Profile{
			{Name: "local", LLM: config.LLMConfig{Model: "qwen"}},
			{Name: "work"},
		}}, nil
	}}

	got, directive := c.CompleteProfile(nil, nil, "lo")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", directive)
	}
	if want := []string{"local\tqwen"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CompleteProfile() = %v, want %v", got, want)
	}

	c.loadConfig = func() (*config.Config, error) { return nil, errors.New("broken") }
	if got, _ := c.CompleteProfile(nil, nil, ""); len(got) != 0 {
		t.Errorf("CompleteProfile() with broken config = %v, want empty", got)
	}
}

func TestCompleteIgnoreMode(t *testing.T) {
	got, _ := NewCompleter().CompleteIgnoreMode(nil, nil, "re")
	if !reflect.DeepEqual(got, []string{"regex"}) {
		t.Errorf("CompleteIgnoreMode() = %v", got)
	}
}

func TestRegisterCompletions(t *testing.T) {
	root := &cobra.Command{Use: "clipwatch"}
	root.PersistentFlags().String("log-level", "info", "")
	root.PersistentFlags().String("format", "table", "")
	root.PersistentFlags().String("profile", "", "")

	watch := &cobra.Command{Use: "watch", Run: func(*cobra.Command, []string) {}}
	watch.Flags().String("ignore-mode", "", "")
	watch.Flags().String("backend", "", "")
	history := &cobra.Command{Use: "history"}
	list := &cobra.Command{Use: "list", Run: func(*cobra.Command, []string) {}}
	list.Flags().String("source", "", "")
	history.AddCommand(list)
	root.AddCommand(watch, history)

	RegisterCompletions(root)

	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"__complete", "--log-level", "de"}, want: "debug"},
		{args: []string{"__complete", "--format", "ya"}, want: "yaml"},
		{args: []string{"__complete", "watch", "--ignore-mode", "fu"}, want: "fuzzy"},
		{args: []string{"__complete", "history", "list", "--source", "sel"}, want: "selection"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs(tt.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("completion output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}
