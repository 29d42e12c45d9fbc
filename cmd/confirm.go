package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"clipwatch/pkg/errors"

	"github.com/fatih/color"
)

const (
	responseYes = "yes"
	responseY   = "y"
)

// promptInput is where confirmation answers are read from.
var promptInput io.Reader = os.Stdin

// promptOutput receives prompts and dry-run notices.
var promptOutput io.Writer = os.Stderr

// IsDryRun returns true if dry-run mode is enabled
func IsDryRun() bool {
	return dryRunFlag
}

// IsAssumeYes returns true if we should skip confirmation prompts
func IsAssumeYes() bool {
	return assumeYesFlag
}

// PrintDryRunAction prints a dry-run action with details
func PrintDryRunAction(action string, details map[string]string) {
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan)

	_, _ = yellow.Fprintf(promptOutput, "[DRY-RUN] Would %s:\n", action)
	for _, key := range sortedKeys(details) {
		_, _ = cyan.Fprintf(promptOutput, "  %s: ", key)
		fmt.Fprintln(promptOutput, details[key])
	}
}

// ConfirmPrompt asks the user for confirmation
func ConfirmPrompt(message string) (bool, error) {
	if assumeYesFlag {
		return true, nil
	}

	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(promptOutput, "%s [y/N]: ", message)

	reader := bufio.NewReader(promptInput)
	response, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || response == "") {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == responseY || response == responseYes, nil
}

// ConfirmDestructive prompts for confirmation before a destructive action
func ConfirmDestructive(action string, details map[string]string) (bool, error) {
	if dryRunFlag {
		PrintDryRunAction(action, details)
		return false, nil
	}

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(promptOutput, "Warning: You are about to %s\n\n", action)

	if len(details) > 0 {
		for _, key := range sortedKeys(details) {
			fmt.Fprintf(promptOutput, "  %s: %s\n", key, details[key])
		}
		fmt.Fprintln(promptOutput)
	}

	return ConfirmPrompt("Do you want to continue")
}

// RequireConfirmation returns a cancellation error unless the action was
// confirmed. Dry runs report errDryRun so callers can stop quietly.
func RequireConfirmation(action string, details map[string]string) error {
	confirmed, err := ConfirmDestructive(action, details)
	if err != nil {
		return err
	}
	if dryRunFlag {
		return errDryRun
	}
	if !confirmed {
		return errors.CancelledError(action)
	}
	return nil
}

var errDryRun = fmt.Errorf("dry run")

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
