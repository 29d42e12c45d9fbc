package cmd

import (
	"bytes"
	"strings"
	"testing"

	"clipwatch/pkg/errors"
)

func withPrompt(t *testing.T, answer string, dryRun, yes bool) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	oldIn, oldOut, oldDry, oldYes := promptInput, promptOutput, dryRunFlag, assumeYesFlag
	promptInput = strings.NewReader(answer)
	promptOutput = &out
	dryRunFlag, assumeYesFlag = dryRun, yes
	t.Cleanup(func() {
		promptInput, promptOutput, dryRunFlag, assumeYesFlag = oldIn, oldOut, oldDry, oldYes
	})
	return &out
}

func TestRequireConfirmation(t *testing.T) {
	details := map[string]string{"Keep": "10", "Deleting": "5"}

	tests := []struct {
		name     string
		answer   string
		dryRun   bool
		yes      bool
		wantErr  error
		wantCode errors.ExitCode
		wantOut  string
	}{
		{name: "answer yes", answer: "yes\n", wantOut: "Warning: You are about to prune"},
		{name: "answer y without newline", answer: "y"},
		{name: "answer no", answer: "n\n", wantCode: errors.ExitCodeCancellation},
		{name: "empty answer", answer: "\n", wantCode: errors.ExitCodeCancellation},
		{name: "assume yes", yes: true},
		{name: "dry run", dryRun: true, wantErr: errDryRun, wantOut: "[DRY-RUN] Would prune"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := withPrompt(t, tt.answer, tt.dryRun, tt.yes)
			err := RequireConfirmation("prune", details)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("RequireConfirmation() = %v, want %v", err, tt.wantErr)
				}
			case tt.wantCode != 0:
				if !errors.IsExitCode(err, tt.wantCode) {
					t.Errorf("RequireConfirmation() = %v, want exit code %d", err, tt.wantCode)
				}
			default:
				if err != nil {
					t.Errorf("RequireConfirmation() = %v", err)
				}
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("prompt output %q missing %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestPrintDryRunAction_SortsDetails(t *testing.T) {
	out := withPrompt(t, "", true, false)
	PrintDryRunAction("prune", map[string]string{"b": "2", "a": "1"})
	got := out.String()
	if strings.Index(got, "a: ") > strings.Index(got, "b: ") {
		t.Errorf("details not sorted:\n%s", got)
	}
}
