package errors

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "basic error without underlying",
			err:      &Error{Code: ExitCodeGeneral, Message: "test error"},
			expected: "test error",
		},
		{
			name:     "error with underlying",
			err:      &Error{Code: ExitCodeClipboard, Message: "read failed", Underlying: errors.New("xclip missing")},
			expected: "read failed: xclip missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewWithError(ExitCodeGeneral, "test error", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("errors.Is(%v, underlying) = false, want true", err)
	}
}

func TestNewWithSuggestion(t *testing.T) {
	err := NewWithSuggestion(ExitCodeValidation, "invalid input", "Check the documentation for valid values")

	if err.Code != ExitCodeValidation {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeValidation)
	}
	if err.Suggestion != "Check the documentation for valid values" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "Check the documentation for valid values")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("original error")
	err := Wrap(underlying, "wrapped message")

	if err.Error() != "wrapped message: original error" {
		t.Errorf("Error() = %q, want %q", err.Error(), "wrapped message: original error")
	}

	if Wrap(nil, "message") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapKeepsCode(t *testing.T) {
	inner := New(ExitCodeClipboard, "clipboard gone")
	err := Wrap(fmt.Errorf("tick: %w", inner), "watch")

	if err.Code != ExitCodeClipboard {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeClipboard)
	}
	if err.Message != "watch: clipboard gone" {
		t.Errorf("Message = %q, want %q", err.Message, "watch: clipboard gone")
	}
}

func TestIsExitCodeAndCodeOf(t *testing.T) {
	err := CompletionError(errors.New("502"))

	if !IsExitCode(err, ExitCodeCompletion) {
		t.Error("IsExitCode() should return true for matching code")
	}
	if IsExitCode(err, ExitCodeConfig) {
		t.Error("IsExitCode() should return false for non-matching code")
	}
	if IsExitCode(nil, ExitCodeGeneral) {
		t.Error("IsExitCode() should return false for nil error")
	}

	if got := CodeOf(fmt.Errorf("outer: %w", err)); got != ExitCodeCompletion {
		t.Errorf("CodeOf(wrapped) = %d, want %d", got, ExitCodeCompletion)
	}
	if got := CodeOf(errors.New("plain")); got != ExitCodeGeneral {
		t.Errorf("CodeOf(plain) = %d, want %d", got, ExitCodeGeneral)
	}
	if got := CodeOf(nil); got != ExitCodeSuccess {
		t.Errorf("CodeOf(nil) = %d, want %d", got, ExitCodeSuccess)
	}
}

func TestHandle(t *testing.T) {
	t.Run("nil error returns success", func(t *testing.T) {
		var buf bytes.Buffer
		if code := handle(&buf, nil); code != ExitCodeSuccess {
			t.Errorf("handle(nil) = %d, want %d", code, ExitCodeSuccess)
		}
		if buf.Len() != 0 {
			t.Errorf("handle(nil) wrote %q, want nothing", buf.String())
		}
	})

	t.Run("structured error prints message and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewWithSuggestion(ExitCodeConfig, "configuration missing", "Run clipwatch config init\n  - or set env vars")
		code := handle(&buf, err)
		if code != ExitCodeConfig {
			t.Errorf("handle() = %d, want %d", code, ExitCodeConfig)
		}
		out := buf.String()
		for _, want := range []string{"configuration missing", "Run clipwatch config init", "  - or set env vars"} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %q", out, want)
			}
		}
	})

	t.Run("plain error maps to general", func(t *testing.T) {
		var buf bytes.Buffer
		if code := handle(&buf, errors.New("boom")); code != ExitCodeGeneral {
			t.Errorf("handle() = %d, want %d", code, ExitCodeGeneral)
		}
	})
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code ExitCode
	}{
		{name: "ConfigError", err: ConfigError("invalid yaml"), code: ExitCodeConfig},
		{name: "ClipboardError", err: ClipboardError(ErrMsgClipboardRead, errors.New("x")), code: ExitCodeClipboard},
		{name: "CompletionError", err: CompletionError(errors.New("x")), code: ExitCodeCompletion},
		{name: "UnsupportedError", err: UnsupportedError("selection capture"), code: ExitCodeUnsupported},
		{name: "ValidationError", err: ValidationError("missing required field"), code: ExitCodeValidation},
		{name: "TimeoutError", err: TimeoutError("completion"), code: ExitCodeTimeout},
		{name: "CancelledError", err: CancelledError("user cancelled"), code: ExitCodeCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("%s() returned error with code %d, want %d", tt.name, tt.err.Code, tt.code)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	if CommandError("show", nil) != nil {
		t.Error("CommandError(nil) should return nil")
	}
	inner := errors.New("inner")
	err := CommandError("show", inner)
	if !errors.Is(err, inner) {
		t.Error("CommandError should preserve the error chain")
	}
}
