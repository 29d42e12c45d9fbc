package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clipwatch/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeClipboard     ExitCode = 3
	ExitCodeCompletion    ExitCode = 4
	ExitCodeUnsupported   ExitCode = 5
	ExitCodeValidation    ExitCode = 6
	ExitCodeFileOperation ExitCode = 7
	ExitCodeCancellation  ExitCode = 8
	ExitCodeTimeout       ExitCode = 9
)

// Standardized error messages for consistent user-facing errors
const (
	ErrMsgClipboardRead  = "Failed to read clipboard"
	ErrMsgClipboardWrite = "Failed to write clipboard"
	ErrMsgSelection      = "Failed to capture selection"
	ErrMsgCompletion     = "Chat completion request failed"
	ErrMsgHistoryOpen    = "Failed to open history database"
	ErrMsgHistoryQuery   = "History query failed"
	ErrMsgInvalidInput   = "Invalid input provided"
)

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

func NewWithSuggestion(code ExitCode, message string, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var wrapped *Error
	if stderrors.As(err, &wrapped) {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

func IsExitCode(err error, code ExitCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the exit code carried by err, or ExitCodeGeneral.
func CodeOf(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ExitCodeGeneral
}

// HandleReturn logs err, prints it to stderr and returns the exit code the
// process should terminate with. It never calls os.Exit.
func HandleReturn(err error) ExitCode {
	return handle(os.Stderr, err)
}

func handle(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := ExitCodeGeneral
	var message string
	var suggestion string

	var e *Error
	if stderrors.As(err, &e) {
		exitCode = e.Code
		message = e.Error()
		suggestion = e.Suggestion

		if e.Underlying != nil {
			logger.Error().Err(e.Underlying).Int("exit_code", int(exitCode)).Msg(e.Message)
		} else {
			logger.Error().Int("exit_code", int(exitCode)).Msg(e.Message)
		}
	} else {
		message = err.Error()
		logger.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(w)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, message)

	if suggestion != "" {
		yellow.Fprint(w, "Suggestion: ")
		lines := strings.Split(suggestion, "\n")
		for i, line := range lines {
			switch {
			case i == 0:
				fmt.Fprintln(w, line)
			case strings.HasPrefix(line, "  -"):
				cyan.Fprintln(w, line)
			default:
				fmt.Fprintln(w, "            "+line)
			}
		}
	}

	fmt.Fprintln(w)

	return exitCode
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file (clipwatch config path) or set the required environment variables.",
	}
}

func ClipboardError(message string, err error) *Error {
	return &Error{
		Code:       ExitCodeClipboard,
		Message:    message,
		Underlying: err,
		Suggestion: "Make sure a clipboard utility is available:\n  - macOS: pbcopy/pbpaste\n  - Linux/X11: xclip or xsel\n  - Linux/Wayland: wl-clipboard",
	}
}

func CompletionError(err error) *Error {
	return &Error{
		Code:       ExitCodeCompletion,
		Message:    ErrMsgCompletion,
		Underlying: err,
		Suggestion: "Check llm.base_url, llm.model and the API key (CLIPWATCH_LLM_API_KEY or DEEPSEEK_API_KEY).",
	}
}

func UnsupportedError(feature string) *Error {
	return &Error{
		Code:       ExitCodeUnsupported,
		Message:    fmt.Sprintf("%s is not supported on this platform", feature),
		Suggestion: "Selection capture needs osascript (macOS), or wl-paste, xclip or xsel (Linux).",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: message,
	}
}

func TimeoutError(operation string) *Error {
	return &Error{
		Code:       ExitCodeTimeout,
		Message:    fmt.Sprintf("Operation timed out: %s", operation),
		Suggestion: "Try again with a longer timeout using --timeout flag.",
	}
}

func CancelledError(operation string) *Error {
	return &Error{
		Code:       ExitCodeCancellation,
		Message:    fmt.Sprintf("Operation cancelled: %s", operation),
		Suggestion: "The operation was interrupted. No changes were made.",
	}
}

// CommandError wraps errors from command handlers with consistent formatting.
func CommandError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}
