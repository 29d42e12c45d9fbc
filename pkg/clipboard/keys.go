package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// toolCommand is an external tool invocation.
type toolCommand struct {
	name string
	args []string
}

// run executes the tool and returns its standard output. A non-zero exit
// is returned as an error wrapping *exec.ExitError.
func (c toolCommand) run(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx, c.name, c.args...).Output()
	if err != nil {
		name := filepath.Base(c.name)
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			if msg := strings.TrimSpace(string(ee.Stderr)); msg != "" {
				return out, fmt.Errorf("%s: %w: %s", name, err, msg)
			}
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// lookupTool returns the first candidate whose tool is on PATH.
func lookupTool(candidates ...toolCommand) (toolCommand, error) {
	for _, c := range candidates {
		path, err := exec.LookPath(c.name)
		if err != nil {
			continue
		}
		return toolCommand{name: path, args: c.args}, nil
	}
	return toolCommand{}, ErrUnsupported
}

// CapturerFunc builds a selection capturer. cb is the clipboard a capture
// may borrow and lock must be held while it does; capturers that never
// touch the clipboard ignore both.
type CapturerFunc func(cb Clipboard, lock sync.Locker, settle time.Duration) SelectionCapturer

// WithKeystrokes builds KeystrokeCapturers that send the copy shortcut
// through keys.
func WithKeystrokes(keys Keystroker) CapturerFunc {
	return func(cb Clipboard, lock sync.Locker, settle time.Duration) SelectionCapturer {
		return &KeystrokeCapturer{Clipboard: cb, Keys: keys, Settle: settle, Lock: lock}
	}
}

// NewSystemCapturer builds a selection capturer for the running platform.
// It returns ErrUnsupported when no selection tool is available.
func NewSystemCapturer(cb Clipboard, settle time.Duration) (SelectionCapturer, error) {
	build, err := PlatformCapturer()
	if err != nil {
		return nil, err
	}
	return build(cb, nil, settle), nil
}
