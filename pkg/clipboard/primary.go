package clipboard

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"
)

// PrimaryCapturer reads the selection from a tool that prints it, such as
// xclip for the X11 PRIMARY selection. No keystroke is sent and the
// clipboard is left alone.
type PrimaryCapturer struct {
	Name string
	Args []string
}

func (c *PrimaryCapturer) CaptureSelection(ctx context.Context) (string, bool, error) {
	out, err := toolCommand{name: c.Name, args: c.Args}.run(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		// xclip, xsel and wl-paste exit non-zero when nothing is selected
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", false, nil
		}
		return "", false, err
	}
	text := string(out)
	return text, text != "", nil
}

func readPrimary(tool toolCommand) CapturerFunc {
	return func(Clipboard, sync.Locker, time.Duration) SelectionCapturer {
		return &PrimaryCapturer{Name: tool.name, Args: tool.args}
	}
}
