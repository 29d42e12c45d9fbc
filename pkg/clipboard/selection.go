package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultSettleDelay is how long a capture waits for the OS to complete the
// simulated copy before reading the clipboard back.
const DefaultSettleDelay = 30 * time.Millisecond

// Keystroker sends the platform "copy" shortcut to the focused window.
type Keystroker interface {
	SendCopy(ctx context.Context) error
}

// SelectionCapturer captures the text currently selected in the focused
// application. ok is false when nothing was selected.
type SelectionCapturer interface {
	CaptureSelection(ctx context.Context) (text string, ok bool, err error)
}

// KeystrokeCapturer captures the selection by simulating a copy keystroke:
// it saves the clipboard, clears it, sends the keystroke, waits for the OS,
// reads the result and restores the saved value. The restore happens on
// every path once the prior value was read.
//
// The wait is a race with the OS, not a synchronization point; a slow
// application may be missed and reported as "no selection".
type KeystrokeCapturer struct {
	Clipboard Clipboard
	Keys      Keystroker
	Settle    time.Duration
	// Lock, when set, is held for the whole capture. Share it with
	// a Locked clipboard so watchers never see the temporary contents.
	Lock sync.Locker
}

func (c *KeystrokeCapturer) CaptureSelection(ctx context.Context) (text string, ok bool, err error) {
	if c.Keys == nil {
		return "", false, ErrUnsupported
	}
	if c.Lock != nil {
		c.Lock.Lock()
		defer c.Lock.Unlock()
	}

	prior, err := c.Clipboard.ReadAll()
	if err != nil {
		return "", false, asReadError("save", err)
	}
	defer func() {
		if werr := c.Clipboard.WriteAll(prior); werr != nil && err == nil {
			text, ok = "", false
			err = &WriteError{Op: "restore", Err: werr}
		}
	}()

	if err := c.Clipboard.WriteAll(""); err != nil {
		return "", false, &WriteError{Op: "clear", Err: err}
	}
	if err := c.Keys.SendCopy(ctx); err != nil {
		return "", false, err
	}

	settle := c.Settle
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-timer.C:
	}

	selected, err := c.Clipboard.ReadAll()
	if err != nil {
		return "", false, asReadError("selection", err)
	}
	return selected, selected != "", nil
}

// SelectionReader adapts a SelectionCapturer to the Reader interface so a
// watcher can poll the selection like a clipboard. An unsupported capturer
// surfaces ErrUnsupported; any other failure becomes a *ReadError.
type SelectionReader struct {
	Capturer SelectionCapturer
	Timeout  time.Duration
}

func (r SelectionReader) ReadAll() (string, error) {
	if r.Capturer == nil {
		return "", ErrUnsupported
	}
	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	text, _, err := r.Capturer.CaptureSelection(ctx)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return "", err
		}
		return "", asReadError("selection", err)
	}
	return text, nil
}

func asReadError(op string, err error) error {
	var re *ReadError
	if errors.As(err, &re) || errors.Is(err, ErrUnsupported) {
		return err
	}
	return &ReadError{Op: op, Err: err}
}
