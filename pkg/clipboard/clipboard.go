// Package clipboard provides access to the shared OS clipboard and a
// best-effort capability for capturing the current text selection.
//
// The OS clipboard is an external, unsynchronized resource: any application
// may write to it between two reads, and nothing here assumes exclusive
// ownership of it.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	atotto "github.com/atotto/clipboard"
)

// ErrUnsupported is returned when a capability is not available on the
// current platform.
var ErrUnsupported = errors.New("clipboard: unsupported on this platform")

// Reader reads the current clipboard text.
type Reader interface {
	ReadAll() (string, error)
}

// Writer replaces the clipboard text.
type Writer interface {
	WriteAll(text string) error
}

// Clipboard is a readable and writable clipboard.
type Clipboard interface {
	Reader
	Writer
}

// ReadError reports a failed clipboard read. Watchers treat it as
// transient and try again on the next tick.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("clipboard read: %v", e.Err)
	}
	return fmt.Sprintf("clipboard read (%s): %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed clipboard write.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("clipboard write: %v", e.Err)
	}
	return fmt.Sprintf("clipboard write (%s): %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// System is the OS clipboard, backed by github.com/atotto/clipboard
// (pbpaste/pbcopy on macOS, xclip/xsel/wl-clipboard on Linux, the Win32
// API on Windows).
type System struct{}

func NewSystem() System {
	return System{}
}

func (System) ReadAll() (string, error) {
	if atotto.Unsupported {
		return "", ErrUnsupported
	}
	text, err := atotto.ReadAll()
	if err != nil {
		return "", &ReadError{Err: err}
	}
	return text, nil
}

func (System) WriteAll(text string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	if err := atotto.WriteAll(text); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Locked serializes every read and write of an underlying clipboard through
// a shared lock. A selection capturer holding the same lock can swap the
// clipboard contents without a concurrent watcher observing the swap.
type Locked struct {
	Clipboard Clipboard
	Lock      sync.Locker
}

func (l Locked) ReadAll() (string, error) {
	l.Lock.Lock()
	defer l.Lock.Unlock()
	return l.Clipboard.ReadAll()
}

func (l Locked) WriteAll(text string) error {
	l.Lock.Lock()
	defer l.Lock.Unlock()
	return l.Clipboard.WriteAll(text)
}

// Memory is an in-process clipboard. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	value    string
	failures []error
	writes   []string
	reads    int
}

func NewMemory(initial string) *Memory {
	return &Memory{value: initial}
}

// ReadAll returns the current value, or the next queued failure.
func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return "", &ReadError{Err: err}
	}
	return m.value, nil
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = text
	m.writes = append(m.writes, text)
	return nil
}

// FailNext makes the next read return err wrapped in a *ReadError.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, err)
}

// Value returns the current value without counting as a read.
func (m *Memory) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Writes returns every value written so far, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// Reads returns how many times ReadAll was called.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
