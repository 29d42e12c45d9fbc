// Package sink renders clipboard changes.
//
// Every type here implements watcher.Sink. The watcher core does not know
// how a change is displayed; the command line wires whichever sinks the
// user asked for, usually through Multi.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"clipwatch/pkg/watcher"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Multi delivers each change to every sink in order.
type Multi []watcher.Sink

func (m Multi) ContentChanged(c watcher.Change) {
	for _, s := range m {
		if s != nil {
			s.ContentChanged(c)
		}
	}
}

// Labels maps a source to the header printed above its value.
var Labels = map[watcher.Source]string{
	watcher.SourceClipboard: "Clipboard",
	watcher.SourceSelection: "Selection",
}

// Terminal prints each change as a colored header followed by the value.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	clear  bool
	header *color.Color
	meta   *color.Color
}

type TerminalOption func(*Terminal)

// WithClearScreen clears the terminal before every value, so only the
// latest one is visible.
func WithClearScreen(clear bool) TerminalOption {
	return func(t *Terminal) { t.clear = clear }
}

// WithoutColor disables ANSI colors regardless of the terminal.
func WithoutColor() TerminalOption {
	return func(t *Terminal) {
		t.header.DisableColor()
		t.meta.DisableColor()
	}
}

// Rule frames every value printed to a terminal.
var Rule = strings.Repeat("-", 30)

func NewTerminal(w io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		meta:   color.New(color.FgHiBlack),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) ContentChanged(c watcher.Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clear {
		fmt.Fprint(t.w, "\033[H\033[2J")
	}
	label, ok := Labels[c.Source]
	if !ok {
		label = string(c.Source)
	}
	t.header.Fprintf(t.w, "%s:", label)
	t.meta.Fprintf(t.w, " #%d %s\n", c.Seq, c.ObservedAt.Format("15:04:05"))
	fmt.Fprintln(t.w, Rule)
	fmt.Fprintln(t.w, c.Value)
	fmt.Fprintln(t.w, Rule)
}

// Format selects how Structured encodes changes.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Structured writes changes as JSON lines or as a stream of YAML documents.
type Structured struct {
	mu     sync.Mutex
	format Format
	enc    encoder
	onErr  func(error)
}

type encoder interface {
	Encode(v any) error
}

func NewStructured(w io.Writer, format Format, onErr func(error)) *Structured {
	s := &Structured{format: format, onErr: onErr}
	if format == FormatYAML {
		s.enc = yaml.NewEncoder(w)
	} else {
		s.format = FormatJSON
		s.enc = json.NewEncoder(w)
	}
	return s
}

func (s *Structured) ContentChanged(c watcher.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(c); err != nil && s.onErr != nil {
		s.onErr(err)
	}
}

// Close flushes a YAML stream. It is a no-op for JSON.
func (s *Structured) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.enc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
