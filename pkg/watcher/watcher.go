// Package watcher polls a clipboard-like source on a schedule and delivers
// each new value to a sink.
//
// A Watcher remembers the last value it delivered. On every tick it reads a
// snapshot and, if the snapshot differs from that value, delivers it and
// remembers it. Equal consecutive snapshots produce a single delivery. The
// remembered value always equals the value most recently handed to the sink.
package watcher

import (
	stderrors "errors"
	"sync"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/filter"
	"clipwatch/pkg/scheduler"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source labels where a change came from.
type Source string

const (
	SourceClipboard Source = "clipboard"
	SourceSelection Source = "selection"
)

// Change is delivered to a Sink for every detected change.
type Change struct {
	Source     Source    `json:"source" yaml:"source"`
	Value      string    `json:"value" yaml:"value"`
	Seq        int64     `json:"seq" yaml:"seq"`
	ObservedAt time.Time `json:"observed_at" yaml:"observed_at"`
	SessionID  string    `json:"session_id" yaml:"session_id"`
}

// Sink consumes changes. It is called from the watcher's tick and must not
// call back into the same Watcher.
type Sink interface {
	ContentChanged(Change)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Change)

func (f SinkFunc) ContentChanged(c Change) { f(c) }

// Status classifies the outcome of one poll.
type Status int

const (
	StatusUnchanged Status = iota
	StatusChanged
	StatusSkipped
	StatusRetryable
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusSkipped:
		return "skipped"
	case StatusRetryable:
		return "retryable"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PollResult is the typed outcome of Poll.
type PollResult struct {
	Status Status
	Value  string
	Err    error
}

// ErrAlreadyStarted is returned when Start is called on a watcher that has
// already been started.
var ErrAlreadyStarted = stderrors.New("watcher: already started")

// Stats are cumulative counters for one watcher.
type Stats struct {
	Ticks   int64 `json:"ticks"`
	Changes int64 `json:"changes"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}

type Watcher struct {
	reader clipboard.Reader
	sink   Sink

	sched     scheduler.Scheduler
	source    Source
	skipEmpty bool
	ignore    *filter.IgnoreList
	log       zerolog.Logger
	now       func() time.Time
	sessionID string

	// tickMu serializes ticks with Stop so nothing is delivered after
	// Stop returns.
	tickMu   sync.Mutex
	mu       sync.Mutex
	started  bool
	running  bool
	stopped  bool
	done     chan struct{}
	task     scheduler.Task
	lastSeen string
	seq      int64
	stats    Stats
}

type Option func(*Watcher)

func WithScheduler(s scheduler.Scheduler) Option {
	return func(w *Watcher) { w.sched = s }
}

func WithSource(s Source) Option {
	return func(w *Watcher) { w.source = s }
}

// WithSkipEmpty makes the watcher ignore empty snapshots instead of
// reporting "the clipboard was cleared".
func WithSkipEmpty(skip bool) Option {
	return func(w *Watcher) { w.skipEmpty = skip }
}

func WithFilter(l *filter.IgnoreList) Option {
	return func(w *Watcher) { w.ignore = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

func WithSessionID(id string) Option {
	return func(w *Watcher) { w.sessionID = id }
}

func New(reader clipboard.Reader, sink Sink, opts ...Option) *Watcher {
	w := &Watcher{
		reader: reader,
		sink:   sink,
		sched:  scheduler.NewTicker(),
		source: SourceClipboard,
		log:    zerolog.Nop(),
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sessionID == "" {
		w.sessionID = uuid.New().String()
	}
	w.log = w.log.With().Str("source", string(w.source)).Logger()
	return w
}

// Start begins polling every interval. A watcher can be started once.
func (w *Watcher) Start(interval time.Duration) error {
	if interval <= 0 {
		return errors.ValidationError("poll interval must be positive")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return ErrAlreadyStarted
	}
	w.started = true
	w.running = true
	w.task = w.sched.Every(interval, w.tick)

	w.log.Debug().Dur("interval", interval).Str("session_id", w.sessionID).Msg("watcher started")
	return nil
}

// Stop halts polling. It is idempotent. Once Stop returns no further
// change reaches the sink.
func (w *Watcher) Stop() {
	w.tickMu.Lock()
	task := w.markStopped()
	w.tickMu.Unlock()

	if task != nil {
		task.Stop()
	}
}

// markStopped flips the watcher to stopped and returns the task to cancel,
// or nil if it was already stopped. The caller holds tickMu.
func (w *Watcher) markStopped() scheduler.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	w.running = false
	close(w.done)
	task := w.task
	w.task = nil
	w.log.Debug().Msg("watcher stopped")
	return task
}

func (w *Watcher) tick() {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	if !w.Running() {
		return
	}
	res := w.poll()
	if res.Status == StatusFatal {
		// a Ticker task waits for its own goroutine, which is this one
		if task := w.markStopped(); task != nil {
			go task.Stop()
		}
	}
}

// Poll performs one tick synchronously and reports what happened. It works
// before Start for one-shot reads; after Stop it reads nothing and reports
// StatusUnchanged.
func (w *Watcher) Poll() PollResult {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	w.mu.Lock()
	stopped := w.stopped
	last := w.lastSeen
	w.mu.Unlock()
	if stopped {
		return PollResult{Status: StatusUnchanged, Value: last}
	}
	return w.poll()
}

func (w *Watcher) poll() PollResult {
	w.mu.Lock()
	w.stats.Ticks++
	w.mu.Unlock()

	value, err := w.reader.ReadAll()
	if err != nil {
		return w.failed(err)
	}

	if (w.skipEmpty && value == "") || w.ignore.Ignore(value) {
		w.mu.Lock()
		w.stats.Skipped++
		w.mu.Unlock()
		return PollResult{Status: StatusSkipped, Value: value}
	}

	w.mu.Lock()
	if value == w.lastSeen {
		w.mu.Unlock()
		return PollResult{Status: StatusUnchanged, Value: value}
	}
	w.lastSeen = value
	w.seq++
	w.stats.Changes++
	change := Change{
		Source:     w.source,
		Value:      value,
		Seq:        w.seq,
		ObservedAt: w.now(),
		SessionID:  w.sessionID,
	}
	w.mu.Unlock()

	w.log.Debug().Int64("seq", change.Seq).Int("length", len(value)).Msg("content changed")
	w.sink.ContentChanged(change)
	return PollResult{Status: StatusChanged, Value: value}
}

func (w *Watcher) failed(err error) PollResult {
	w.mu.Lock()
	w.stats.Errors++
	w.mu.Unlock()

	if stderrors.Is(err, clipboard.ErrUnsupported) {
		w.log.Error().Err(err).Msg("clipboard source unavailable, stopping watcher")
		return PollResult{Status: StatusFatal, Err: err}
	}
	w.log.Warn().Err(err).Msg("clipboard read failed, will retry")
	return PollResult{Status: StatusRetryable, Err: err}
}

// Done is closed once the watcher stops, either through Stop or after a
// fatal read.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// LastSeen returns the value most recently delivered to the sink.
func (w *Watcher) LastSeen() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) Source() Source {
	return w.source
}

func (w *Watcher) SessionID() string {
	return w.sessionID
}
