package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/config"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/filter"
	"clipwatch/pkg/history"
	"clipwatch/pkg/logger"
	"clipwatch/pkg/scheduler"
	"clipwatch/pkg/sink"
	"clipwatch/pkg/watcher"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// selectionReadTimeout bounds one selection capture, including the tool
// start-up time.
const selectionReadTimeout = 5 * time.Second

var (
	watchIntervalMS          int
	watchSelection           bool
	watchSelectionIntervalMS int
	watchSkipEmpty           bool
	watchIgnore              []string
	watchIgnoreMode          string
	watchClear               bool
	watchMarkdown            bool
	watchHistory             bool
	watchBackend             string
)

// WatchOptions is the resolved watch configuration: config file values
// overridden by flags.
type WatchOptions struct {
	Interval          time.Duration
	Selection         bool
	SelectionInterval time.Duration
	Settle            time.Duration
	SkipEmpty         bool
	Ignore            []string
	IgnoreMode        string
	MinLength         int
	MaxLength         int
	Clear             bool
	Markdown          bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print every new clipboard value",
	Long: `Polls the clipboard and prints each value that differs from the last one seen.
With --selection the current text selection is watched as well: on Linux the
PRIMARY selection is read, on macOS the copy keystroke is simulated and the
clipboard restored afterwards. An empty selection is never printed.
Runs until interrupted.`,
	Example: `  # Watch the clipboard once a second
  clipwatch watch

  # Also watch the selection and keep a history
  clipwatch watch --selection --history

  # Stream changes as JSON lines, skipping anything that looks like a token
  clipwatch watch --format json --ignore 'ghp_' --ignore-mode contains`,
	RunE: runWatchCmd,
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := resolveWatchOptions(cmd, cfg)

	cb, err := openClipboard(watchBackend)
	if err != nil {
		return err
	}

	var capture clipboard.CapturerFunc
	if opts.Selection && watchBackend != backendMemory {
		capture, err = clipboard.PlatformCapturer()
		if err != nil {
			if stderrors.Is(err, clipboard.ErrUnsupported) {
				return errors.UnsupportedError("Selection capture")
			}
			return err
		}
	}

	var store *history.Store
	if watchHistory || cfg.History.Enabled {
		store, err = openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	out := newCommandOutput(cmd)
	var recorder sink.Recorder
	if store != nil {
		recorder = store
	}
	session, err := NewWatchSession(out, cb, capture, recorder, scheduler.NewTicker(), opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(); err != nil {
		return err
	}
	logger.Info().
		Str("session", session.ID()).
		Dur("interval", opts.Interval).
		Bool("selection", opts.Selection).
		Msg("Watching clipboard")

	runErr := session.Wait(ctx)
	session.Stop()

	if store != nil && cfg.History.Keep > 0 {
		pruneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if n, err := store.Prune(pruneCtx, cfg.History.Keep); err != nil {
			logger.Warn().Err(err).Msg("Failed to prune history")
		} else if n > 0 {
			logger.Debug().Int64("deleted", n).Msg("Pruned history")
		}
		cancel()
	}
	return runErr
}

// resolveWatchOptions starts from the config file and applies every flag
// the user set explicitly.
func resolveWatchOptions(cmd *cobra.Command, cfg *config.Config) WatchOptions {
	opts := WatchOptions{
		Interval:          cfg.Watch.Interval(),
		Selection:         cfg.Watch.Selection,
		SelectionInterval: cfg.Watch.SelectionInterval(),
		Settle:            cfg.Watch.Settle(),
		SkipEmpty:         cfg.Watch.SkipEmpty,
		Ignore:            cfg.Watch.Ignore,
		IgnoreMode:        cfg.Watch.IgnoreMode,
		MinLength:         cfg.Watch.MinLength,
		MaxLength:         cfg.Watch.MaxLength,
		Clear:             watchClear,
		Markdown:          watchMarkdown,
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		opts.Interval = time.Duration(watchIntervalMS) * time.Millisecond
	}
	if flags.Changed("selection") {
		opts.Selection = watchSelection
	}
	if flags.Changed("selection-interval") {
		opts.SelectionInterval = time.Duration(watchSelectionIntervalMS) * time.Millisecond
	}
	if flags.Changed("skip-empty") {
		opts.SkipEmpty = watchSkipEmpty
	}
	if flags.Changed("ignore") {
		opts.Ignore = watchIgnore
	}
	if flags.Changed("ignore-mode") {
		opts.IgnoreMode = watchIgnoreMode
	}
	return opts
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryOpen, err)
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, errors.ErrMsgHistoryOpen, err)
	}
	return store, nil
}

type watchEntry struct {
	w        *watcher.Watcher
	interval time.Duration
}

// WatchSession owns the watchers of one watch run and the sink they share.
type WatchSession struct {
	id       string
	watchers []watchEntry
	closers  []io.Closer
}

// NewWatchSession wires a clipboard watcher, and a selection watcher when
// opts.Selection is set, to a sink built for out. capture may be nil unless
// the selection is watched; recorder may be nil to disable history.
func NewWatchSession(out *OutputWriter, cb clipboard.Clipboard, capture clipboard.CapturerFunc, recorder sink.Recorder, sched scheduler.Scheduler, opts WatchOptions) (*WatchSession, error) {
	if opts.Interval < time.Duration(config.MinIntervalMS)*time.Millisecond {
		return nil, errors.ValidationError(fmt.Sprintf("--interval must be at least %dms", config.MinIntervalMS))
	}
	if opts.Selection && opts.SelectionInterval < time.Duration(config.MinIntervalMS)*time.Millisecond {
		return nil, errors.ValidationError(fmt.Sprintf("--selection-interval must be at least %dms", config.MinIntervalMS))
	}

	mode, err := filter.ParseMode(opts.IgnoreMode)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	ignore, err := filter.NewIgnoreList(opts.Ignore, mode)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	ignore.MinLength = opts.MinLength
	ignore.MaxLength = opts.MaxLength

	s := &WatchSession{id: uuid.New().String()}
	log := logger.With("watch")

	var display watcher.Sink
	if out.IsStructured() {
		structured := sink.NewStructured(out.writer, out.SinkFormat(), func(err error) {
			log.Warn().Err(err).Msg("Failed to write change")
		})
		s.closers = append(s.closers, structured)
		display = structured
	} else {
		termOpts := []sink.TerminalOption{sink.WithClearScreen(opts.Clear)}
		if out.writer != io.Writer(os.Stdout) {
			termOpts = append(termOpts, sink.WithoutColor())
		}
		display = sink.NewTerminal(out.writer, termOpts...)
	}
	if opts.Markdown {
		display = sink.NewMarkdown(display, log)
	}

	var shared watcher.Sink = display
	if recorder != nil {
		shared = sink.Multi{display, sink.NewHistory(recorder, log)}
	}

	// The selection capture swaps the clipboard contents; holding this lock
	// hides the swap from the clipboard watcher.
	lock := &sync.Mutex{}
	locked := clipboard.Locked{Clipboard: cb, Lock: lock}

	common := []watcher.Option{
		watcher.WithScheduler(sched),
		watcher.WithSkipEmpty(opts.SkipEmpty),
		watcher.WithFilter(ignore),
		watcher.WithSessionID(s.id),
	}

	clip := watcher.New(locked, shared, append(common,
		watcher.WithSource(watcher.SourceClipboard),
		watcher.WithLogger(logger.With("watcher")),
	)...)
	s.watchers = append(s.watchers, watchEntry{w: clip, interval: opts.Interval})

	if opts.Selection {
		var capturer clipboard.SelectionCapturer
		if capture != nil {
			capturer = capture(cb, lock, opts.Settle)
		}
		reader := clipboard.SelectionReader{Capturer: capturer, Timeout: selectionReadTimeout}
		// no selection is not a value; the last selection stays current
		sel := watcher.New(reader, shared, append(common,
			watcher.WithSkipEmpty(true),
			watcher.WithSource(watcher.SourceSelection),
			watcher.WithLogger(logger.With("watcher")),
		)...)
		s.watchers = append(s.watchers, watchEntry{w: sel, interval: opts.SelectionInterval})
	}

	return s, nil
}

func (s *WatchSession) ID() string {
	return s.id
}

func (s *WatchSession) Watchers() []*watcher.Watcher {
	ws := make([]*watcher.Watcher, 0, len(s.watchers))
	for _, e := range s.watchers {
		ws = append(ws, e.w)
	}
	return ws
}

// Start starts every watcher. On failure the ones already started are
// stopped.
func (s *WatchSession) Start() error {
	for i, e := range s.watchers {
		if err := e.w.Start(e.interval); err != nil {
			for _, started := range s.watchers[:i] {
				started.w.Stop()
			}
			return err
		}
	}
	return nil
}

// Wait blocks until ctx is done or every watcher has stopped on its own.
// The latter only happens when the clipboard cannot be read at all.
func (s *WatchSession) Wait(ctx context.Context) error {
	allDone := make(chan struct{})
	go func() {
		for _, e := range s.watchers {
			<-e.w.Done()
		}
		close(allDone)
	}()

	select {
	case <-ctx.Done():
		return nil
	case <-allDone:
		return errors.UnsupportedError("Clipboard access")
	}
}

// Stop stops every watcher and flushes the sink. No change is delivered
// after Stop returns.
func (s *WatchSession) Stop() {
	for _, e := range s.watchers {
		e.w.Stop()
		st := e.w.Stats()
		logger.Debug().
			Str("source", string(e.w.Source())).
			Int64("ticks", st.Ticks).
			Int64("changes", st.Changes).
			Int64("errors", st.Errors).
			Msg("Watcher stopped")
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush output")
		}
	}
}

func init() {
	watchCmd.Flags().IntVar(&watchIntervalMS, "interval", config.DefaultIntervalMS, "Clipboard poll interval in milliseconds")
	watchCmd.Flags().BoolVar(&watchSelection, "selection", false, "Also watch the current text selection")
	watchCmd.Flags().IntVar(&watchSelectionIntervalMS, "selection-interval", config.DefaultSelectionIntervalMS, "Selection poll interval in milliseconds")
	watchCmd.Flags().BoolVar(&watchSkipEmpty, "skip-empty", false, "Do not report an emptied clipboard")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil, "Patterns of values to ignore (repeatable)")
	watchCmd.Flags().StringVar(&watchIgnoreMode, "ignore-mode", "contains", "How --ignore patterns match (exact, contains, regex, fuzzy)")
	watchCmd.Flags().BoolVar(&watchClear, "clear", false, "Clear the screen before printing each change")
	watchCmd.Flags().BoolVar(&watchMarkdown, "markdown", false, "Convert HTML values to Markdown before printing")
	watchCmd.Flags().BoolVar(&watchHistory, "history", false, "Record every change in the history database")
	watchCmd.Flags().StringVar(&watchBackend, "backend", backendSystem, "Clipboard backend (system, memory)")
}
