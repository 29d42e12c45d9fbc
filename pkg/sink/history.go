package sink

import (
	"context"
	"time"

	"clipwatch/pkg/history"
	"clipwatch/pkg/watcher"

	"github.com/rs/zerolog"
)

// Recorder persists changes. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, c watcher.Change) (history.Entry, error)
}

// History records every change. A failed write is logged and dropped so
// the display keeps working when the database is locked or full.
type History struct {
	Store   Recorder
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewHistory(store Recorder, log zerolog.Logger) *History {
	return &History{Store: store, Timeout: 5 * time.Second, Log: log}
}

func (h *History) ContentChanged(c watcher.Change) {
	ctx := context.Background()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	entry, err := h.Store.Record(ctx, c)
	if err != nil {
		h.Log.Warn().Err(err).Str("source", string(c.Source)).Int64("seq", c.Seq).Msg("failed to record change")
		return
	}
	h.Log.Debug().Str("id", entry.ID).Msg("change recorded")
}
