// Package scheduler runs periodic tasks. The Ticker implementation drives
// real watchers; Manual lets tests fire ticks deterministically.
package scheduler

import (
	"sync"
	"time"
)

// Task is a handle to a periodic task.
type Task interface {
	// Stop cancels the task. It is safe to call more than once.
	Stop()
}

// Scheduler registers tasks that run every interval.
type Scheduler interface {
	Every(interval time.Duration, task func()) Task
}

// Ticker schedules tasks on time.Ticker. Each task gets its own goroutine,
// so runs of the same task never overlap.
type Ticker struct{}

func NewTicker() *Ticker {
	return &Ticker{}
}

func (Ticker) Every(interval time.Duration, task func()) Task {
	t := &tickerTask{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run(task)
	return t
}

type tickerTask struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func (t *tickerTask) run(task func()) {
	defer t.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			// a tick may race with Stop
			select {
			case <-t.done:
				return
			default:
			}
			task()
		}
	}
}

// Stop halts the ticker and waits for the task goroutine to exit. Calling
// Stop from inside the task would deadlock; use the returned handle from
// another goroutine.
func (t *tickerTask) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
	t.wg.Wait()
}

// Manual is a Scheduler whose ticks are fired explicitly with Tick.
type Manual struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	owner    *Manual
	interval time.Duration
	fn       func()
	stopped  bool
}

func (m *Manual) Every(interval time.Duration, task func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{owner: m, interval: interval, fn: task}
	m.tasks = append(m.tasks, t)
	return t
}

// Tick runs every live task once, in registration order, and returns how
// many ran.
func (m *Manual) Tick() int {
	m.mu.Lock()
	live := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.mu.Unlock()

	ran := 0
	for _, t := range live {
		m.mu.Lock()
		stopped := t.stopped
		m.mu.Unlock()
		if stopped {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Active reports how many tasks have not been stopped.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Intervals returns the intervals of live tasks in registration order.
func (m *Manual) Intervals() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Duration
	for _, t := range m.tasks {
		if !t.stopped {
			out = append(out, t.interval)
		}
	}
	return out
}

func (t *manualTask) Stop() {
	t.owner.mu.Lock()
	t.stopped = true
	t.owner.mu.Unlock()
}
