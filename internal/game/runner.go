package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// maxFrameDelta caps the dt of a single tick after a stall, so a paused
// process does not dump seconds of stillness into one tick.
const maxFrameDelta = 0.25

// Runner owns the match and drives it at a fixed rate. Other goroutines talk
// to it only through Submit and the published snapshots.
type Runner struct {
	match    *Match
	interval time.Duration
	commands chan Command
	logger   log.Log

	latest atomic.Pointer[Snapshot]

	mu       sync.Mutex
	frames   map[uint64]chan Snapshot
	nextSub  uint64
	frameCap int

	done chan struct{}
	once sync.Once
}

func NewRunner(m *Match, cfg config.ServerConfig, logger log.Log) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	rate := cfg.TickRate
	if rate <= 0 {
		rate = 60
	}
	r := &Runner{
		match:    m,
		interval: time.Second / time.Duration(rate),
		commands: make(chan Command, max(cfg.CommandBuffer, 1)),
		logger:   logger.With(log.String("component", "runner")),
		frames:   make(map[uint64]chan Snapshot),
		frameCap: max(cfg.FrameBuffer, 1),
		done:     make(chan struct{}),
	}
	snap := m.Snapshot()
	r.latest.Store(&snap)
	return r
}

// Submit queues a command for the next tick without blocking.
func (r *Runner) Submit(cmd Command) error {
	select {
	case <-r.done:
		return ErrRunnerDone
	default:
	}
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Latest returns the snapshot published after the most recent tick.
func (r *Runner) Latest() Snapshot {
	return *r.latest.Load()
}

// Frames subscribes to snapshots. Slow readers miss frames rather than
// stalling the loop. The returned func cancels the subscription.
func (r *Runner) Frames() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, r.frameCap)

	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := r.nextSub
	r.nextSub++
	r.frames[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			if _, ok := r.frames[id]; ok {
				delete(r.frames, id)
				close(ch)
			}
			r.mu.Unlock()
		})
	}
}

// Run ticks the match until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	defer r.stop()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("simulation started", log.Duration("interval", r.interval))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("simulation stopped", log.Uint64("ticks", r.match.TickCount()))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxFrameDelta {
				dt = maxFrameDelta
			}
			r.Step(dt)
		}
	}
}

// Step drains queued commands, runs one tick and publishes the snapshot.
func (r *Runner) Step(dt float64) {
	r.drain()
	if err := r.match.Tick(dt); err != nil {
		r.logger.Error("tick failed", log.Error(err))
	}
	snap := r.match.Snapshot()
	r.latest.Store(&snap)
	r.broadcast(snap)
}

func (r *Runner) drain() {
	for {
		select {
		case cmd := <-r.commands:
			if err := r.match.Apply(cmd); err != nil {
				r.logger.Warn("command rejected", log.String("type", string(cmd.Kind)), log.Error(err))
			}
		default:
			return
		}
	}
}

func (r *Runner) broadcast(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.frames {
		select {
		case ch <- s:
		default:
		}
	}
}

func (r *Runner) stop() {
	r.once.Do(func() {
		close(r.done)
		r.mu.Lock()
		for id, ch := range r.frames {
			delete(r.frames, id)
			close(ch)
		}
		r.mu.Unlock()
	})
}
