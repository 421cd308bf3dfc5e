// Package drain runs fire-and-forget background tasks on a fixed tick.
package drain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Drain queues tasks and launches them on the next tick. Errors and panics
// are logged and never retried; nothing flows back to the enqueuer.
type Drain struct {
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pending []Task

	running sync.WaitGroup
}

// New creates a drain that launches pending tasks every interval.
func New(interval time.Duration, logger zerolog.Logger) *Drain {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Drain{
		interval: interval,
		logger:   logger.With().Str("component", "drain").Logger(),
	}
}

// Enqueue adds a task for the next tick.
func (d *Drain) Enqueue(name string, run func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, Task{Name: name, Run: run})
}

// Pending returns the number of tasks waiting for a tick.
func (d *Drain) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Run launches pending tasks on every tick until ctx is done. Launched
// tasks receive ctx. Tasks still pending at shutdown stay queued and are
// launched by the next Run.
func (d *Drain) Run(ctx context.Context) error {
	d.logger.Debug().Dur("interval", d.interval).Msg("drain started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if n := d.Pending(); n > 0 {
				d.logger.Warn().Int("pending", n).Msg("drain stopped, tasks kept for the next run")
			}
			return ctx.Err()
		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

// Wait blocks until every launched task has returned. Call it after Run
// has returned.
func (d *Drain) Wait() {
	d.running.Wait()
}

// flush swaps the pending list out under the lock and launches each task
// outside it.
func (d *Drain) flush(ctx context.Context) int {
	d.mu.Lock()
	tasks := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, task := range tasks {
		d.running.Add(1)
		go func() {
			defer d.running.Done()
			d.run(ctx, task)
		}()
	}
	return len(tasks)
}

func (d *Drain) run(ctx context.Context, task Task) {
	start := time.Now()
	err := safeRun(ctx, task)
	if err != nil {
		d.logger.Error().Err(err).Str("task", task.Name).Dur("took", time.Since(start)).Msg("task failed")
		return
	}
	d.logger.Debug().Str("task", task.Name).Dur("took", time.Since(start)).Msg("task done")
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}
