package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often the janitor sweeps when no interval is given.
const DefaultCleanupInterval = 1 * time.Minute

// Sweeper is implemented by stores that need expired sessions removed actively.
// The Redis store relies on key TTLs instead.
type Sweeper interface {
	CleanupExpired() int
	Stats() map[string]int
}

// AsSweeper returns the store's Sweeper, if it has one.
func AsSweeper(store Store) (Sweeper, bool) {
	sw, ok := store.(Sweeper)
	return sw, ok
}

// Janitor periodically removes expired sessions.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

func NewJanitor(sweeper Sweeper, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &Janitor{
		sweeper:  sweeper,
		interval: interval,
	}
}

// Start begins the periodic sweep. Starting a running janitor is a no-op.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	j.running = true

	go j.run(sweepCtx, j.done)
}

// Stop cancels the sweep and waits for it to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	cancel := j.cancel
	done := j.done
	j.mu.Unlock()

	cancel()
	<-done
}

// IsRunning returns whether the janitor is currently running.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) run(ctx context.Context, done chan struct{}) {
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	start := time.Now()
	removed := j.sweeper.CleanupExpired()
	if removed > 0 {
		stats := j.sweeper.Stats()
		log.Printf("Removed %d expired sessions in %s (remaining: %d)", removed, time.Since(start), stats["total"])
	}
}
