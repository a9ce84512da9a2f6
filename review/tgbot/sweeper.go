package tgbot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/review"
)

// Sweeper periodically evicts idle sessions from the registry.
type Sweeper struct {
	registry *review.Registry
	ttl      time.Duration
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper returns a stopped sweeper. A non-positive ttl disables it.
func NewSweeper(registry *review.Registry, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{registry: registry, ttl: ttl, interval: interval}
}

// Start launches the sweep loop. It is a no-op when disabled or running.
func (s *Sweeper) Start(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

// Stop ends the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce evicts idle sessions now and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed := s.registry.Sweep(s.ttl)
	if removed > 0 {
		logger.Info(ctx, "review", "review.sweep",
			slog.Int("evicted", removed),
			slog.Int("sessions", s.registry.Stats().Sessions),
			slog.Duration("ttl", s.ttl),
		)
	}
	return removed
}
