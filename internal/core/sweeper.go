package core

// sweeper.go expires import sessions that were neither committed nor
// discarded. Sessions hold the whole parsed file, so abandoned uploads must
// not live for the lifetime of the process.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the sweeper runs when none is given.
const DefaultSweepInterval = 5 * time.Minute

// StartSessionSweeper removes sessions idle for longer than the configured
// TTL every interval. It blocks until ctx is cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "interval", interval, "ttl", s.cfg.SessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.sweepExpired(); n > 0 {
				slog.Info("expired import sessions", "count", n)
			}
		}
	}
}

// sweepExpired removes idle sessions and returns how many were removed.
// Sessions locked by an in-flight call are left for the next sweep.
func (s *Service) sweepExpired() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.updatedAt.Before(cutoff) {
			sess.closed = true
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	active := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(active)
	return removed
}
