package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/store/postgres"
	"github.com/lojista-hq/lojista/internal/telemetry"
)

// sessionJanitor periodically prunes sessions that stopped reporting
// liveness, so crashed clients eventually free their license slots.
type sessionJanitor struct {
	sessions *postgres.SessionStore
	maxIdle  time.Duration
	interval time.Duration
}

func newSessionJanitor(sessions *postgres.SessionStore, maxIdle, interval time.Duration) *sessionJanitor {
	return &sessionJanitor{sessions: sessions, maxIdle: maxIdle, interval: interval}
}

func (j *sessionJanitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := j.sessions.DeleteStale(pruneCtx, j.maxIdle)
			cancel()
			if err != nil {
				log.Warn().Err(err).Msg("session prune failed")
				continue
			}
			if count > 0 {
				telemetry.GetMetrics().SessionsPrunedTotal.Add(ctx, int64(count))
			}
		}
	}
}
