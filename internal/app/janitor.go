package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SchedulePurger is the part of the service the janitor drives.
type SchedulePurger interface {
	PurgeExpiredSchedules(ctx context.Context) (int, error)
}

// RunJanitor purges expired schedule entries once at start and then every interval
// until ctx is cancelled.
func RunJanitor(ctx context.Context, svc SchedulePurger, interval time.Duration, log zerolog.Logger) {
	purgeOnce(ctx, svc, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("janitor stopped")
			return
		case <-ticker.C:
			purgeOnce(ctx, svc, log)
		}
	}
}

func purgeOnce(ctx context.Context, svc SchedulePurger, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := svc.PurgeExpiredSchedules(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("schedule purge failed")
		return
	}
	log.Debug().Int("purged", n).Dur("took", time.Since(start)).Msg("schedule purge complete")
}
