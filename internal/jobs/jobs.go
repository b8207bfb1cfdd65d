// Package jobs runs the server's scheduled maintenance.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/repository"
)

const purgeTimeout = time.Minute

// StartScheduler registers the refresh-token purge on schedule (standard
// five-field cron syntax) and starts the scheduler. Stop the returned
// scheduler on shutdown.
func StartScheduler(schedule string, users repository.UserRepository) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()

		if _, err := PurgeRefreshTokens(ctx, users, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("refresh token purge failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token cleanup schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Info().Str("schedule", schedule).Msg("token cleanup scheduled")
	return c, nil
}

// PurgeRefreshTokens deletes revoked refresh tokens and those expired before now.
func PurgeRefreshTokens(ctx context.Context, users repository.UserRepository, now time.Time) (int64, error) {
	n, err := users.DeleteStaleRefreshTokens(ctx, now)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", n).Msg("purged stale refresh tokens")
	return n, nil
}
