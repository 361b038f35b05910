package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// StartupConfig is tuned for provisioning calls made while the app boots
// (database ping, bucket creation) where the dependency may still be starting.
func StartupConfig() Config {
	return Config{
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs operation until it succeeds, returns a permanent error, the retries run out or ctx ends.
func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.MaxElapsedTime = 0
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	notify := func(err error, next time.Duration) {
		log.Warn(
			"Operation failed, retrying",
			"operation", operationName,
			"error", err,
			"next_attempt_in", next.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, policy, notify)
}
