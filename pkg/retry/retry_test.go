package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func fastConfig(retries uint64) Config {
	return Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "ping", func() error {
		calls++
		if calls < 3 {
			return errors.New("not ready")
		}
		return nil
	}, fastConfig(5))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")
	err := Do(context.Background(), logger.NewNop(), "ping", func() error {
		calls++
		return sentinel
	}, fastConfig(2))

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad credentials")
	err := Do(context.Background(), logger.NewNop(), "ensure bucket", func() error {
		calls++
		return Permanent(sentinel)
	}, fastConfig(5))

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, logger.NewNop(), "ping", func() error {
		calls++
		return errors.New("down")
	}, fastConfig(5))

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
