package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAwakener(attempts int, probe func(ctx context.Context) error) (*Awakener, *[]time.Duration) {
	var delays []time.Duration
	a := &Awakener{
		attempts: attempts,
		base:     time.Second,
		probe:    probe,
		sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}
	return a, &delays
}

func TestAwakenerFirstProbeSucceeds(t *testing.T) {
	calls := 0
	a, delays := newTestAwakener(3, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, a.Ensure(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestAwakenerRecoversAfterRetries(t *testing.T) {
	calls := 0
	a, delays := newTestAwakener(4, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("the database system is starting up")
		}
		return nil
	})

	require.NoError(t, a.Ensure(context.Background()))
	assert.Equal(t, 3, calls)
	// Backoff doubles per retry.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestAwakenerExhaustsAttempts(t *testing.T) {
	calls := 0
	a, delays := newTestAwakener(3, func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	err := a.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable after 3 attempts")
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestAwakenerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Awakener{
		attempts: 5,
		base:     time.Second,
		probe: func(context.Context) error {
			return errors.New("connection refused")
		},
		sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	err := a.Ensure(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
