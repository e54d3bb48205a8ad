package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToAPIDefaults(t *testing.T) {
	tests := []struct {
		name string
		api  API
	}{
		{name: "drive", api: Drive},
		{name: "photos", api: Photos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.api, Config{})

			assert.Equal(t, Defaults[tt.api].RequestsPerSecond, float64(l.limiter.Limit()))
			assert.Equal(t, Defaults[tt.api].Burst, l.limiter.Burst())
		})
	}
}

func TestNew_OverridesOnlyPositiveValues(t *testing.T) {
	l := New(Photos, Config{RequestsPerSecond: 2})

	assert.Equal(t, 2.0, float64(l.limiter.Limit()))
	assert.Equal(t, Defaults[Photos].Burst, l.limiter.Burst())
}

func TestWait_WithinBurstDoesNotBlock(t *testing.T) {
	l := New(Drive, Config{RequestsPerSecond: 0.001, Burst: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
}

func TestWait_ExhaustedBurstRespectsContext(t *testing.T) {
	l := New(Drive, Config{RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx))
}

func TestWait_Cancelled(t *testing.T) {
	l := New(Drive, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
