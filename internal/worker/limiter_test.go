package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/thermoparam/internal/model"
)

func timeoutContext(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func shortContext(t *testing.T) context.Context {
	return timeoutContext(t, 20*time.Millisecond)
}

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 5, NewLimiter(10, 5).defaultBurst)
	assert.Equal(t, 5, NewLimiter(10, -1).defaultBurst)
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://libraries.example/pcsaft.json"))
	require.NoError(t, limiter.Wait(ctx, "https://mirror.example/pcsaft.json"))
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	require.NoError(t, limiter.Wait(context.Background(), "https://libraries.example/a.json"))
	assert.Error(t, limiter.Wait(shortContext(t), "https://libraries.example/b.json"), "token of the same host is used up")
	assert.NoError(t, limiter.Wait(shortContext(t), "https://mirror.example/a.json"))
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx := timeoutContext(t, time.Second)
	for i := 0; i < 20; i++ {
		require.NoError(t, limiter.Wait(ctx, "https://libraries.example/a.json"))
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(1000, 10)
	limiter.SetHostRate("slow.example", 0.001, 1)

	require.NoError(t, limiter.Wait(context.Background(), "https://slow.example/a.json"))
	assert.Error(t, limiter.Wait(shortContext(t), "https://slow.example/a.json"))
	assert.NoError(t, limiter.Wait(shortContext(t), "https://fast.example/a.json"))
}

func TestNewLimiterFromConfig(t *testing.T) {
	limiter := NewLimiterFromConfig(model.RateLimitConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         1,
		Hosts: map[string]float64{
			"mirror.example": 0,
		},
	})

	require.NoError(t, limiter.Wait(context.Background(), "https://libraries.example/a.json"))
	assert.Error(t, limiter.Wait(shortContext(t), "https://libraries.example/a.json"))

	ctx := timeoutContext(t, time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(ctx, "https://mirror.example/a.json"), "mirror.example is not limited")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	require.NoError(t, limiter.Wait(context.Background(), "https://libraries.example/a.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx, "https://libraries.example/a.json"))
}

func TestLimiter_BadURL(t *testing.T) {
	limiter := NewLimiter(1, 1)
	assert.Error(t, limiter.Wait(context.Background(), "://bad"))
}
