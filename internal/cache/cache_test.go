package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// Тесты Redis-кэша OTP поверх miniredis:
//   - round-trip Set/Get/Del;
//   - отсутствие ключа -> found=false без ошибки;
//   - истечение TTL;
//   - повторный Set затирает предыдущий код.

func newTestCache(t *testing.T) (OTPCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	c, err := NewRedisCache("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestOTPCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "2205123@kiit.ac.in", "482913", 15*time.Minute))

	code, found, err := c.Get(ctx, "2205123@kiit.ac.in")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "482913", code)

	require.NoError(t, c.Del(ctx, "2205123@kiit.ac.in"))

	_, found, err = c.Get(ctx, "2205123@kiit.ac.in")
	require.NoError(t, err)
	require.False(t, found)
}

func TestOTPCache_MissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	code, found, err := c.Get(context.Background(), "absent@kiit.ac.in")
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, code)
}

func TestOTPCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "2205123@kiit.ac.in", "111111", time.Minute))

	// miniredis позволяет «промотать» время.
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "2205123@kiit.ac.in")
	require.NoError(t, err)
	require.False(t, found)
}

func TestOTPCache_SetOverwrites(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "2205123@kiit.ac.in", "111111", time.Minute))
	require.NoError(t, c.Set(ctx, "2205123@kiit.ac.in", "222222", time.Minute))

	code, found, err := c.Get(ctx, "2205123@kiit.ac.in")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "222222", code)
}
