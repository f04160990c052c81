package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "rates:UK_IRELAND", []byte(`{"zone":"UK_IRELAND"}`), time.Minute))

	b, ok, err := c.Get(ctx, "rates:UK_IRELAND")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"zone":"UK_IRELAND"}`), b)

	require.NoError(t, c.Del(ctx, "rates:UK_IRELAND"))

	_, ok, err = c.Get(ctx, "rates:UK_IRELAND")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_Miss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	_, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}
