package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBatchCache(client)
	ctx := context.Background()

	payload := []byte(`{"id":"batch-1","trade_count":120}`)
	err := cache.Set(ctx, "batch-1", payload, time.Hour)
	require.NoError(t, err)

	got, err := cache.Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestBatchCache_Get_Miss(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBatchCache(client)

	got, err := cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "cache miss returns nil without error")
}

func TestBatchCache_Get_Expired(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBatchCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "batch-1", []byte(`{}`), time.Second)
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, "batch-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBatchCache_KeysArePrefixed(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBatchCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "batch-1", []byte(`{}`), time.Hour))
	assert.True(t, s.Exists("batch:batch-1"))
}
