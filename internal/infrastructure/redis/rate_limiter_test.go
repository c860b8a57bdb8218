package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

func TestMemoryBucket_AgotaYRecarga(t *testing.T) {
	b := NewMemoryBucket(3, 10*time.Second)
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d := b.Take("ip:1", t0)
		require.True(t, d.Allowed, "intento %d", i)
		assert.Equal(t, 2-i, d.Remaining)
	}
	d := b.Take("ip:1", t0.Add(4*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 6*time.Second, d.RetryAfter)

	// otra clave tiene su propio bucket
	assert.True(t, b.Take("ip:2", t0).Allowed)

	d = b.Take("ip:1", t0.Add(21*time.Second))
	assert.True(t, d.Allowed, "dos tokens recargados")
	assert.Equal(t, 1, d.Remaining)
}

func TestMemoryBucket_NoSuperaCapacidad(t *testing.T) {
	b := NewMemoryBucket(2, time.Second)
	t0 := time.Now()
	b.Take("k", t0)
	d := b.Take("k", t0.Add(time.Hour))
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestMemoryBucket_DescartaClavesRecargadas(t *testing.T) {
	b := NewMemoryBucket(2, 10*time.Second)
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	b.Take("ip:1", t0)
	b.Take("ip:2", t0.Add(15*time.Second))
	b.Take("ip:2", t0.Add(15*time.Second))
	require.Equal(t, 2, len(b.buckets))

	// a t0+20s ip:1 ya está lleno; ip:2 sigue agotado
	b.Take("ip:3", t0.Add(20*time.Second))
	assert.Equal(t, 2, len(b.buckets), "ip:1 descartado, quedan ip:2 e ip:3")
	assert.False(t, b.Take("ip:2", t0.Add(20*time.Second)).Allowed, "el descarte no regala tokens")

	d := b.Take("ip:1", t0.Add(20*time.Second))
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestRateLimiter_SinClienteUsaMemoria(t *testing.T) {
	l := NewRateLimiter(nil, "login", 1, time.Minute, logger.Nop())
	ctx := context.Background()

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.Equal(t, 1, l.Limit())
}
