package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// tokenBucketScript recarga el bucket según el tiempo transcurrido y consume un token.
// Devuelve {permitido, tokens restantes, ms hasta el próximo token}.
var tokenBucketScript = goredis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])
	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + intervals * interval_ms
	end

	local allowed = 0
	local retry_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)
	return { allowed, tokens, retry_ms }
`)

// Decision resultado de consumir un token.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter token bucket por clave: Capacity tokens, uno nuevo cada RefillEvery.
// Usa Redis cuando hay cliente; ante un error de Redis decide con el bucket en memoria.
type RateLimiter struct {
	client      *goredis.Client
	prefix      string
	capacity    int
	refillEvery time.Duration
	memory      *MemoryBucket
	log         *logger.Logger
	now         func() time.Time
}

// NewRateLimiter client puede ser nil (solo memoria).
func NewRateLimiter(client *goredis.Client, prefix string, capacity int, refillEvery time.Duration, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		client:      client,
		prefix:      prefix,
		capacity:    capacity,
		refillEvery: refillEvery,
		memory:      NewMemoryBucket(capacity, refillEvery),
		log:         log,
		now:         time.Now,
	}
}

// Limit capacidad del bucket (cabecera X-RateLimit-Limit).
func (l *RateLimiter) Limit() int { return l.capacity }

// Allow consume un token de key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.client == nil {
		return l.memory.Take(key, l.now()), nil
	}
	d, err := l.allowRedis(ctx, key)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit sin redis, usando memoria")
		return l.memory.Take(key, l.now()), nil
	}
	return d, nil
}

func (l *RateLimiter) allowRedis(ctx context.Context, key string) (Decision, error) {
	ttl := int64(math.Ceil(float64(l.capacity)*l.refillEvery.Seconds())) + 1
	res, err := tokenBucketScript.Run(ctx, l.client, []string{l.prefix + ":" + key},
		l.now().UnixMilli(), l.capacity, l.refillEvery.Milliseconds(), ttl,
	).Result()
	if err != nil {
		return Decision{}, err
	}
	arr, ok := res.([]any)
	if !ok || len(arr) != 3 {
		return Decision{}, fmt.Errorf("respuesta inesperada del script: %#v", res)
	}
	return Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Remaining:  int(asInt64(arr[1])),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// MemoryBucket token bucket local al proceso.
type MemoryBucket struct {
	mu          sync.Mutex
	capacity    int
	refillEvery time.Duration
	buckets     map[string]*bucket
	lastSweep   time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

func NewMemoryBucket(capacity int, refillEvery time.Duration) *MemoryBucket {
	return &MemoryBucket{capacity: capacity, refillEvery: refillEvery, buckets: map[string]*bucket{}}
}

// Take mismo algoritmo que el script de Redis.
func (m *MemoryBucket) Take(key string, now time.Time) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{tokens: m.capacity, lastRefill: now}
		m.buckets[key] = b
	}
	if elapsed := now.Sub(b.lastRefill); elapsed > 0 && m.refillEvery > 0 {
		if n := int(elapsed / m.refillEvery); n > 0 {
			b.tokens = min(m.capacity, b.tokens+n)
			b.lastRefill = b.lastRefill.Add(time.Duration(n) * m.refillEvery)
		}
	}
	if b.tokens > 0 {
		b.tokens--
		return Decision{Allowed: true, Remaining: b.tokens}
	}
	retry := m.refillEvery - now.Sub(b.lastRefill)
	if retry < 0 {
		retry = 0
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

// sweep descarta los buckets que ya se recargaron por completo: equivalen a uno nuevo.
// Corre como mucho una vez por ciclo de recarga completa.
func (m *MemoryBucket) sweep(now time.Time) {
	full := m.refillEvery * time.Duration(m.capacity)
	if full <= 0 || now.Sub(m.lastSweep) < full {
		return
	}
	m.lastSweep = now
	for key, b := range m.buckets {
		missing := m.capacity - b.tokens
		if now.Sub(b.lastRefill) >= time.Duration(missing)*m.refillEvery {
			delete(m.buckets, key)
		}
	}
}
