package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupKeyPrefix = "webhook:dedup:"
	dedupTTL       = 24 * time.Hour
)

// Deduper suppresses repeated webhook deliveries. Seen only reads; Mark
// records the fingerprint. The reconciler marks after a delivery was handled
// successfully, so a provider retry of a failed delivery is processed instead
// of suppressed.
type Deduper interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Mark(ctx context.Context, fingerprint string) error
}

// RedisDeduper tracks fingerprints in redis so suppression survives restarts
// and works across replicas.
type RedisDeduper struct {
	client redis.UniversalClient
}

// NewRedisDeduper creates a redis-backed deduper.
func NewRedisDeduper(client redis.UniversalClient) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) Seen(ctx context.Context, fingerprint string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKeyPrefix+fingerprint).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, fingerprint string) error {
	return d.client.Set(ctx, dedupKeyPrefix+fingerprint, 1, dedupTTL).Err()
}

// MemoryDeduper is an in-process fallback for single-instance deployments
// and tests.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryDeduper creates an in-memory deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDeduper) Seen(ctx context.Context, fingerprint string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweep()
	_, ok := d.seen[fingerprint]
	return ok, nil
}

func (d *MemoryDeduper) Mark(ctx context.Context, fingerprint string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweep()
	d.seen[fingerprint] = d.now()
	return nil
}

func (d *MemoryDeduper) sweep() {
	now := d.now()
	for fp, at := range d.seen {
		if now.Sub(at) > dedupTTL {
			delete(d.seen, fp)
		}
	}
}
