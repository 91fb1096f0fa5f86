package registryclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ecomm/api-gateway/internal/loadbalancer"
)

// CachingClient decorates a Client with a short-TTL Redis read-through
// cache for GetServices, the same shape as the teacher's
// registry.CachingRepository. This is not the persistence the gateway's
// Non-goals exclude: the cache is a rebuildable, expiring view of data
// the external registry owns — on a cold cache (including right after a
// restart) it falls straight through to inner.
type CachingClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachingClient wraps inner with a Redis-backed GetServices cache.
// ttl<=0 defaults to 2 seconds — proxying is latency sensitive, so the
// window is deliberately shorter than the teacher's 15s admin-read cache.
func NewCachingClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachingClient {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &CachingClient{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachingClient) Register(ctx context.Context, port int) (Credential, error) {
	return c.inner.Register(ctx, port)
}

func (c *CachingClient) Health(ctx context.Context) (HealthStatus, error) {
	return c.inner.Health(ctx)
}

// Credential passes through to the inner client when it exposes one,
// so adminapi's credentialReader assertion still works through the
// cache decorator. Returns the zero Credential otherwise.
func (c *CachingClient) Credential() Credential {
	if cr, ok := c.inner.(interface{ Credential() Credential }); ok {
		return cr.Credential()
	}
	return Credential{}
}

func (c *CachingClient) GetServices(ctx context.Context, serviceType string) ([]loadbalancer.Instance, error) {
	key := "gateway:instances:" + serviceType
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []loadbalancer.Instance
		if json.Unmarshal(raw, &cached) == nil {
			return cached, nil
		}
	}
	instances, err := c.inner.GetServices(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(instances); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return instances, nil
}
