package access

import (
	"context"
	"fmt"
	"time"

	platformredis "caseledger/internal/platform/redis"
	"caseledger/pkg/domain"
)

// Cache is a read-side cache for access decisions. Entries are written
// through on grant/revoke and expire after a TTL so a lost invalidation heals
// itself. A nil Cache disables caching.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(caseID domain.CaseID, viewer domain.Principal) string {
	return fmt.Sprintf("access:%s:%s", caseID, viewer)
}

// Get returns (decision, hit). Errors degrade to a miss; the store remains
// the source of truth.
func (c *Cache) Get(ctx context.Context, caseID domain.CaseID, viewer domain.Principal) (bool, bool) {
	if c == nil {
		return false, false
	}
	val, err := c.client.Get(ctx, cacheKey(caseID, viewer)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Set records a decision.
func (c *Cache) Set(ctx context.Context, caseID domain.CaseID, viewer domain.Principal, allowed bool) {
	if c == nil {
		return
	}
	val := "0"
	if allowed {
		val = "1"
	}
	_ = c.client.Set(ctx, cacheKey(caseID, viewer), val, c.ttl).Err()
}

// Invalidate drops the cached decision for one pair after a grant change.
func (c *Cache) Invalidate(ctx context.Context, caseID domain.CaseID, viewer domain.Principal) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKey(caseID, viewer)).Err()
}
