// Package cache provides a Redis read-through cache in front of the policy
// store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/port"
)

const keyPrefix = "credit:policy:"

// Observer counts cache lookups. observability.Metrics implements it.
type Observer interface {
	PolicyCacheRequest(result string)
}

type noopObserver struct{}

func (noopObserver) PolicyCacheRequest(string) {}

// Source is the authoritative store behind the cache.
type Source interface {
	port.PolicyStore
	port.PolicyPublisher
}

// PolicyCache serves current policies from Redis and falls back to the
// source on a miss. Redis failures never fail a read; the source is asked
// instead. Publishing drops the cached entry after the source accepted it.
type PolicyCache struct {
	client   redis.UniversalClient
	source   Source
	ttl      time.Duration
	observer Observer
	logger   *slog.Logger
}

func NewPolicyCache(client redis.UniversalClient, source Source, ttl time.Duration, observer Observer, logger *slog.Logger) *PolicyCache {
	if observer == nil {
		observer = noopObserver{}
	}
	return &PolicyCache{client: client, source: source, ttl: ttl, observer: observer, logger: logger}
}

func (c *PolicyCache) CurrentPolicy(ctx context.Context, bankCode string) (model.PartnerBankPolicy, error) {
	key := keyPrefix + bankCode

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p model.PartnerBankPolicy
		jsonErr := json.Unmarshal(raw, &p)
		if jsonErr == nil {
			c.observer.PolicyCacheRequest("hit")
			return p, nil
		}
		c.logger.WarnContext(ctx, "dropping unreadable cached policy", "bank_code", bankCode, "error", jsonErr)
		c.observer.PolicyCacheRequest("error")
	case errors.Is(err, redis.Nil):
		c.observer.PolicyCacheRequest("miss")
	default:
		c.logger.WarnContext(ctx, "policy cache unavailable", "bank_code", bankCode, "error", err)
		c.observer.PolicyCacheRequest("error")
	}

	p, err := c.source.CurrentPolicy(ctx, bankCode)
	if err != nil {
		return model.PartnerBankPolicy{}, err
	}

	if encoded, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "policy cache write failed", "bank_code", bankCode, "error", err)
		}
	}
	return p, nil
}

func (c *PolicyCache) Publish(ctx context.Context, p model.PartnerBankPolicy) error {
	if err := c.source.Publish(ctx, p); err != nil {
		return err
	}
	if err := c.Invalidate(ctx, p.BankCode); err != nil {
		// The entry expires on its own; readers see the new version after ttl.
		c.logger.WarnContext(ctx, "policy cache invalidation failed", "bank_code", p.BankCode, "error", err)
	}
	return nil
}

// Invalidate drops the cached policy of bankCode.
func (c *PolicyCache) Invalidate(ctx context.Context, bankCode string) error {
	if err := c.client.Del(ctx, keyPrefix+bankCode).Err(); err != nil {
		return fmt.Errorf("invalidate policy %s: %w", bankCode, err)
	}
	return nil
}

// Ping reports whether Redis is reachable, for readiness checks.
func (c *PolicyCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
