package salesreport

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

const (
	cacheVersionKey = "salesreport:version"
	bumpChannel     = "salesreport.bump"
)

// Cache stores upstream reports in Redis under a global version so a single
// Bump invalidates every entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchReport returns the cached report for key or loads and stores it.
// Concurrent misses on the same key share one load.
func (c *Cache) FetchReport(ctx context.Context, key string, loader func(context.Context) (Report, error)) (Report, error) {
	if loader == nil {
		return Report{}, errors.New("salesreport: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var report Report
		if err := json.Unmarshal(payload, &report); err != nil {
			return Report{}, fmt.Errorf("salesreport: decode cached report: %w", err)
		}
		return report, nil
	}
	if !errors.Is(err, redis.Nil) {
		return Report{}, err
	}

	resultCh := c.group.DoChan(key, func() (interface{}, error) {
		report, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(report)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return report, nil
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bumps published by Bump, from
// this process or another one sharing the channel, and raises the local
// version to the announced one. onBump, when set, receives every applied
// version. The subscription is confirmed before ListenForInvalidation returns
// and stops when ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(version int64)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("salesreport: subscribe %s: %w", bumpChannel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := c.applyBump(ctx, msg.Payload)
				if err != nil {
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}

func (c *Cache) applyBump(ctx context.Context, payload string) (int64, error) {
	announced, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return c.client.Incr(ctx, cacheVersionKey).Result()
	}
	current, err := c.Version(ctx)
	if err != nil {
		return 0, err
	}
	if announced <= current {
		return current, nil
	}
	if err := c.client.Set(ctx, cacheVersionKey, announced, 0).Err(); err != nil {
		return 0, err
	}
	return announced, nil
}

// keyReport hashes the filter so free-text category names stay out of the key space.
func keyReport(filter Filter) string {
	sum := blake2b.Sum256([]byte(filter.Key()))
	return "salesreport:report:" + hex.EncodeToString(sum[:16])
}
