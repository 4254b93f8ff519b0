package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/config"
	"github.com/moderationhq/modgate/pkg/moderation"
)

const writeTimeout = 2 * time.Second

// VerdictCache stores finished moderation results keyed by content
// hash, so identical items skip the classifier round trip.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewVerdictCache(cfg config.RedisConfig, ttl time.Duration, logger *logrus.Logger) *VerdictCache {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	return &VerdictCache{
		client: redis.NewClient(options),
		ttl:    ttl,
		logger: logger,
	}
}

// NewVerdictCacheWithClient is used by tests to inject a mock client.
func NewVerdictCacheWithClient(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl, logger: logger}
}

func (c *VerdictCache) Get(ctx context.Context, key string) (*moderation.ModerationResult, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("verdict cache read failed")
		}
		return nil, false
	}
	var result moderation.ModerationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		c.logger.WithError(err).Warn("verdict cache entry corrupted")
		return nil, false
	}
	return &result, true
}

func (c *VerdictCache) Set(ctx context.Context, key string, result *moderation.ModerationResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.WithError(err).Warn("verdict cache marshal failed")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("verdict cache write failed")
	}
}

func (c *VerdictCache) Close() error {
	return c.client.Close()
}
