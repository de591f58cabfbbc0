// Package cache keeps revoked token ids in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aapokoiv/nutrition-tracker/metrics"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:jti:"

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// Connect returns nil when addr is empty or Redis does not answer a ping.
// Callers then run without token revocation.
func Connect(ctx context.Context, addr string, log *slog.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warn("invalid REDIS_ADDR, continuing without revocation", "addr", addr, "err", err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(metricsHook{})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, continuing without revocation", "addr", addr, "err", err)
		_ = rdb.Close()
		return nil
	}
	log.Info("redis connected", "addr", addr)
	return rdb
}

// Revocations is a deny list of token ids. A nil client makes every
// method a no-op.
type Revocations struct {
	rdb *redis.Client
}

func NewRevocations(rdb *redis.Client) *Revocations { return &Revocations{rdb: rdb} }

func (r *Revocations) Enabled() bool { return r != nil && r.rdb != nil }

// Revoke keeps jti denied until the token would have expired anyway.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !r.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
