package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theroundhq/marketplace/pkg/logger"
)

// ReconcileGuard is the fast-path duplicate filter for purchase
// confirmations. Every confirmation path (claim endpoint, webhook, Kafka)
// derives the same key from the transaction hash, so a purchase delivered
// over several paths is admitted once. The Mongo purchase record remains
// the durable authority; the guard just keeps duplicate traffic away from
// the database.
type ReconcileGuard interface {
	Acquire(ctx context.Context, txHash string) (bool, error)
	Release(ctx context.Context, txHash string) error
}

type redisReconcileGuard struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisReconcileGuard(cli *redis.Client, ttl time.Duration, l logger.Logger) ReconcileGuard {
	return &redisReconcileGuard{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

func (g *redisReconcileGuard) key(txHash string) string {
	return fmt.Sprintf("reconcile:tx:%s", txHash)
}

// Acquire returns true if this process is the first to claim the
// transaction hash.
func (g *redisReconcileGuard) Acquire(ctx context.Context, txHash string) (bool, error) {
	ok, err := g.cli.SetNX(ctx, g.key(txHash), time.Now().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.l.Errorf(ctx, "redisReconcileGuard.Acquire: %v", err)
		return false, err
	}
	return ok, nil
}

// Release frees the key so a failed reconciliation can be retried.
func (g *redisReconcileGuard) Release(ctx context.Context, txHash string) error {
	if err := g.cli.Del(ctx, g.key(txHash)).Err(); err != nil {
		g.l.Errorf(ctx, "redisReconcileGuard.Release: %v", err)
		return err
	}
	return nil
}
