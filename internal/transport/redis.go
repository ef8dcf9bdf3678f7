package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	traceKeyPrefix = "quill:trace:"
	lockKeyPrefix  = "quill:lock:"
)

type RedisTransport struct {
	rdb *redis.Client
}

func NewRedisTransport(rdb *redis.Client) *RedisTransport {
	return &RedisTransport{
		rdb: rdb,
	}
}

func (t *RedisTransport) SetTrace(ctx context.Context, trace *IngestTrace) error {
	if len(trace.ID) == 0 {
		return fmt.Errorf("invalid trace ID")
	}

	key := traceKeyPrefix + trace.ID
	if err := t.rdb.HSet(ctx, key, trace).Err(); err != nil {
		return err
	}
	return t.rdb.Expire(ctx, key, TraceExpiry).Err()
}

func (t *RedisTransport) GetTrace(ctx context.Context, traceId string) (*IngestTrace, error) {
	res := t.rdb.HGetAll(ctx, traceKeyPrefix+traceId)
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, fmt.Errorf("trace not found: %s", traceId)
	}

	var trace IngestTrace
	if err := res.Scan(&trace); err != nil {
		return nil, err
	}
	return &trace, nil
}

func (t *RedisTransport) Acquire(ctx context.Context, docId string, ttl time.Duration) (bool, error) {
	return t.rdb.SetNX(ctx, lockKeyPrefix+docId, 1, ttl).Result()
}

func (t *RedisTransport) Release(ctx context.Context, docId string) error {
	err := t.rdb.Del(ctx, lockKeyPrefix+docId).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
