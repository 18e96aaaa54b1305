package docstore

// The Redis driver stores each document as a JSON string under its path key.
// Batch updates run inside WATCH/MULTI so the guard check and every write
// commit together or not at all.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openbooks/ledger/internal/errs"
)

// applyAttempts bounds WATCH retries when another writer races the batch.
const applyAttempts = 5

// Redis is a Store backed by a Redis instance.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("docstore: redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client (tests use this with miniredis).
func NewRedis(client *redis.Client) *Redis { return &Redis{client: client} }

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, path string) (json.RawMessage, error) {
	val, err := r.client.Get(ctx, path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return json.RawMessage(val), nil
}

func (r *Redis) Set(ctx context.Context, path string, doc json.RawMessage) error {
	if err := r.client.Set(ctx, path, []byte(doc), 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Apply(ctx context.Context, writes []Write) error {
	keys := make([]string, len(writes))
	for i, w := range writes {
		keys[i] = w.Path
	}
	txn := func(tx *redis.Tx) error {
		merged := make([][]byte, len(writes))
		for i, w := range writes {
			raw, err := tx.Get(ctx, w.Path).Bytes()
			if errors.Is(err, redis.Nil) {
				return errs.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
			}
			if err := checkGuard(raw, w.Guard); err != nil {
				return err
			}
			out, err := mergeFields(raw, w.Fields)
			if err != nil {
				return err
			}
			merged[i] = out
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, w := range writes {
				pipe.Set(ctx, w.Path, merged[i], 0)
			}
			return nil
		})
		return err
	}
	for i := 0; i < applyAttempts; i++ {
		err := r.client.Watch(ctx, txn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errs.ErrConflict
}

func (r *Redis) Delete(ctx context.Context, path string) error {
	if err := r.client.Del(ctx, path).Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
		}
		out[key] = json.RawMessage(val)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return out, nil
}

func (r *Redis) Query(ctx context.Context, prefix, field string, value any) (map[string]json.RawMessage, error) {
	all, err := r.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	for p, raw := range all {
		if fieldEquals(raw, field, value) {
			out[p] = raw
		}
	}
	return out, nil
}

func (r *Redis) Ready(ctx context.Context) error { return r.client.Ping(ctx).Err() }
