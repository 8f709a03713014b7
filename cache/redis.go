package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisOpTimeout = 3 * time.Second

// Redis is a Store backed by a shared Redis instance. The offline warm
// worker writes through it using the same entry layout as the on-device
// Memory store, so a device and the warm pass agree on what an entry is.
//
// The Store contract is synchronous, so each operation runs under a short
// internal timeout; failures degrade to cache misses and are logged rather
// than surfaced, matching the write-only-on-success discipline.
type Redis struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
	now    func() time.Time
}

// NewRedis creates a Redis-backed store. prefix namespaces all keys
// (e.g. "pulse:cache").
func NewRedis(client *redis.Client, prefix string, log zerolog.Logger) *Redis {
	if prefix == "" {
		prefix = "pulse:cache"
	}
	return &Redis{client: client, prefix: prefix, log: log, now: time.Now}
}

func (r *Redis) redisKey(key Key) string {
	return r.prefix + ":" + string(key)
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

// Get implements Store.
func (r *Redis) Get(key Key) (Entry, bool) {
	ctx, cancel := opCtx()
	defer cancel()
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", string(key)).Msg("redis cache get failed")
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		r.log.Warn().Err(err).Str("key", string(key)).Msg("redis cache entry corrupt")
		return Entry{}, false
	}
	return e, true
}

// GetFresh implements Store.
func (r *Redis) GetFresh(key Key, maxAge time.Duration) (Entry, bool) {
	e, ok := r.Get(key)
	if !ok {
		return Entry{}, false
	}
	if e.Stale {
		return e, false
	}
	if maxAge > 0 && r.now().Sub(e.FetchedAt) > maxAge {
		return e, false
	}
	return e, true
}

// Set implements Store.
func (r *Redis) Set(key Key, value json.RawMessage) {
	e := Entry{Value: value, FetchedAt: r.now(), Stale: false}
	data, err := json.Marshal(e)
	if err != nil {
		r.log.Warn().Err(err).Str("key", string(key)).Msg("redis cache marshal failed")
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	if err := r.client.Set(ctx, r.redisKey(key), data, 0).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", string(key)).Msg("redis cache set failed")
	}
}

// MarkStale implements Store.
func (r *Redis) MarkStale(key Key) {
	e, ok := r.Get(key)
	if !ok {
		return
	}
	e.Stale = true
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	if err := r.client.Set(ctx, r.redisKey(key), data, 0).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", string(key)).Msg("redis cache mark stale failed")
	}
}

// Len implements Store.
func (r *Redis) Len() int {
	keys, err := r.scanKeys()
	if err != nil {
		return 0
	}
	return len(keys)
}

// Clear implements Store.
func (r *Redis) Clear() {
	keys, err := r.scanKeys()
	if err != nil || len(keys) == 0 {
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn().Err(err).Msg("redis cache clear failed")
	}
}

// Snapshot implements Store.
func (r *Redis) Snapshot() ([]byte, error) {
	keys, err := r.scanKeys()
	if err != nil {
		return nil, err
	}
	entries := make(map[Key]Entry, len(keys))
	for _, rk := range keys {
		key := Key(rk[len(r.prefix)+1:])
		if e, ok := r.Get(key); ok {
			entries[key] = e
		}
	}
	return json.Marshal(entries)
}

// Restore implements Store.
func (r *Redis) Restore(data []byte) error {
	entries := make(map[Key]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	ctx, cancel := opCtx()
	defer cancel()
	pipe := r.client.Pipeline()
	for key, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		pipe.Set(ctx, r.redisKey(key), payload, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) scanKeys() ([]string, error) {
	ctx, cancel := opCtx()
	defer cancel()
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn().Err(err).Msg("redis cache scan failed")
		return nil, err
	}
	return keys, nil
}
