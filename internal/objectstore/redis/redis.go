// Package redis stores objects as Redis hashes with Lua compare-and-set writes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
)

const (
	defaultNamespace = "tracker:obj:" // Hash per object: tracker:obj:{key} -> {body, etag}
	fieldBody        = "body"
	fieldETag        = "etag"
	scanCount        = 200
)

// Script results: 1 written, 0 etag mismatch or key exists, -1 key missing.
var (
	createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
redis.call('HSET', KEYS[1], 'body', ARGV[1], 'etag', ARGV[2])
return 1
`)
	replaceScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'etag')
if not cur then return -1 end
if cur ~= ARGV[3] then return 0 end
redis.call('HSET', KEYS[1], 'body', ARGV[1], 'etag', ARGV[2])
return 1
`)
	deleteScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'etag')
if not cur then return -1 end
if cur ~= ARGV[1] then return 0 end
redis.call('DEL', KEYS[1])
return 1
`)
)

// Bucket implements objectstore.Bucket on a Redis client.
type Bucket struct {
	client    redis.UniversalClient
	namespace string
}

// New wraps client. namespace prefixes every Redis key; empty uses "tracker:obj:".
func New(client redis.UniversalClient, namespace string) *Bucket {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Bucket{client: client, namespace: namespace}
}

func (b *Bucket) Get(ctx context.Context, key string) (*objectstore.Object, error) {
	vals, err := b.client.HMGet(ctx, b.redisKey(key), fieldBody, fieldETag).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	body, okBody := vals[0].(string)
	etag, okTag := vals[1].(string)
	if !okBody || !okTag {
		return nil, objectstore.ErrNotExist
	}
	return &objectstore.Object{Key: key, Data: []byte(body), ETag: etag}, nil
}

func (b *Bucket) Create(ctx context.Context, key string, data []byte) (string, error) {
	etag := uuid.NewString()
	res, err := createScript.Run(ctx, b.client, []string{b.redisKey(key)}, data, etag).Int()
	if err != nil {
		return "", fmt.Errorf("redis create %s: %w", key, err)
	}
	if res == 0 {
		return "", objectstore.ErrPreconditionFailed
	}
	return etag, nil
}

func (b *Bucket) Replace(ctx context.Context, key string, data []byte, etag string) (string, error) {
	next := uuid.NewString()
	res, err := replaceScript.Run(ctx, b.client, []string{b.redisKey(key)}, data, next, etag).Int()
	if err != nil {
		return "", fmt.Errorf("redis replace %s: %w", key, err)
	}
	if err := scriptResult(res); err != nil {
		return "", err
	}
	return next, nil
}

func (b *Bucket) Delete(ctx context.Context, key, etag string) error {
	res, err := deleteScript.Run(ctx, b.client, []string{b.redisKey(key)}, etag).Int()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return scriptResult(res)
}

// Keys collects matching keys with SCAN and yields them sorted. SCAN may repeat
// keys across iterations, so they are de-duplicated first.
func (b *Bucket) Keys(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var (
			cursor uint64
			keys   []string
		)
		match := escapeGlob(b.namespace+prefix) + "*"
		for {
			batch, next, err := b.client.Scan(ctx, cursor, match, scanCount).Result()
			if err != nil {
				yield("", fmt.Errorf("redis scan: %w", err))
				return
			}
			for _, k := range batch {
				keys = append(keys, strings.TrimPrefix(k, b.namespace))
			}
			if next == 0 {
				break
			}
			cursor = next
		}
		slices.Sort(keys)
		for _, k := range slices.Compact(keys) {
			if !yield(k, nil) {
				return
			}
		}
	}
}

func (b *Bucket) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Bucket) redisKey(key string) string {
	return b.namespace + key
}

func scriptResult(res int) error {
	switch res {
	case 1:
		return nil
	case 0:
		return objectstore.ErrPreconditionFailed
	case -1:
		return objectstore.ErrNotExist
	}
	return errors.New("redis: unexpected script result")
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
