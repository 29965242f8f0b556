package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"periodic-table-service/internal/domain"
)

// CacheStore keeps asset caches in Redis.
// Layout:
//
//	SADD asset-cache:names {name}
//	SADD asset-cache:{name}:keys {key}
//	HSET asset-cache:{name}:entry:{key} status {code} header {json} body {bytes}
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewCacheStore returns a store; a positive ttl expires entries after ttl plus up to 10% jitter.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	return &CacheStore{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const namesKey = "asset-cache:names"

func (s *CacheStore) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, namesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}
	return names, nil
}

func (s *CacheStore) Delete(ctx context.Context, name string) (bool, error) {
	keys, err := s.client.SMembers(ctx, s.keysKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("list keys: %w", err)
	}
	var removed *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, s.entryKey(name, key))
		}
		pipe.Del(ctx, s.keysKey(name))
		removed = pipe.SRem(ctx, namesKey, name)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete cache: %w", err)
	}
	return removed.Val() > 0, nil
}

// PutAll writes all entries inside one MULTI/EXEC so readers never see a partial set.
func (s *CacheStore) PutAll(ctx context.Context, name string, entries []domain.CacheEntry) error {
	fields := make([][]any, len(entries))
	for i, e := range entries {
		f, err := encodeResponse(e.Response)
		if err != nil {
			return err
		}
		fields[i] = f
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, namesKey, name)
		for i, e := range entries {
			s.putPipelined(ctx, pipe, name, e.Key, fields[i])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put entries: %w", err)
	}
	return nil
}

func (s *CacheStore) Put(ctx context.Context, name, key string, resp domain.CachedResponse) error {
	fields, err := encodeResponse(resp)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, namesKey, name)
		s.putPipelined(ctx, pipe, name, key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *CacheStore) Match(ctx context.Context, name, key string) (domain.CachedResponse, bool, error) {
	values, err := s.client.HGetAll(ctx, s.entryKey(name, key)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.CachedResponse{}, false, fmt.Errorf("match: %w", err)
	}
	if len(values) == 0 {
		return domain.CachedResponse{}, false, nil
	}
	resp, err := decodeResponse(values)
	if err != nil {
		return domain.CachedResponse{}, false, err
	}
	return resp, true, nil
}

func (s *CacheStore) putPipelined(ctx context.Context, pipe redis.Pipeliner, name, key string, fields []any) {
	entry := s.entryKey(name, key)
	pipe.Del(ctx, entry)
	pipe.HSet(ctx, entry, fields...)
	pipe.SAdd(ctx, s.keysKey(name), key)
	if ttl := s.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, entry, ttl)
	}
}

func (s *CacheStore) keysKey(name string) string {
	return "asset-cache:" + name + ":keys"
}

func (s *CacheStore) entryKey(name, key string) string {
	return "asset-cache:" + name + ":entry:" + key
}

func (s *CacheStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

func encodeResponse(resp domain.CachedResponse) ([]any, error) {
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	return []any{
		"status", resp.Status,
		"header", string(header),
		"body", string(resp.Body),
	}, nil
}

func decodeResponse(values map[string]string) (domain.CachedResponse, error) {
	status, err := strconv.Atoi(values["status"])
	if err != nil {
		return domain.CachedResponse{}, fmt.Errorf("decode status: %w", err)
	}
	header := http.Header{}
	if raw := values["header"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &header); err != nil {
			return domain.CachedResponse{}, fmt.Errorf("decode header: %w", err)
		}
	}
	return domain.CachedResponse{
		Status: status,
		Header: header,
		Body:   []byte(values["body"]),
	}, nil
}
