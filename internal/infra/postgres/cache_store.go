package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"periodic-table-service/internal/domain"
)

// CacheStore keeps asset caches in the cache_entries table.
type CacheStore struct {
	pool *pgxpool.Pool
}

func NewCacheStore(pool *pgxpool.Pool) *CacheStore {
	return &CacheStore{pool: pool}
}

const upsertEntry = `INSERT INTO cache_entries (cache_name, request_key, status, header, body, stored_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (cache_name, request_key)
DO UPDATE SET status = EXCLUDED.status, header = EXCLUDED.header, body = EXCLUDED.body, stored_at = EXCLUDED.stored_at`

func (s *CacheStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT cache_name FROM cache_entries ORDER BY cache_name`)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *CacheStore) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cache_entries WHERE cache_name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete cache: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PutAll upserts every entry in a single transaction.
func (s *CacheStore) PutAll(ctx context.Context, name string, entries []domain.CacheEntry) error {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		for _, e := range entries {
			header, body, err := encodeResponse(e.Response)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, upsertEntry, name, e.Key, e.Response.Status, header, body); err != nil {
				return fmt.Errorf("upsert %s: %w", e.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put entries: %w", err)
	}
	return nil
}

func (s *CacheStore) Put(ctx context.Context, name, key string, resp domain.CachedResponse) error {
	header, body, err := encodeResponse(resp)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertEntry, name, key, resp.Status, header, body); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *CacheStore) Match(ctx context.Context, name, key string) (domain.CachedResponse, bool, error) {
	var (
		status int
		raw    []byte
		body   []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT status, header, body FROM cache_entries WHERE cache_name = $1 AND request_key = $2`,
		name, key,
	).Scan(&status, &raw, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CachedResponse{}, false, nil
	}
	if err != nil {
		return domain.CachedResponse{}, false, fmt.Errorf("match: %w", err)
	}

	header := http.Header{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &header); err != nil {
			return domain.CachedResponse{}, false, fmt.Errorf("decode header: %w", err)
		}
	}
	return domain.CachedResponse{Status: status, Header: header, Body: body}, true, nil
}

// encodeResponse maps nil header and body to their empty forms; both columns are NOT NULL.
func encodeResponse(resp domain.CachedResponse) ([]byte, []byte, error) {
	h := resp.Header
	if h == nil {
		h = http.Header{}
	}
	header, err := json.Marshal(h)
	if err != nil {
		return nil, nil, fmt.Errorf("encode header: %w", err)
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	return header, body, nil
}
