package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"periodic-table-service/internal/domain"
)

// Fetcher performs requests against the network.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CacheStore abstracts the persistent cache (in-memory, Redis, Postgres).
// A store holds several named caches, each mapping request keys to responses.
type CacheStore interface {
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
	// PutAll stores every entry or none of them.
	PutAll(ctx context.Context, name string, entries []domain.CacheEntry) error
	Put(ctx context.Context, name, key string, resp domain.CachedResponse) error
	Match(ctx context.Context, name, key string) (domain.CachedResponse, bool, error)
}

// WorkerState is the lifecycle state of an AssetWorker.
type WorkerState int

const (
	WorkerInstalling WorkerState = iota
	WorkerInstalled
	WorkerActive
	WorkerRedundant
)

func (s WorkerState) String() string {
	switch s {
	case WorkerInstalling:
		return "installing"
	case WorkerInstalled:
		return "installed"
	case WorkerActive:
		return "active"
	default:
		return "redundant"
	}
}

// AssetWorkerConfig holds the fixed install manifest and cache naming.
type AssetWorkerConfig struct {
	CacheName    string
	Manifest     []string
	OfflinePath  string
	WriteTimeout time.Duration
}

const offlineHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Offline</title></head>
<body><h1>Offline</h1><p>The periodic table is not available right now.</p></body></html>`

// AssetWorker provides network-first asset delivery with a cache fallback.
type AssetWorker struct {
	fetcher Fetcher
	store   CacheStore
	cfg     AssetWorkerConfig
	log     *zap.Logger

	mu     sync.RWMutex
	state  WorkerState
	writes sync.WaitGroup
}

func NewAssetWorker(fetcher Fetcher, store CacheStore, cfg AssetWorkerConfig, log *zap.Logger) *AssetWorker {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.OfflinePath == "" {
		cfg.OfflinePath = "/index.html"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &AssetWorker{fetcher: fetcher, store: store, cfg: cfg, log: log, state: WorkerInstalling}
}

// State reports the lifecycle state.
func (w *AssetWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *AssetWorker) setState(s WorkerState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install populates the versioned cache with every manifest path. Any failed
// fetch or store leaves the cache untouched and the worker redundant.
func (w *AssetWorker) Install(ctx context.Context) error {
	if w.State() != WorkerInstalling {
		return fmt.Errorf("install in state %s: %w", w.State(), domain.ErrWorkerRedundant)
	}

	entries := make([]domain.CacheEntry, len(w.cfg.Manifest))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range w.cfg.Manifest {
		i, path := i, path
		g.Go(func() error {
			resp, err := w.fetchManifestEntry(gctx, path)
			if err != nil {
				return err
			}
			entries[i] = domain.CacheEntry{Key: path, Response: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.setState(WorkerRedundant)
		w.log.Error("install failed", zap.String("cache", w.cfg.CacheName), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrInstallFailed, err)
	}

	if err := w.store.PutAll(ctx, w.cfg.CacheName, entries); err != nil {
		w.setState(WorkerRedundant)
		w.log.Error("install store failed", zap.String("cache", w.cfg.CacheName), zap.Error(err))
		return fmt.Errorf("%w: store: %w", domain.ErrInstallFailed, err)
	}

	w.setState(WorkerInstalled)
	w.log.Info("installed", zap.String("cache", w.cfg.CacheName), zap.Int("entries", len(entries)))
	return nil
}

func (w *AssetWorker) fetchManifestEntry(ctx context.Context, path string) (domain.CachedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.CachedResponse{}, fmt.Errorf("request %s: %w", path, err)
	}
	resp, err := w.fetchBuffered(ctx, req)
	if err != nil {
		return domain.CachedResponse{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return domain.CachedResponse{}, fmt.Errorf("fetch %s: status %d", path, resp.Status)
	}
	return resp, nil
}

// Activate drops every cache not matching the current version and starts
// intercepting requests.
func (w *AssetWorker) Activate(ctx context.Context) error {
	switch w.State() {
	case WorkerActive:
		return nil
	case WorkerInstalled:
	case WorkerRedundant:
		return domain.ErrWorkerRedundant
	default:
		return domain.ErrNotInstalled
	}

	names, err := w.store.Names(ctx)
	if err != nil {
		return fmt.Errorf("list caches: %w", err)
	}
	for _, name := range names {
		if name == w.cfg.CacheName {
			continue
		}
		if _, err := w.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete cache %s: %w", name, err)
		}
		w.log.Info("deleted stale cache", zap.String("cache", name))
	}

	w.setState(WorkerActive)
	w.log.Info("activated", zap.String("cache", w.cfg.CacheName))
	return nil
}

// Fetch answers a request. Only GET requests of an active worker are
// intercepted; everything else goes to the network untouched.
func (w *AssetWorker) Fetch(ctx context.Context, req *http.Request) (domain.CachedResponse, error) {
	if req.Method != http.MethodGet || w.State() != WorkerActive {
		return w.fetchBuffered(ctx, req)
	}

	key := req.URL.RequestURI()
	resp, err := w.fetchBuffered(ctx, req)
	if err == nil {
		if resp.Status == http.StatusOK {
			w.storeAsync(key, resp.Clone())
		}
		return resp, nil
	}
	w.log.Debug("network failed, using cache", zap.String("key", key), zap.Error(err))

	if cached, ok := w.match(ctx, key); ok {
		cached.Source = domain.SourceCache
		return cached, nil
	}
	if cached, ok := w.match(ctx, w.cfg.OfflinePath); ok {
		cached.Source = domain.SourceOfflinePage
		return cached, nil
	}
	return builtinOffline(), nil
}

// storeAsync writes a copy of a live response without holding up the caller.
// Failures are logged only: a stale cache is preferable to a slow response.
func (w *AssetWorker) storeAsync(key string, resp domain.CachedResponse) {
	// the state check and Add share w.mu with Terminate, so no write starts
	// once Drain may be waiting
	w.mu.Lock()
	if w.state != WorkerActive {
		w.mu.Unlock()
		return
	}
	w.writes.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.WriteTimeout)
		defer cancel()
		if err := w.store.Put(ctx, w.cfg.CacheName, key, resp); err != nil {
			w.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (w *AssetWorker) match(ctx context.Context, key string) (domain.CachedResponse, bool) {
	resp, ok, err := w.store.Match(ctx, w.cfg.CacheName, key)
	if err != nil {
		w.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return domain.CachedResponse{}, false
	}
	return resp, ok
}

// Drain waits for in-flight cache writes or until ctx is done.
func (w *AssetWorker) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Terminate retires the worker and drains pending writes. Writes are no
// longer started once it returns from the state change.
func (w *AssetWorker) Terminate(ctx context.Context) error {
	w.mu.Lock()
	w.state = WorkerRedundant
	w.mu.Unlock()
	return w.Drain(ctx)
}

func (w *AssetWorker) fetchBuffered(ctx context.Context, req *http.Request) (domain.CachedResponse, error) {
	resp, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		return domain.CachedResponse{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CachedResponse{}, fmt.Errorf("read body: %w", err)
	}
	return domain.CachedResponse{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
		Source: domain.SourceNetwork,
	}, nil
}

func builtinOffline() domain.CachedResponse {
	h := http.Header{}
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	return domain.CachedResponse{
		Status: http.StatusServiceUnavailable,
		Header: h,
		Body:   []byte(offlineHTML),
		Source: domain.SourceBuiltin,
	}
}
