package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/domain"
	"periodic-table-service/internal/infra/network"
	pgstore "periodic-table-service/internal/infra/postgres"
	pgmigrations "periodic-table-service/internal/infra/postgres/migrations"
	infraredis "periodic-table-service/internal/infra/redis"
)

func TestWorkerOfflineWithPostgresStore(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	exerciseWorker(t, ctx, pgstore.NewCacheStore(pool))
}

func TestWorkerOfflineWithRedisStore(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	exerciseWorker(t, ctx, infraredis.NewCacheStore(redisClient, 5*time.Minute))
}

// exerciseWorker installs against a live origin, takes the origin down and
// checks every fallback step against the given store.
func exerciseWorker(t *testing.T, ctx context.Context, store app.CacheStore) {
	t.Helper()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>table</html>"))
		case "/styles.css":
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte("body{}"))
		case "/icons/icon-192.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G', 0x00})
		default:
			http.NotFound(w, r)
		}
	}))
	defer origin.Close()

	fetcher, err := network.NewHTTPFetcher(origin.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("fetcher: %v", err)
	}

	if err := store.Put(ctx, "periodic-table-cache-v0", "/", domain.CachedResponse{Status: 200, Body: []byte("stale")}); err != nil {
		t.Fatalf("seed stale cache: %v", err)
	}

	worker := app.NewAssetWorker(fetcher, store, app.AssetWorkerConfig{
		CacheName:   "periodic-table-cache-v1",
		Manifest:    []string{"/", "/index.html", "/styles.css", "/icons/icon-192.png"},
		OfflinePath: "/index.html",
	}, nil)
	if err := worker.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := worker.Activate(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}
	names, err := store.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != "periodic-table-cache-v1" {
		t.Fatalf("expected only the current cache, got %v", names)
	}

	// take the origin down; further fetches fail to connect
	origin.Close()

	req, _ := http.NewRequest(http.MethodGet, "/icons/icon-192.png", nil)
	resp, err := worker.Fetch(ctx, req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.Source != domain.SourceCache || string(resp.Body) != string([]byte{0x89, 'P', 'N', 'G', 0x00}) {
		t.Fatalf("expected cached icon, got %+v", resp)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected cached headers, got %v", resp.Header)
	}

	req, _ = http.NewRequest(http.MethodGet, "/elements/Fe", nil)
	resp, err = worker.Fetch(ctx, req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.Source != domain.SourceOfflinePage || string(resp.Body) != "<html>table</html>" {
		t.Fatalf("expected offline page, got %+v", resp)
	}

	if err := worker.Terminate(ctx); err != nil {
		t.Fatalf("terminate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "assets", "POSTGRES_PASSWORD": "assetspass", "POSTGRES_DB": "assetsdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://assets:assetspass@%s:%s/assetsdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
