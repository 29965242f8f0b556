package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/config"
	"periodic-table-service/internal/infra/memory"
	"periodic-table-service/internal/infra/network"
	pgstore "periodic-table-service/internal/infra/postgres"
	redisstore "periodic-table-service/internal/infra/redis"
	transport "periodic-table-service/internal/transport/http"
)

// NewWorkerCmd builds the subcommand running the offline asset cache proxy.
func NewWorkerCmd(configPath, port *string) *cobra.Command {
	var upstream string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Serve assets network-first with an offline cache fallback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), *configPath, *port, upstream)
		},
	}
	cmd.Flags().StringVar(&upstream, "upstream", "", "origin to fetch assets from (overrides config)")
	return cmd
}

func runWorker(ctx context.Context, configPath, portFlag, upstreamFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if upstreamFlag != "" {
		cfg.Worker.Upstream = upstreamFlag
	}
	if cfg.Worker.Upstream == "" {
		return fmt.Errorf("worker upstream not configured")
	}
	fetcher, err := network.NewHTTPFetcher(cfg.Worker.Upstream, config.Duration(cfg.Worker.FetchTimeout, 10*time.Second))
	if err != nil {
		return err
	}
	upstream, err := url.Parse(cfg.Worker.Upstream)
	if err != nil {
		return fmt.Errorf("parse upstream: %w", err)
	}

	store, closeStore, err := openCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	worker := app.NewAssetWorker(fetcher, store, app.AssetWorkerConfig{
		CacheName:    cfg.Worker.CacheVersion,
		Manifest:     cfg.Worker.Manifest,
		OfflinePath:  cfg.Worker.OfflinePath,
		WriteTimeout: config.Duration(cfg.Worker.WriteTimeout, 5*time.Second),
	}, log.Named("worker"))

	if err := worker.Install(ctx); err != nil {
		return err
	}
	if err := worker.Activate(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(worker.State().String()))
	})
	mux.Handle("/", transport.NewAssetHandler(worker, transport.NewUpgradeProxy(upstream, log), log))

	server := &http.Server{
		Addr:         ":" + pickPort(portFlag, cfg.Worker.Port, "8081"),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	serveErr := serve(ctx, server, log)

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := worker.Terminate(drainCtx); err != nil {
		log.Warn("pending cache writes dropped", zap.Error(err))
	}
	return serveErr
}

// openCacheStore picks Redis, then Postgres, then memory, following what is configured.
func openCacheStore(ctx context.Context, cfg config.Config, log *zap.Logger) (app.CacheStore, func(), error) {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("cache store", zap.String("backend", "redis"), zap.String("addr", cfg.Redis.Addr))
		store := redisstore.NewCacheStore(client, config.Duration(cfg.Redis.TTL, 0))
		return store, func() { _ = client.Close() }, nil
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("cache store", zap.String("backend", "postgres"))
		return pgstore.NewCacheStore(pool), pool.Close, nil
	}

	log.Info("cache store", zap.String("backend", "memory"))
	return memory.NewCacheStore(), func() {}, nil
}
