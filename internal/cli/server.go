package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/domain"
	transport "periodic-table-service/internal/transport/http"
	"periodic-table-service/web"
)

// NewStartCmd builds the CLI subcommand to start the web server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Serve the periodic table and its websocket controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	raw, doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	opts := controllerOptions(cfg, log)

	// Fail at startup rather than on the first connection if the document is malformed.
	elements, err := domain.CollectElements(doc.Tiles)
	if err != nil {
		return err
	}
	log.Info("document loaded", zap.Int("elements", len(elements)), zap.Int("slots", len(doc.Slots)))

	wsHandler := transport.NewWSHandler(doc, func(s app.Surface) (*app.Controller, error) {
		return app.NewController(s, opts...)
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/", transport.NewDocumentHandler(raw, web.Static()))

	finalPort := pickPort(portFlag, cfg.Server.Port, "8080")
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return serve(ctx, server, log)
}

// serve runs server until SIGINT, SIGTERM or ctx cancellation.
func serve(ctx context.Context, server *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
