package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/config"
	"periodic-table-service/internal/logger"
	"periodic-table-service/internal/surface"
	"periodic-table-service/web"
)

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log.Env)
	if err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// loadDocument returns the raw presentation document and its scanned form.
func loadDocument(cfg config.Config) ([]byte, surface.Document, error) {
	var (
		raw []byte
		err error
	)
	if cfg.Server.Document != "" {
		raw, err = os.ReadFile(cfg.Server.Document)
	} else {
		raw, err = web.Document()
	}
	if err != nil {
		return nil, surface.Document{}, fmt.Errorf("read document: %w", err)
	}
	doc, err := surface.LoadDocument(bytes.NewReader(raw))
	if err != nil {
		return nil, surface.Document{}, err
	}
	return raw, doc, nil
}

func controllerOptions(cfg config.Config, log *zap.Logger) []app.Option {
	return []app.Option{
		app.WithLogger(log),
		app.WithLabels(cfg.Labels),
		app.WithFeedbackDelay(config.Duration(cfg.Quiz.FeedbackDelay, app.DefaultFeedbackDelay)),
		app.WithResetConfirmation(config.Duration(cfg.Quiz.ResetConfirmation, app.DefaultResetConfirmation)),
	}
}

func pickPort(flag, configured, fallback string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return fallback
}

const shutdownTimeout = 5 * time.Second
