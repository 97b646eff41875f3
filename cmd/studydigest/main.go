package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/studydigest/internal/adapter/driven/aesgcm"
	"github.com/ericfisherdev/studydigest/internal/adapter/driven/openrouter"
	sqliteadapter "github.com/ericfisherdev/studydigest/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/studydigest/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/studydigest/internal/adapter/driving/web"
	"github.com/ericfisherdev/studydigest/internal/application"
	"github.com/ericfisherdev/studydigest/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env when present; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg.LogLevel)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"model", cfg.Model,
		"chunk_tokens", cfg.ChunkTokens,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath, "schema_version", version)

	// 4. Wire the credential pool. A missing master secret is not fatal: the
	// service starts and every credential operation reports it.
	if !cfg.HasEncryptionKey() {
		slog.Warn("no encryption key configured, credential operations will fail",
			"env", config.EnvPrefix+"_ENCRYPTION_KEY",
		)
	}
	keys := application.NewKeyService(
		sqliteadapter.NewCredentialRepo(db),
		aesgcm.New(cfg.EncryptionKey),
	)

	// 5. Wire the completion provider and summarizer.
	provider := openrouter.NewClient(openrouter.Config{
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.Model,
		AppURL:  cfg.AppURL,
		AppName: cfg.AppName,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	})
	summarizer := application.NewSummarizer(keys, provider, cfg.ChunkTokens)

	// 6. Register REST and GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.NewHandler(keys, summarizer, provider, slog.Default()).RegisterRoutes(mux)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(keys, summarizer, slog.Default()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chunked summaries make several sequential provider calls.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
