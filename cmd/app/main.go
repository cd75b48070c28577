package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/MentionBot_Go/internal/authflow"
	"github.com/osse101/MentionBot_Go/internal/bootstrap"
	"github.com/osse101/MentionBot_Go/internal/checkpoint"
	"github.com/osse101/MentionBot_Go/internal/config"
	"github.com/osse101/MentionBot_Go/internal/engine"
	"github.com/osse101/MentionBot_Go/internal/platform"
	"github.com/osse101/MentionBot_Go/internal/scheduler"
	"github.com/osse101/MentionBot_Go/internal/server"
	"github.com/osse101/MentionBot_Go/internal/vault"
	"github.com/osse101/MentionBot_Go/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)
	slog.Info("Starting mention bot", "version", cfg.Version, "environment", cfg.Environment)

	// Fail fast if state cannot be persisted. A bot that cannot store its
	// credentials or checkpoint must not run.
	credVault := vault.New(cfg.StateDir)
	if err := credVault.CheckWritable(); err != nil {
		log.Fatalf("State directory is not writable: %v", err)
	}
	cpStore := checkpoint.NewStore(cfg.StateDir)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	session := authflow.NewSession(
		cfg.ClientID,
		cfg.RedirectURL,
		cfg.Scopes,
		authflow.Endpoints{
			AuthorizeURL: cfg.AuthorizeURL,
			TokenURL:     cfg.TokenURL,
		},
		[]byte(cfg.StateSigningKey),
		httpClient,
	)

	keyedVault := credVault.WithPassphrase(cfg.VaultPassphrase)
	client := platform.NewClient(cfg.APIBaseURL, keyedVault, session, httpClient)

	composer := engine.NewTemplateComposer(cfg.ReplyTemplate)
	eng, err := engine.New(cpStore, client, composer, cfg.BatchSize, cfg.ManualCooldown)
	if err != nil {
		log.Fatalf("Failed to create ingestion engine: %v", err)
	}

	pool := worker.NewPool(1, 1)
	pool.Start()

	sched := scheduler.New(eng, pool, cfg.PollInterval)
	sched.Start()

	srv := server.NewServer(
		cfg.Port,
		cfg.APIKey,
		session,
		credVault,
		cfg.VaultPassphrase,
		cpStore,
		eng,
		sched,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrap.ShutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:    srv,
		Scheduler: sched,
		Pool:      pool,
	})
}
