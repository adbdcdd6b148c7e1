package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hackgods/clinic-scheduling/internal/app"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/logger"
)

// The worker purges expired schedule entries from a store shared with running
// api-servers, so it needs postgres storage and the redis lock.
func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config load error: %v", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stdout,
		Service: "expiry-worker",
	})

	if cfg.StorageDriver != config.StoragePostgres || cfg.LockDriver != config.LockRedis {
		log.Fatal().
			Str("storage", cfg.StorageDriver).
			Str("lock", cfg.LockDriver).
			Msg("expiry-worker needs STORAGE_DRIVER=postgres and LOCK_DRIVER=redis; the api-server runs its own janitor otherwise")
	}
	cfg.RefreshBeforeWrite = true

	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("expiry-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(rootCtx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	app.RunJanitor(rootCtx, a.Service, cfg.WorkerInterval, log)
}
