// Package app wires configuration into a running scheduling service.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/api"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/csvstore"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/lock"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

type App struct {
	Service *scheduling.Service
	Checks  []api.Check

	closers []func()
}

// Build opens storage and the locker named by cfg and loads the service state.
// The caller owns the returned App and must Close it.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{}
	deps := scheduling.Deps{Metrics: m, Logger: log}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to Postgres")

		if err := db.EnsureSchema(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}

		deps.Repos = scheduling.Repositories{
			Schedules:    db.NewScheduleRepository(pool),
			Appointments: db.NewAppointmentRepository(pool),
			Leaves:       db.NewLeaveRepository(pool),
		}
		deps.Directory = db.NewDirectory(pool)
		deps.Events = db.NewEventLog(pool)
		a.Checks = append(a.Checks, api.Check{Name: "postgres", Critical: true, Ping: pool.Ping})

	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		store := csvstore.Open(cfg.DataDir)
		people, err := store.Users.LoadDirectory(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().Str("data_dir", cfg.DataDir).Int("users", len(people.Users())).Msg("loaded csv directory")

		deps.Repos = scheduling.Repositories{
			Schedules:    store.Schedules,
			Appointments: store.Appointments,
			Leaves:       store.Leaves,
		}
		deps.Directory = people
		deps.Events = scheduling.LogSink{Log: log}
		a.Checks = append(a.Checks, api.Check{Name: "storage", Critical: true, Ping: dirCheck(cfg.DataDir)})
	}

	locker, err := a.locker(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	deps.Locker = locker

	scope, err := scheduling.ParseCascadeScope(cfg.CascadeScope)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Service = scheduling.NewService(deps, scheduling.Config{
		SlotInterval:       cfg.SlotInterval,
		CascadeScope:       scope,
		RefreshBeforeWrite: cfg.RefreshBeforeWrite,
	})
	if err := a.Service.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load scheduling state: %w", err)
	}
	return a, nil
}

func (a *App) locker(ctx context.Context, cfg config.Config, log zerolog.Logger) (lock.Locker, error) {
	if cfg.LockDriver != config.LockRedis {
		return lock.NewLocal(), nil
	}

	rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	})
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	a.Checks = append(a.Checks, api.Check{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}})
	return redisclient.NewRedisLocker(rdb, cfg.LockTTL), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func dirCheck(dir string) func(context.Context) error {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}
