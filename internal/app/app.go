// Package app orchestrates startup: open the store, wire the services,
// run the HTTP server, sync scheduler and config watcher together.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tradetrack/internal/analytics"
	"tradetrack/internal/config"
	"tradetrack/internal/exchange"
	"tradetrack/internal/logger"
	"tradetrack/internal/store"
	"tradetrack/internal/syncer"
	apihttp "tradetrack/internal/transport/http/api"
	"tradetrack/internal/vault"
)

type App struct {
	cfg       *config.Config
	cfgPath   string
	db        *store.Store
	server    *apihttp.Server
	scheduler *syncer.Scheduler
}

// New builds the application without starting anything.
func New(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	v, err := vault.New(cfg.Vault.Key)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init vault: %w", err)
	}

	syncSvc := syncer.NewService(db.Connections(), db.Trades(), v, nil, syncer.Options{
		FetchTimeout: cfg.Sync.FetchTimeout(),
		PageLimit:    cfg.Sync.PageLimit,
		WindowDays:   cfg.Sync.WindowDays,
		Client: exchange.ClientConfig{
			GatewayURL: cfg.Gateway.URL,
			Timeout:    cfg.Gateway.Timeout(),
			Testnet:    cfg.Gateway.Testnet,
		},
	})
	analyticsSvc := analytics.NewService(db.Trades())

	router := apihttp.NewRouter(db.Trades(), analyticsSvc, syncSvc)
	server, err := apihttp.NewServer(apihttp.ServerConfig{Addr: cfg.App.HTTPAddr, Router: router})
	if err != nil {
		db.Close()
		return nil, err
	}

	var scheduler *syncer.Scheduler
	if cfg.Sync.IntervalMinutes > 0 {
		scheduler = syncer.NewScheduler(syncSvc, cfg.Sync.Interval(), cfg.Sync.Parallel)
	}

	return &App{
		cfg:       cfg,
		cfgPath:   cfgPath,
		db:        db,
		server:    server,
		scheduler: scheduler,
	}, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.db.Close()

	logger.Infof("tradetrack starting env=%s addr=%s store=%s", a.cfg.App.Env, a.server.Addr(), a.cfg.Store.Path)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if a.scheduler != nil {
		group.Go(func() error {
			if err := a.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("sync scheduler error: %w", err)
			}
			return nil
		})
	}

	if a.cfgPath != "" {
		group.Go(func() error {
			err := config.Watch(ctx, a.cfgPath, func(fresh *config.Config) {
				// Only the log level is safe to swap at runtime; everything
				// else requires a restart.
				logger.SetLevel(fresh.App.LogLevel)
			})
			if err != nil && ctx.Err() == nil {
				logger.Warnf("[app] config watcher stopped: %v", err)
			}
			return nil
		})
	}

	return group.Wait()
}
