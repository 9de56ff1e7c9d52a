package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/infrastructure/cache"
	"garage-dashboard/internal/infrastructure/config"
	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/infrastructure/metrics"
	"garage-dashboard/internal/infrastructure/server"
	"garage-dashboard/internal/infrastructure/store"
	"garage-dashboard/internal/interfaces/rest/v1/handler"
	"garage-dashboard/internal/port/outbound"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file; missing means defaults")
	flag.Parse()

	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.NewLogrusLogger(cfg.Log.Logger())

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, log)
	if err != nil {
		log.Errorf("failed to open store: %v", err)
		return
	}
	if cfg.Store.Seed {
		if err := store.Seed(ctx, st, time.Now()); err != nil {
			log.Errorf("failed to seed store: %v", err)
			return
		}
	}

	analyticsCache, err := cache.Open(ctx, cfg.Cache.Driver, cfg.Cache.RedisURL)
	if err != nil {
		log.Errorf("failed to open cache: %v", err)
		return
	}

	recorder := metrics.NewHub()
	hubInstance := hub.New(log,
		hub.WithRecorder(recorder),
		hub.WithSweepInterval(cfg.Hub.SweepInterval),
	)

	// Start the hub first
	if err := hubInstance.Start(ctx); err != nil {
		log.Errorf("failed to start hub: %v", err)
		return
	}

	uc := newUseCases(cfg, st, analyticsCache, hubInstance, log)
	router := InitRouter(cfg, hubInstance, recorder, uc, log)
	httpSrv := server.NewHTTPServer(router, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, log)

	app := newApplication(log, cfg, *configPath, httpSrv, hubInstance, st, analyticsCache)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

func newUseCases(
	cfg *config.Config,
	st outbound.Store,
	c outbound.Cache,
	publisher outbound.EventPublisher,
	log logger.Logger,
) handler.UseCases {
	return handler.UseCases{
		Garages:   facade.NewGarageApplicationService(st, publisher, log),
		Catalog:   facade.NewCatalogApplicationService(st, publisher, c, log),
		Drivers:   facade.NewDriverApplicationService(st, log, time.Now, bcrypt.DefaultCost),
		Bookings:  facade.NewBookingApplicationService(st, publisher, c, log, time.Now),
		Analytics: facade.NewAnalyticsApplicationService(st, c, cfg.Cache.TTL, log, time.Now),
	}
}

type Application struct {
	logger     logger.Logger
	cfg        *config.Config
	configPath string
	httpSrv    server.Server
	hub        *hub.Hub
	store      outbound.Store
	cache      outbound.Cache
}

func newApplication(
	logger logger.Logger,
	cfg *config.Config,
	configPath string,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
	st outbound.Store,
	c outbound.Cache,
) *Application {
	return &Application{
		logger:     logger.WithField("app", "garage-dashboard"),
		cfg:        cfg,
		configPath: configPath,
		httpSrv:    httpSrv,
		hub:        hubInstance,
		store:      st,
		cache:      c,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	if _, err := os.Stat(app.configPath); err == nil {
		eg.Go(func() error {
			if err := config.Watch(ctx, app.configPath, app.logger, app.reload); err != nil {
				app.logger.Warnf("config watcher stopped: %v", err)
			}
			return nil
		})
	} else if !errors.Is(err, fs.ErrNotExist) {
		app.logger.Warnf("config %s not watched: %v", app.configPath, err)
	}

	eg.Go(func() error {
		<-ctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			app.cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		// Stop hub first so subscribers get 1001 before the listener goes.
		if err := app.hub.Stop(gracefulshutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		err := app.httpSrv.Stop(gracefulshutdownCtx)

		if cerr := app.cache.Close(); cerr != nil {
			app.logger.Errorf("failed to close cache: %v", cerr)
		}
		if cerr := app.store.Close(); cerr != nil {
			app.logger.Errorf("failed to close store: %v", cerr)
		}
		return err
	})

	return eg.Wait()
}

// reload applies the settings that can change without a restart.
func (app *Application) reload(cfg *config.Config) {
	level := logger.ParseLevel(cfg.Log.Level)
	app.logger.SetLevel(level)
	app.logger.Infof("log level set to %s", level)
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
