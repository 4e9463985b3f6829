package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exrates/internal/adapters/cache"
	"exrates/internal/adapters/httpclient"
	"exrates/internal/adapters/postgres"
	"exrates/internal/api"
	"exrates/internal/cli"
	"exrates/internal/config"
	"exrates/internal/integrity"
	"exrates/internal/platform/db"
	httpserver "exrates/internal/platform/http"
	"exrates/internal/rate"
	"exrates/internal/rate/handler"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run wires the application components and runs the configured mode:
// the interactive prompt, or the HTTP server together with the daily scheduler.
func Run(args []string) error {
	appCfg, err := config.Init(args)
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.WithField("mode", appCfg.App.Mode).Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, schema)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	store := postgres.NewRateRepository(pool)
	if err = store.CreateSchemaIfAbsent(startupCtx); err != nil {
		logrus.WithError(err).Error("Failed to create rates schema")
		return err
	}
	logrus.Info("✅ Rates schema ready")

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	rateClient := httpclient.NewRatesClient(&http.Client{Timeout: httpTimeout}, appCfg.RatesAPI.BaseURL)

	recordCache, err := cache.NewRecordCache(appCfg.Cache.MaxItems)
	if err != nil {
		return err
	}
	defer recordCache.Close()

	// Services
	rateService := rate.NewService(
		store,
		rateClient,
		recordCache,
		integrity.NewValidator(appCfg.Integrity.Strict),
		appCfg.Cache.WriteBackOnMiss,
	)
	deltaCalculator := rate.NewDeltaCalculator(rateClient)

	if appCfg.App.Mode == config.ModeInteractive {
		prompt := cli.NewPrompt(os.Stdin, os.Stdout, rateService, deltaCalculator)
		return prompt.Run(ctx)
	}
	return runServer(ctx, appCfg, rateService, deltaCalculator)
}

func runServer(ctx context.Context, appCfg *config.AppConfig, rateService *rate.Service, deltas *rate.DeltaCalculator) error {
	g, gCtx := errgroup.WithContext(ctx)

	if appCfg.Scheduler.Enabled {
		location, err := time.LoadLocation(appCfg.Scheduler.Location)
		if err != nil {
			return fmt.Errorf("failed to load scheduler location %q: %w", appCfg.Scheduler.Location, err)
		}
		scheduler := rate.NewScheduler(rateService, appCfg.Scheduler.Cron, location)
		// Ensure scheduler stops before DB pool closes
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := scheduler.Start(gCtx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateService, deltas)
	router := api.NewRouter(rateHandler)

	g.Go(func() error {
		logrus.Info("Starting http server")
		// Block until context is canceled, then perform graceful shutdown.
		if serverErr := httpserver.Start(gCtx, appCfg.HTTPServer, router); serverErr != nil {
			logrus.Errorf("HTTP server error: %v", serverErr)
			return serverErr
		}
		return nil
	})

	return g.Wait()
}
