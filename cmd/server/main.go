package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/vibedraft/internal/api"
	"github.com/mcoot/vibedraft/internal/config"
	"github.com/mcoot/vibedraft/internal/factory"
	"github.com/mcoot/vibedraft/internal/telemetry"
)

// How often expired tokens and idle event hubs are swept
const sweepInterval = 5 * time.Minute

func main() {
	env, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.Level(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, env.OTelEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := factory.New(factory.ConfigFromEnv(env, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = env.Host
	serverConfig.Port = env.Port
	server := api.NewServer(api.NewRouter(app.RouterConfig(env.DevMode)), serverConfig, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	g.Go(func() error {
		return app.ImageQueue.Run(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				app.AuthService.CleanExpiredTokens()
				app.HubManager.CleanupEmptyHubs()
			}
		}
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", env.Storage),
		slog.Bool("dev_mode", env.DevMode),
	)

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}
	if err := shutdownTracing(context.Background()); err != nil {
		logger.Error("failed to flush traces", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}
