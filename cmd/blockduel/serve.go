package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blockduel/blockduel-go/internal/api"
	"github.com/blockduel/blockduel-go/internal/config"
	"github.com/blockduel/blockduel-go/internal/factory"
	redisstorage "github.com/blockduel/blockduel-go/internal/storage/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the match relay API server",
	Long: `Start the HTTP server that hosts the match directory, the event relay
and the reconnection snapshot store.

Configuration is loaded from --config, ~/.blockduel/config.yaml or
./configs/blockduel.yaml, in that order.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	app, err := factory.New(factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		MatchController: app.MatchController,
		SnapshotService: app.SnapshotService,
		Transport:       app.Transport,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	if cfg.Server.ReadTimeout > 0 {
		serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.ShutdownTimeout > 0 {
		serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// factoryConfig maps file configuration onto the factory's wiring config.
func factoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:            logger,
		StorageType:       cfg.Storage.Type,
		SQLitePath:        cfg.Storage.SQLite.Path,
		TransportType:     cfg.Transport.Type,
		TransportRedisURL: cfg.Transport.URL,
	}

	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.Redis.URL
		if cfg.Storage.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Storage.Redis.PoolSize
		}
		if cfg.Storage.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Storage.Redis.MinIdleConns
		}
		if cfg.Storage.Redis.MatchTTL > 0 {
			redisCfg.MatchTTL = cfg.Storage.Redis.MatchTTL
		}
		if cfg.Storage.Redis.SnapshotTTL > 0 {
			redisCfg.SnapshotTTL = cfg.Storage.Redis.SnapshotTTL
		}
		fc.RedisConfig = &redisCfg
	}

	return fc
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
