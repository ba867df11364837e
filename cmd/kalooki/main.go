package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/kalooki/internal/server"
	"github.com/lox/kalooki/internal/storage"
	"github.com/lox/kalooki/internal/storage/sqlite"
)

var CLI struct {
	Config   string `short:"c" default:"kalooki.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	DBPath   string `name:"db" help:"SQLite snapshot database path (overrides config, empty disables persistence)"`
	Seed     *int64 `help:"Deterministic RNG seed for dealt games (optional)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.DBPath != "" {
		cfg.Storage.Path = CLI.DBPath
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	var store storage.Store = storage.NopStore{}
	if cfg.Storage.Path != "" {
		sqlStore, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			logger.Error("Failed to open snapshot store", "error", err, "path", cfg.Storage.Path)
			kctx.Exit(1)
		}
		store = sqlStore
		logger.Info("Opened snapshot store", "path", cfg.Storage.Path)
	} else {
		logger.Info("Persistence disabled")
	}

	wsServer := server.NewServer(cfg.ListenAddress(), logger)
	registry := server.NewRegistry(logger, quartz.NewReal(), store, wsServer.BroadcastToGame)
	if CLI.Seed != nil {
		registry.SetSeed(*CLI.Seed)
		logger.Info("Using deterministic deal seed", "seed", *CLI.Seed)
	}
	wsServer.SetRegistry(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.Restore(ctx); err != nil {
		logger.Error("Failed to restore games", "error", err)
		kctx.Exit(1)
	}

	logger.Info("Starting Kalooki server",
		"addr", cfg.ListenAddress(),
		"games", registry.Len())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsServer.Start()
	})

	g.Go(func() error {
		cleanupAfter := time.Duration(cfg.Storage.CleanupAfterHours) * time.Hour
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				registry.Cleanup(ctx, cleanupAfter)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		select {
		case sig := <-c:
			logger.Info("Shutting down server...", "signal", sig)
			_ = wsServer.Stop()
			_ = store.Close()
			os.Exit(0)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}
