package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const configPath = "./config.json"

func main() {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		for sig := range osSignalChan {
			if sig == syscall.SIGHUP {
				baseLogger.Info("SIGHUP received, reloading configuration.")
				actionChan <- actionRestart
				continue
			}
			baseLogger.Info("OS signal received, initiating shutdown.", "signal", sig.String())
			actionChan <- actionShutdown
			return
		}
	}()

	for {
		action, err := run(actionChan, baseLogger)
		if err != nil {
			baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
			os.Exit(1)
		}

		if action == actionRestart {
			baseLogger.Info("--- Server Restarting ---")
			continue
		}
		break
	}

	baseLogger.Info("Parrot has shut down.")
}

// run hosts the server until an action arrives, and returns that action.
func run(actionChan chan string, baseLogger *slog.Logger) (string, error) {
	config, err := LoadConfig(configPath, baseLogger)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("Starting server cycle...", "version", Version)

	if err = os.MkdirAll(filepath.Dir(config.Server.DatabasePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = setupStatsSchema(db); err != nil {
		logger.Error("Failed to setup stats schema", "error", err)
	}

	server, err := NewServer(config, logger, db)
	if err != nil {
		_ = db.Close()
		return "", fmt.Errorf("failed to create server object: %w", err)
	}

	httpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting Parrot server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			if !trySendAction(actionChan, actionShutdown) {
				logger.Warn("Action already pending, dropping shutdown request")
			}
		}
	}()

	action := <-actionChan // Block here until an OS signal or a failed listener sends an action.

	logger.Info("Stopping server for " + action + "...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")

	logger.Info("Closing database connection.")
	if err = db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	return action, nil
}

// trySendAction queues action unless another one is already pending. It never
// blocks, and reports whether the action was queued.
func trySendAction(actionChan chan string, action string) bool {
	select {
	case actionChan <- action:
		return true
	default:
		return false
	}
}
