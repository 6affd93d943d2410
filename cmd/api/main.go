package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shopkart/internal/config"
	"shopkart/internal/database"
	"shopkart/internal/logger"
	"shopkart/internal/server"
	"shopkart/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// buildStore selects and wires the storage backend from config.
func buildStore(cfg *config.Config, log *zap.Logger) (*store.Store, server.Options, error) {
	var opts server.Options

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, opts, err
		}
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			db.Close()
			return nil, opts, err
		}
		opts.Closers = append(opts.Closers, db.Close)
		return store.New(store.NewPostgresBackend(db), log), opts, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts.RedisClient = client
		opts.Closers = append(opts.Closers, client.Close)
		return store.New(store.NewRedisBackend(client, "shopkart"), log), opts, nil

	default:
		backend, err := store.NewFileBackend(cfg.Storage.FileDir)
		if err != nil {
			return nil, opts, err
		}
		return store.New(backend, log), opts, nil
	}
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Initialize storage
	st, opts, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	if !st.Available(context.Background()) {
		// Degraded but not fatal: reads fall back to defaults and
		// writes surface "could not save" to clients
		log.Warn("Storage probe failed, running degraded")
	}

	// Create server
	srv := server.NewServer(cfg, log, st, opts)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
