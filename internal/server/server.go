package server

import (
	"fmt"
	"net/http"
	"time"

	"shopkart/internal/cart"
	"shopkart/internal/catalog"
	"shopkart/internal/config"
	custommiddleware "shopkart/internal/middleware"
	"shopkart/internal/notify"
	"shopkart/internal/store"
	"shopkart/internal/transport"
	"shopkart/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Closer releases a resource the server depends on (database handle,
// Redis client). Registered via Options and closed on shutdown.
type Closer func() error

// Options carries the optional collaborators the server may run with.
type Options struct {
	RedisClient *redis.Client
	Closers     []Closer
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	closers []Closer
}

func NewServer(cfg *config.Config, logger *zap.Logger, st *store.Store, opts Options) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	if cfg.RateLimit.Enabled && opts.RedisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(opts.RedisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "rate_limit",
		}, logger))
	}

	// Health check endpoint reports storage availability so clients can
	// degrade to a guest-only session when persistence is gone
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status":            "ok",
			"storage_available": st.Available(r.Context()),
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, status)
	})

	// Initialize services
	sink := notify.NewZapSink(logger.Named("notifications"))
	catalogService := catalog.New(st, logger)
	ledger := catalog.NewLedger(catalogService, logger)
	cartService := cart.NewService(st, catalogService, sink, logger)
	wishlistService := wishlist.NewService(st, catalogService, sink, logger)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, ledger, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	wishlistHandler := transport.NewWishlistHandler(wishlistService, logger)

	// Admin routes require a valid token with the admin role; shopper
	// routes only need a session scope
	authMiddleware := custommiddleware.AuthMiddleware(cfg.Admin.JWTSecret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	adminMiddleware := func(next http.Handler) http.Handler {
		return authMiddleware(requireAdmin(next))
	}
	sessionMiddleware := custommiddleware.SessionScope()

	// Register routes
	catalogHandler.RegisterRoutes(router, adminMiddleware)
	cartHandler.RegisterRoutes(router, sessionMiddleware)
	wishlistHandler.RegisterRoutes(router, sessionMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		closers: opts.Closers,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, close := range s.closers {
		if err := close(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
