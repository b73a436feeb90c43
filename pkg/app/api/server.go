// Package api implements app.Runner for the user-service API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	accountservice "github.com/cardlink-labs/cardlink-middleware/pkg/account/service"
	"github.com/cardlink-labs/cardlink-middleware/pkg/accountstore"
	apphttp "github.com/cardlink-labs/cardlink-middleware/pkg/app/http"
	"github.com/cardlink-labs/cardlink-middleware/pkg/auth"
	"github.com/cardlink-labs/cardlink-middleware/pkg/config"
	"github.com/cardlink-labs/cardlink-middleware/pkg/pgutil"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting user-service API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	store := accountstore.NewStore(db)
	validator := auth.NewIdentityTokenValidator(cfg.Identity.JWKSURL, cfg.Identity.Issuer)

	userService := accountservice.NewService(store, logger)

	router := s.setupRouter(accountservice.NewLog(userService, logger), validator, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) setupRouter(
	userService accountservice.Service,
	validator accountservice.TokenValidator,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))
	}

	// User-service endpoints
	accountservice.RegisterRoutes(r, userService, validator, logger)

	return r
}
