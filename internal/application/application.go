package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/order-service/internal/api"
	"github.com/eugenenazirov/order-service/internal/config"
	"github.com/eugenenazirov/order-service/internal/metrics"
	"github.com/eugenenazirov/order-service/internal/orders"
	"github.com/eugenenazirov/order-service/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	router http.Handler
	logger *zap.Logger
	server *http.Server
}

// New initializes the application with all dependencies from the provided
// configuration. m may be nil when metrics are disabled.
func New(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) (*App, error) {
	store, err := storage.NewSampleStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to seed order storage: %w", err)
	}

	svc := orders.NewService(store, orders.WithLatency(cfg.OrderLatency, cfg.OrderLatencyJitter))
	handler := api.NewHandler(svc, api.WithIdentity(cfg.AppName, cfg.Environment))

	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if cfg.EnableMetrics && m != nil {
		routerOpts = append(routerOpts, api.WithMetrics(m, m.Handler(), cfg.MetricsPath))
	}
	router := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		router: router,
		logger: logger,
		server: NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listener synchronously, so an unusable address is reported
// to the caller, then serves in a goroutine.
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	a.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
