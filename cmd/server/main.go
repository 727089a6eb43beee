package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/order-service/internal/application"
	"github.com/eugenenazirov/order-service/internal/bootstrap"
	"github.com/eugenenazirov/order-service/internal/config"
	"github.com/eugenenazirov/order-service/internal/logging"
	"github.com/eugenenazirov/order-service/internal/metrics"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("order-service", "Order Service API - serves sample orders after loading runtime secrets")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to dotenv file (default .env, ignored when missing)").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	level, _ := config.NormalizeLogLevel(cfg.LogLevel)
	baseLogger, err := logging.New(level)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger := logging.WithService(baseLogger, cfg.AppName, cfg.Environment)
	defer func() {
		_ = logger.Sync()
	}()

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New()
	}

	if err := runBootstrap(cfg, logger, m); err != nil {
		// The cause was logged where it was detected.
		logger.Fatal("runtime bootstrap failed; refusing to serve")
	}

	app, err := application.New(cfg, logger, m)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// runBootstrap loads runtime secrets into the process environment. A signal
// received while it runs cancels the secret fetch. A returned error has
// already been logged.
func runBootstrap(cfg config.Config, logger *zap.Logger, m *metrics.Metrics, opts ...bootstrap.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if m != nil {
		opts = append([]bootstrap.Option{bootstrap.WithRecorder(m)}, opts...)
	}
	b := bootstrap.New(logger, opts...)

	result, err := b.Run(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("bootstrap finished",
		zap.Stringer("state", result.State),
		zap.Int("secrets_applied", len(result.Applied)),
	)
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
