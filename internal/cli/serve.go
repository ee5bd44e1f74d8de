package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/config"
	"github.com/Skotchmaster/restaurant_pos/internal/db"
	"github.com/Skotchmaster/restaurant_pos/internal/events"
	"github.com/Skotchmaster/restaurant_pos/internal/httpserver"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/restaurant_pos/internal/middleware/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/metrics"
	"github.com/Skotchmaster/restaurant_pos/internal/observability"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
)

const (
	sessionPurgeInterval = 15 * time.Minute
	shutdownTimeout      = 10 * time.Second
	bodyLimit            = "1M"
	loginPath            = "/api/auth/login"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Load())
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(openCtx, cfg.DatabaseURL, db.DefaultPool())
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("db close failed", "error", err)
		}
	}()
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
	}

	store, closeStore, err := openSessionStore(ctx, cfg, gdb)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("event publisher close failed", "error", err)
		}
	}()

	index := openSearch(ctx, cfg, logger)

	sessions := &session.Manager{
		Store:      store,
		Secret:     cfg.SessionSecret,
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	}
	go purgeSessions(ctx, store, logger)

	e := newEcho(cfg, logger, gdb, sessions, publisher, index)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", "error", err)
	}
	logger.Info("http server stopped")
	return nil
}

func newEcho(cfg config.Config, logger *slog.Logger, gdb *gorm.DB, sessions *session.Manager, publisher events.Publisher, index search.Index) *echo.Echo {
	r := repo.New(gdb)
	m := metrics.New()

	authSvc := &service.AuthService{
		Repo:     r,
		Sessions: sessions,
		Events:   publisher,
		Trial:    service.Trial{Days: cfg.TrialDays, PaymentURL: cfg.TrialPaymentURL},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.BodyLimit(bodyLimit))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	}
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    cfg.CookieSecure,
			SkipPaths: []string{loginPath},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:               gdb,
		AuthHandler:      &httpserver.AuthHTTP{Svc: authSvc, Sessions: sessions, Metrics: m},
		UserHandler:      &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		FoodHandler:      &httpserver.FoodHTTP{Svc: &service.FoodService{Repo: r, Index: index}},
		TableHandler:     &httpserver.TableHTTP{Svc: &service.TableService{Repo: r}},
		OrderHandler:     &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher}},
		AnalyticsHandler: &httpserver.AnalyticsHTTP{Svc: &service.AnalyticsService{Repo: r, Location: cfg.Location(), CurrencyPrefix: cfg.CurrencyPrefix}},
		PaymentHandler:   &httpserver.PaymentHTTP{Svc: &service.PaymentService{Repo: r}},
		AuthMW:           auth.NewSessionAuth(sessions, authSvc),
		Metrics:          m,
		MetricsPath:      cfg.MetricsPath,
	})
	return e
}

func openSessionStore(ctx context.Context, cfg config.Config, gdb *gorm.DB) (session.Store, func(), error) {
	if cfg.SessionBackend != "redis" {
		return &session.GormStore{DB: gdb}, func() {}, nil
	}
	rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { _ = rs.Close() }, nil
}

// openSearch connects to Elasticsearch when ES_URL is set. Without it, or when
// the cluster is unreachable at startup, food search runs against the database.
func openSearch(ctx context.Context, cfg config.Config, logger *slog.Logger) search.Index {
	if cfg.ESURL == "" {
		return search.Disabled{}
	}
	client, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		logger.Warn("elasticsearch unavailable, using database search", "error", err)
		return search.Disabled{}
	}
	return &search.ESIndex{Client: client, Name: cfg.ESIndex}
}

func purgeSessions(ctx context.Context, store session.Store, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpired(ctx, now.UTC())
			if err != nil {
				logger.Warn("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions purged", "count", n)
			}
		}
	}
}
