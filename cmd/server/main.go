package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httpHandlers "github.com/JeanGrijp/storefront-guard/internal/adapters/http/handlers"
	httpMiddleware "github.com/JeanGrijp/storefront-guard/internal/adapters/http/middleware"
	consolemessenger "github.com/JeanGrijp/storefront-guard/internal/adapters/messaging/console"
	"github.com/JeanGrijp/storefront-guard/internal/adapters/payment/simulated"
	memorystorage "github.com/JeanGrijp/storefront-guard/internal/adapters/storage/memory"
	redisstorage "github.com/JeanGrijp/storefront-guard/internal/adapters/storage/redis"
	"github.com/JeanGrijp/storefront-guard/internal/config"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
	"github.com/JeanGrijp/storefront-guard/internal/core/services"
	"github.com/JeanGrijp/storefront-guard/internal/logger"
	"github.com/JeanGrijp/storefront-guard/internal/metrics"
)

const snowflakeNodeID = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProd() && !cfg.Guard.CSRFCookieSecure {
		zlog.Warn("csrf cookie without Secure flag in prod", zap.String("env", cfg.Server.Env))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guardMetrics := metrics.New()

	storage, closeFn, err := initStorage(ctx, cfg, zlog, guardMetrics)
	if err != nil {
		zlog.Fatal("failed to init storage", zap.Error(err))
	}
	defer closeFn()

	loginLimiter, err := services.NewRateLimiterService(storage, cfg.RateLimiter.Login)
	if err != nil {
		zlog.Fatal("failed to create login limiter", zap.Error(err))
	}
	apiLimiter, err := services.NewRateLimiterService(storage, cfg.RateLimiter.API)
	if err != nil {
		zlog.Fatal("failed to create api limiter", zap.Error(err))
	}

	gateway, err := simulated.New(snowflakeNodeID)
	if err != nil {
		zlog.Fatal("failed to create payment gateway", zap.Error(err))
	}
	messenger := consolemessenger.New(zlog.Named("messenger"))

	checkout, err := services.NewCheckoutService(gateway, messenger, zlog.Named("checkout"))
	if err != nil {
		zlog.Fatal("failed to create checkout service", zap.Error(err))
	}
	messaging, err := services.NewMessagingService(messenger, services.SimulatedOrderStatus, zlog.Named("messaging"))
	if err != nil {
		zlog.Fatal("failed to create messaging service", zap.Error(err))
	}
	accounts := services.NewAccountService(bcrypt.DefaultCost)

	apiBase := strings.TrimSuffix(cfg.Guard.APIPrefix, "/")

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(httpMiddleware.RequestLogger(zlog))
	r.Use(httpMiddleware.NewGuard(httpMiddleware.GuardConfig{
		APIPrefix:          cfg.Guard.APIPrefix,
		TrustProxyHeaders:  cfg.Guard.TrustProxyHeaders,
		CSRFExemptPrefixes: cfg.Guard.CSRFExemptPrefixes,
		LoginPaths:         []string{apiBase + "/auth/login", apiBase + "/auth/register"},
		APILimiter:         apiLimiter,
		LoginLimiter:       loginLimiter,
		Logger:             zlog.Named("guard"),
		Metrics:            guardMetrics,
	}))

	r.Get("/healthz", httpHandlers.HealthHandler)
	r.Method(http.MethodGet, "/metrics", guardMetrics.Handler())

	auth := httpHandlers.NewAuthHandler(accounts, loginLimiter, zlog.Named("auth"))
	checkoutHandler := httpHandlers.NewCheckoutHandler(checkout, cfg.Checkout.AllowedOrigin, zlog.Named("checkout"))
	whatsapp := httpHandlers.NewWhatsAppHandler(messaging, cfg.WhatsApp.VerifyToken, zlog.Named("whatsapp"))

	r.Route(apiBase, func(r chi.Router) {
		r.Method(http.MethodGet, "/auth/csrf", httpHandlers.CSRFHandler{CookieSecure: cfg.Guard.CSRFCookieSecure})

		r.Group(func(r chi.Router) {
			if cfg.Guard.RequireAJAX {
				r.Use(httpMiddleware.RequireAJAX)
			}
			r.Post("/auth/register", auth.Register)
			r.Post("/auth/login", auth.Login)
			r.Method(http.MethodPost, "/checkout", checkoutHandler)
		})

		r.Method(http.MethodGet, "/webhook/whatsapp", whatsapp)
		r.Method(http.MethodPost, "/webhook/whatsapp", whatsapp)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Type))
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func initStorage(ctx context.Context, cfg config.Config, zlog *zap.Logger, m *metrics.GuardMetrics) (ports.AttemptStore, func(), error) {
	switch cfg.Storage.Type {
	case "memory":
		storage := memorystorage.New(zlog.Named("storage"))
		if cfg.RateLimiter.SweepInterval > 0 {
			storage.StartSweeper(ctx, cfg.RateLimiter.SweepInterval, m.SetTrackedKeys)
		}
		return storage, func() {}, nil
	case "redis":
		redisCfg := redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}
		storage, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				zlog.Warn("failed to close redis storage", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
