package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/handlers"
	"github.com/md-rashed-zaman/bookable/internal/outbox"
	"github.com/md-rashed-zaman/bookable/internal/policy"
	"github.com/md-rashed-zaman/bookable/internal/storage"
	"github.com/md-rashed-zaman/bookable/libs/auth"
	"github.com/md-rashed-zaman/bookable/libs/config"
	"github.com/md-rashed-zaman/bookable/libs/db"
	"github.com/md-rashed-zaman/bookable/libs/httpx"
	"github.com/md-rashed-zaman/bookable/libs/kafkax"
	otelx "github.com/md-rashed-zaman/bookable/libs/otel"
	"github.com/md-rashed-zaman/bookable/libs/runtime"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func cancellationPolicy(logger *slog.Logger) policy.Policy {
	raw := config.String("CANCELLATION_POLICY", string(policy.Flexible))
	name, err := policy.ParseName(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		logger.Warn("invalid cancellation policy; using flexible", "value", raw)
		name = policy.Flexible
	}
	p, _ := policy.ByName(name)
	return p
}

func businessLocation(logger *slog.Logger) *time.Location {
	name := config.String("BUSINESS_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid timezone; using UTC", "value", name)
		return time.UTC
	}
	return loc
}

func publicRateLimit(logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	window := time.Minute
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		return httpx.NewRedisRateLimiter(rdb, limit, window, "bookable").Middleware(logger, true)
	}
	return httpx.NewRateLimiter(limit, window).Middleware()
}

func main() {
	service := config.String("SERVICE_NAME", "bookable")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 2)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	slots := storage.NewSlotRepository(pool)
	appts := storage.NewAppointmentRepository(pool)
	customers := storage.NewCustomerRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	loc := businessLocation(logger)
	policyProvider := policy.NewStaticProvider(cancellationPolicy(logger))

	slotHandler := handlers.NewSlotHandler(slots, logger, loc, config.Duration("RESERVATION_TTL", 2*time.Minute))
	bookingHandler := handlers.NewBookingHandler(
		slots, appts, customers, outboxRepo, policyProvider,
		logger, loc, config.Int("MAX_BOOKINGS_PER_DAY", 3),
	)
	blocklistHandler := handlers.NewBlocklistHandler(customers, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	rateLimit := publicRateLimit(logger)
	mux.Handle("/api/v1/public/slots", rateLimit(http.HandlerFunc(slotHandler.List)))
	mux.Handle("/api/v1/public/slots/reserve", rateLimit(http.HandlerFunc(slotHandler.Reserve)))
	mux.Handle("/api/v1/public/slots/release", rateLimit(http.HandlerFunc(slotHandler.Release)))
	mux.Handle("/api/v1/public/book", rateLimit(http.HandlerFunc(bookingHandler.Create)))
	mux.Handle("/api/v1/public/cancel", rateLimit(http.HandlerFunc(bookingHandler.Cancel)))

	requireOwner := auth.RequireOwner(config.String("JWT_SECRET", ""))
	mux.Handle("/api/v1/slots/generate", requireOwner(http.HandlerFunc(slotHandler.Generate)))
	mux.Handle("/api/v1/slots/block", requireOwner(http.HandlerFunc(slotHandler.Block)))
	mux.Handle("/api/v1/slots/unblock", requireOwner(http.HandlerFunc(slotHandler.Unblock)))
	mux.Handle("/api/v1/appointments", requireOwner(http.HandlerFunc(bookingHandler.List)))
	mux.Handle("/api/v1/appointments/owner-cancel", requireOwner(http.HandlerFunc(bookingHandler.OwnerCancel)))
	mux.Handle("/api/v1/appointments/status", requireOwner(http.HandlerFunc(bookingHandler.UpdateStatus)))
	mux.Handle("/api/v1/blocklist", requireOwner(http.HandlerFunc(blocklistHandler.Handle)))

	httpHandler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "bookable")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
