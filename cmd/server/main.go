package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"zirrmi/internal/backend/identity"
	"zirrmi/internal/backend/intake"
	"zirrmi/internal/backend/otp"
	jwttoken "zirrmi/internal/jwt_token"
	"zirrmi/internal/onboarding"
	"zirrmi/internal/platform/config"
	"zirrmi/internal/platform/httpserver"
	"zirrmi/internal/platform/logger"
	"zirrmi/internal/platform/loop"
	"zirrmi/internal/platform/metrics"
	"zirrmi/internal/platform/redis"
	httptransport "zirrmi/internal/transport/http"
	"zirrmi/pkg/platform/audit"
	auditmemory "zirrmi/pkg/platform/audit/store/memory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel, stdout)
	slog.SetDefault(log)
	if cfg.UsesDevSigningKey() {
		log.Warn("using the built-in JWT signing key; set JWT_SIGNING_KEY outside development")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Code store ---
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	var codes otp.CodeStore = otp.NewInMemoryCodeStore(clockwork.NewRealClock())
	if rdb != nil {
		defer rdb.Close()
		codes = otp.NewRedisCodeStore(rdb.Client)
		log.Info("verification codes stored in redis")
	}

	// --- Backends ---
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	identitySvc := identity.New(identity.NewInMemoryAccountStore(), tokens,
		identity.WithLogger(log),
		identity.WithMetrics(m),
	)
	otpSvc := otp.New(codes, otp.NewLogSender(log),
		otp.WithLogger(log),
		otp.WithMetrics(m),
		otp.WithCodeTTL(cfg.Verification.CodeTTL),
	)
	intakeSvc := intake.New(intake.WithLogger(log), intake.WithMetrics(m))

	// --- Onboarding session ---
	events := loop.New(loop.WithLogger(log))
	session := onboarding.New(onboarding.Services{
		Auth:         identitySvc,
		Verification: otpSvc,
		Assessment:   intakeSvc,
	}, events,
		onboarding.WithLogger(log),
		onboarding.WithMetrics(m),
		onboarding.WithAuditor(audit.NewPublisher(auditmemory.NewInMemoryStore())),
		onboarding.WithCooldown(cfg.Verification.Cooldown),
	)
	defer func() {
		events.Do(session.Close)
		events.Close()
	}()

	// --- HTTP Server ---
	handler := httptransport.New(session, events, log, m)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, reg))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
