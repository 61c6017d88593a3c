// Package otp is the reference one-time code backend.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"zirrmi/internal/platform/metrics"
	"zirrmi/internal/verification"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/platform/sentinel"
)

const (
	DefaultCodeTTL     = 10 * time.Minute
	DefaultMaxAttempts = 5
)

var (
	errCodeExpired     = dErrors.New(dErrors.CodeUnauthorized, "verification code expired, request a new one")
	errCodeInvalid     = dErrors.New(dErrors.CodeUnauthorized, "invalid verification code")
	errTooManyAttempts = dErrors.New(dErrors.CodeUnauthorized, "too many attempts, request a new code")
)

type Service struct {
	store       CodeStore
	sender      Sender
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	ttl         time.Duration
	maxAttempts int
	generate    func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithCodeGenerator replaces the random generator, for tests.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.generate = gen
		}
	}
}

func New(store CodeStore, sender Sender, opts ...Option) *Service {
	s := &Service{
		store:       store,
		sender:      sender,
		logger:      slog.Default(),
		tracer:      otel.Tracer("zirrmi/internal/backend/otp"),
		ttl:         DefaultCodeTTL,
		maxAttempts: DefaultMaxAttempts,
		generate:    randomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send issues a fresh code for the destination, replacing any earlier one.
func (s *Service) Send(ctx context.Context, ch verification.Channel, destination string) (err error) {
	ctx, end := s.span(ctx, "otp.Send", ch, &err)
	defer end()

	code, err := s.generate()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	if err := s.store.Save(ctx, key(ch, destination), code, s.ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not store verification code")
	}
	if err := s.sender.Deliver(ctx, ch, destination, code); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not deliver verification code")
	}
	if s.metrics != nil {
		s.metrics.IncrementCodesIssued(ch.String())
	}
	return nil
}

// Confirm checks code against the outstanding one. A correct code is consumed;
// too many wrong guesses discard it.
func (s *Service) Confirm(ctx context.Context, ch verification.Channel, destination, code string) (err error) {
	ctx, end := s.span(ctx, "otp.Confirm", ch, &err)
	defer end()

	k := key(ch, destination)
	stored, err := s.store.Get(ctx, k)
	if errors.Is(err, sentinel.ErrNotFound) {
		return errCodeExpired
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load verification code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, err := s.store.IncrAttempts(ctx, k)
		if errors.Is(err, sentinel.ErrNotFound) {
			return errCodeExpired
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not record attempt")
		}
		if attempts >= s.maxAttempts {
			_, _ = s.store.Take(ctx, k)
			s.logger.WarnContext(ctx, "verification code locked after failed attempts",
				"channel", ch.String(), "attempts", attempts)
			return errTooManyAttempts
		}
		return errCodeInvalid
	}

	if _, err := s.store.Take(ctx, k); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errCodeExpired
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not consume verification code")
	}
	return nil
}

func (s *Service) span(ctx context.Context, name string, ch verification.Channel, errp *error) (context.Context, func()) {
	ctx, span := s.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("verification.channel", ch.String())))
	start := time.Now()
	return ctx, func() {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.MessageOf(err, "verification backend failure"))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveCall(name, start, *errp)
		}
	}
}

func key(ch verification.Channel, destination string) string {
	return ch.String() + ":" + strings.ToLower(strings.TrimSpace(destination))
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verification.CodeLength, n.Int64()), nil
}

var _ verification.Service = (*Service)(nil)
