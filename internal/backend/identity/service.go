// Package identity is the reference account backend: bcrypt password hashes,
// an account store and HS256 session tokens.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"zirrmi/internal/auth"
	jwttoken "zirrmi/internal/jwt_token"
	"zirrmi/internal/platform/metrics"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/email"
	"zirrmi/pkg/platform/sentinel"
	"zirrmi/pkg/requestcontext"
)

type AccountStore interface {
	Create(ctx context.Context, account Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
}

type TokenIssuer interface {
	GenerateSessionToken(userID id.UserID, email string) (string, error)
}

const (
	minPasswordLength = 8
	dummyPassword     = "not-a-real-password"
)

var errBadCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

type Service struct {
	accounts AccountStore
	tokens   TokenIssuer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	cost     int
	// dummyHash is compared against when no account matches. It is hashed at
	// cost like every stored password.
	dummyHash []byte
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

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

func New(accounts AccountStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		tokens:   tokens,
		logger:   slog.Default(),
		tracer:   otel.Tracer("zirrmi/internal/backend/identity"),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), s.cost)
	if err != nil {
		s.cost = bcrypt.DefaultCost
		hash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), s.cost)
	}
	s.dummyHash = hash
	return s
}

// Authenticate signs an existing user in or registers a new one, depending on
// the credentials' mode.
func (s *Service) Authenticate(ctx context.Context, creds auth.Credentials) (user auth.UserData, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Authenticate",
		trace.WithAttributes(attribute.String("auth.mode", creds.Mode.String())))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.MessageOf(err, "authentication failed"))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveCall("identity."+creds.Mode.String(), start, err)
		}
	}()

	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if creds.Mode == auth.ModeSignup {
		return s.signup(ctx, creds)
	}
	return s.login(ctx, creds)
}

func (s *Service) login(ctx context.Context, creds auth.Credentials) (auth.UserData, error) {
	account, err := s.accounts.FindByEmail(ctx, creds.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		// keep timing equal to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
		return auth.UserData{}, errBadCredentials
	}
	if err != nil {
		return auth.UserData{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		s.logger.InfoContext(ctx, "login rejected", "email", email.Mask(creds.Email))
		return auth.UserData{}, errBadCredentials
	}
	return s.userData(account)
}

func (s *Service) signup(ctx context.Context, creds auth.Credentials) (auth.UserData, error) {
	if !email.IsValid(creds.Email) {
		return auth.UserData{}, dErrors.New(dErrors.CodeInvalidInput, "invalid email address")
	}
	if len(creds.Password) < minPasswordLength {
		return auth.UserData{}, dErrors.Validation("password too short",
			dErrors.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return auth.UserData{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := Account{
		ID:           id.NewUserID(),
		Email:        creds.Email,
		PasswordHash: hash,
		FullName:     creds.FullName,
		Phone:        creds.Phone,
		CompanyName:  creds.CompanyName,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return auth.UserData{}, dErrors.Wrap(err, dErrors.CodeConflict, "an account with this email already exists")
		}
		return auth.UserData{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	s.logger.InfoContext(ctx, "account created", "user_id", account.ID.String(), "email", email.Mask(account.Email))
	return s.userData(account)
}

func (s *Service) userData(a Account) (auth.UserData, error) {
	token, err := s.tokens.GenerateSessionToken(a.ID, a.Email)
	if err != nil {
		return auth.UserData{}, err
	}
	return auth.UserData{
		UserID:      a.ID,
		Email:       a.Email,
		Phone:       a.Phone,
		FullName:    a.FullName,
		CompanyName: a.CompanyName,
		Token:       token,
	}, nil
}


var (
	_ auth.Service = (*Service)(nil)
	_ TokenIssuer  = (*jwttoken.JWTService)(nil)
)
