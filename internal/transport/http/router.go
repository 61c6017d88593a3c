package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zirrmi/internal/auth"
	"zirrmi/internal/facility"
	"zirrmi/internal/onboarding"
	"zirrmi/internal/platform/metrics"
	"zirrmi/internal/platform/middleware"
	"zirrmi/internal/verification"
	id "zirrmi/pkg/domain"
)

// Onboarding is the orchestrator surface the HTTP layer drives.
type Onboarding interface {
	Snapshot() onboarding.Snapshot
	GetStarted() error
	OpenAuth(mode auth.Mode) error
	ToggleAuthMode() error
	UpdateAuthField(field auth.Field, value string) error
	FillAuth(form auth.Form) error
	SubmitAuth(ctx context.Context) error
	CloseAuth() error
	SelectChannel(ch verification.Channel) error
	SendCode(ctx context.Context) error
	EnterDigit(index int, value string) error
	Backspace(index int) error
	Verify(ctx context.Context) error
	CloseVerification() error
	AddFacility() (id.FacilityID, error)
	RemoveFacility(fid id.FacilityID) (bool, error)
	UpdateFacility(fid id.FacilityID, field facility.Field, value string) (bool, error)
	NextStep() error
	PreviousStep() error
	SubmitAssessment(ctx context.Context) error
	Logout() error
	CancelLogout() error
	ConfirmLogout(ctx context.Context) error
}

// Dispatcher runs fn with exclusive access to onboarding state.
type Dispatcher interface {
	Do(fn func())
}

// Handler exposes one onboarding session over JSON.
type Handler struct {
	session  Onboarding
	dispatch Dispatcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(session Onboarding, dispatch Dispatcher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		session:  session,
		dispatch: dispatch,
		logger:   logger,
		metrics:  m,
	}
}

// Register mounts the onboarding API under /api.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.handleSession)
		r.Post("/get-started", h.handleGetStarted)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/open", h.handleOpenAuth)
			r.Post("/toggle", h.handleToggleAuth)
			r.Post("/field", h.handleAuthField)
			r.Post("/fill", h.handleFillAuth)
			r.Post("/submit", h.handleSubmitAuth)
			r.Post("/close", h.handleCloseAuth)
		})

		r.Route("/verification", func(r chi.Router) {
			r.Post("/channel", h.handleSelectChannel)
			r.Post("/send", h.handleSendCode)
			r.Post("/digit", h.handleEnterDigit)
			r.Post("/backspace", h.handleBackspace)
			r.Post("/verify", h.handleVerify)
			r.Post("/close", h.handleCloseVerification)
		})

		r.Route("/assessment", func(r chi.Router) {
			r.Post("/facilities", h.handleAddFacility)
			r.Patch("/facilities/{facilityID}", h.handleUpdateFacility)
			r.Delete("/facilities/{facilityID}", h.handleRemoveFacility)
			r.Post("/next", h.handleNextStep)
			r.Post("/previous", h.handlePreviousStep)
			r.Post("/submit", h.handleSubmitAssessment)
		})

		r.Post("/logout", h.handleLogout)
		r.Post("/logout/cancel", h.handleCancelLogout)
		r.Post("/logout/confirm", h.handleConfirmLogout)
	})
}

// NewRouter wires middleware, the onboarding API, /metrics and /health.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(timeout(30 * time.Second))
		h.Register(r)
	})
	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"timeout"}`)
	}
}
