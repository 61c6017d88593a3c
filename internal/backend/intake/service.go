// Package intake is the reference assessment backend. It validates and keeps
// submitted facility batches in memory.
package intake

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"zirrmi/internal/facility"
	"zirrmi/internal/platform/metrics"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/requestcontext"
)

// Submission is one accepted assessment.
type Submission struct {
	ID          id.SubmissionID
	UserID      id.UserID
	Facilities  []facility.Record
	SubmittedAt time.Time
}

type Service struct {
	mu          sync.RWMutex
	submissions []Submission
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
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

func New(opts ...Option) *Service {
	s := &Service{
		logger: slog.Default(),
		tracer: otel.Tracer("zirrmi/internal/backend/intake"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Submit(ctx context.Context, facilities []facility.Record) (err error) {
	ctx, span := s.tracer.Start(ctx, "intake.Submit",
		trace.WithAttributes(attribute.Int("assessment.facilities", len(facilities))))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.MessageOf(err, "submission failed"))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveCall("intake.submit", start, err)
		}
	}()

	if len(facilities) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "an assessment needs at least one facility")
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "submission cancelled")
	}

	sub := Submission{
		ID:          id.NewSubmissionID(),
		UserID:      requestcontext.UserID(ctx),
		Facilities:  append([]facility.Record(nil), facilities...),
		SubmittedAt: requestcontext.Now(ctx),
	}
	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "assessment received",
		"submission_id", sub.ID.String(),
		"facilities", len(sub.Facilities),
	)
	return nil
}

// Submissions returns every accepted assessment, oldest first.
func (s *Service) Submissions() []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Submission(nil), s.submissions...)
}
