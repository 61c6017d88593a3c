package audit

import (
	"context"
	"log/slog"

	"zirrmi/pkg/requestcontext"
)

// Store persists audit events. It is append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events and hands them to a Store so tests
// can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	return p.store.Append(ctx, base)
}

// Emitter is the consumer-side view of Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Log writes the event to the structured logger and emits it. Emission errors
// are logged, never returned: audit must not break a user flow.
func Log(ctx context.Context, logger *slog.Logger, emitter Emitter, event Event, attrs ...any) {
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if logger != nil {
		args := append(attrs, "event", event.Action, "log_type", "audit")
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		logger.InfoContext(ctx, event.Action, args...)
	}
	if emitter == nil {
		return
	}
	if err := emitter.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}

var _ Emitter = (*Publisher)(nil)
