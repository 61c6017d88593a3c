package audit_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "zirrmi/pkg/domain"
	audit "zirrmi/pkg/platform/audit"
	"zirrmi/pkg/platform/audit/store/memory"
	"zirrmi/pkg/requestcontext"
)

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := audit.NewPublisher(store)

	userID := id.NewUserID()
	fixed := time.Date(2025, 1, 4, 8, 15, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-7")

	err := pub.Emit(ctx, audit.Event{UserID: userID, Action: audit.EventLoginSucceeded.String()})
	require.NoError(t, err)

	events, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-7", events[0].RequestID)
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, audit.Event) error { return errors.New("sink down") }

func TestLog(t *testing.T) {
	t.Run("fills category and emits", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		audit.Log(context.Background(), logger, audit.NewPublisher(store),
			audit.Event{Action: audit.EventAssessmentSubmitted.String()}, "facilities", 2)

		events, err := store.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryOperations, events[0].Category)
		assert.Contains(t, buf.String(), `"log_type":"audit"`)
		assert.Contains(t, buf.String(), `"facilities":2`)
	})

	t.Run("emitter failure is logged not returned", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		audit.Log(context.Background(), logger, failingEmitter{},
			audit.Event{Action: audit.EventLogoutConfirmed.String()})

		assert.Contains(t, buf.String(), "failed to emit audit event")
	})

	t.Run("nil logger and emitter are tolerated", func(t *testing.T) {
		assert.NotPanics(t, func() {
			audit.Log(context.Background(), nil, nil, audit.Event{Action: "noop"})
		})
	})
}
