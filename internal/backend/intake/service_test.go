package intake

import (
	"context"
	"testing"
	"time"

	"zirrmi/internal/facility"
	"zirrmi/internal/platform/metrics"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/requestcontext"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	t.Run("records the batch with request metadata", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		svc := New(WithMetrics(m))
		user := id.NewUserID()
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(requestcontext.WithUserID(context.Background(), user), now)
		records := facility.NewCollection().Records()

		require.NoError(t, svc.Submit(ctx, records))

		subs := svc.Submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, user, subs[0].UserID)
		assert.Equal(t, now, subs[0].SubmittedAt)
		assert.Equal(t, records, subs[0].Facilities)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.ExternalCalls.WithLabelValues("intake.submit", "success")))
	})

	t.Run("empty batches are rejected", func(t *testing.T) {
		err := New().Submit(context.Background(), nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("cancelled calls are not recorded", func(t *testing.T) {
		svc := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := svc.Submit(ctx, facility.NewCollection().Records())

		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.Empty(t, svc.Submissions())
	})
}
