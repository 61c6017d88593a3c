package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "zirrmi/pkg/domain"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	t.Run("unset values fall back to zero", func(t *testing.T) {
		assert.True(t, UserID(ctx).IsNil())
		assert.Empty(t, RequestID(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("set values are returned", func(t *testing.T) {
		userID := id.NewUserID()
		fixed := time.Date(2025, 1, 4, 14, 30, 0, 0, time.UTC)

		ctx := WithUserID(ctx, userID)
		ctx = WithRequestID(ctx, "req-42")
		ctx = WithTime(ctx, fixed)

		assert.Equal(t, userID, UserID(ctx))
		assert.Equal(t, "req-42", RequestID(ctx))
		assert.Equal(t, fixed, Now(ctx))
	})
}
