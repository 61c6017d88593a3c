package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler(t *testing.T) {
	Given(t, "a manual scheduler", func(t *testing.T) {
		s := NewManualScheduler()

		When(t, "a call is queued", func(t *testing.T) {
			var got error
			s.Go(context.Background(),
				func(context.Context) error { return errors.New("nope") },
				func(err error) { got = err },
			)

			Then(t, "nothing runs until flushed", func(t *testing.T) {
				require.Equal(t, 1, s.Pending())
				assert.Nil(t, got)
				s.Flush()
				assert.EqualError(t, got, "nope")
				assert.Equal(t, 0, s.Pending())
			})
		})

		When(t, "a ticker is stopped", func(t *testing.T) {
			ticks := 0
			stop := s.Every(time.Second, func() { ticks++ })
			s.Tick(3)
			stop()
			s.Tick(2)

			Then(t, "it no longer fires", func(t *testing.T) {
				assert.Equal(t, 3, ticks)
				assert.Equal(t, 0, s.ActiveTickers())
			})
		})
	})
}
