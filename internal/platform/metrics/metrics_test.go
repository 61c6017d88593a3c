package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTransition("landing", "dashboard")
	m.RecordValidationFailure("assessment")
	m.RecordValidationFailure("assessment")
	m.ObserveCall("auth.authenticate", time.Now(), nil)
	m.ObserveCall("auth.authenticate", time.Now(), errors.New("boom"))
	m.AddFacilitiesAssessed(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViewTransitions.WithLabelValues("landing", "dashboard")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("assessment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExternalCalls.WithLabelValues("auth.authenticate", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FacilitiesAssessed))
}
