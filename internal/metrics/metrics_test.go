package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSchedulingMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulingMetrics(reg)

	m.ObserveBooking(BookingCreated)
	m.ObserveBooking(BookingConflict)
	m.ObserveBooking(BookingConflict)
	m.ObserveTransition("PENDING", "CONFIRMED")
	m.ObserveSubmission("stored")
	m.ObserveAvailability(true, 0.002)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(BookingCreated)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues(BookingConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("PENDING", "CONFIRMED")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.availabilityLookup))
}

func TestSchedulingMetrics_NilSafe(t *testing.T) {
	var m *SchedulingMetrics
	m.ObserveBooking(BookingCreated)
	m.ObserveTransition("PENDING", "CANCELLED")
	m.ObserveSubmission("stored")
	m.ObserveAvailability(false, 0.1)
}
