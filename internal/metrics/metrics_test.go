package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(connections)
	IncConnection()
	assert.Equal(t, before+1, testutil.ToFloat64(connections))

	cmd := commands.WithLabelValues("Making Reservation")
	beforeCmd := testutil.ToFloat64(cmd)
	IncCommand("Making Reservation")
	assert.Equal(t, beforeCmd+1, testutil.ToFloat64(cmd))

	outcome := reservationOutcomes.WithLabelValues("Success")
	beforeOutcome := testutil.ToFloat64(outcome)
	IncReservationOutcome("Success")
	assert.Equal(t, beforeOutcome+1, testutil.ToFloat64(outcome))

	change := adminChanges.WithLabelValues("success")
	beforeChange := testutil.ToFloat64(change)
	IncAdminChange("success")
	assert.Equal(t, beforeChange+1, testutil.ToFloat64(change))
}
