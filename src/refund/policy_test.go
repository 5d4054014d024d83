package refund

import (
	"etix/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateTiers(t *testing.T) {
	paid := types.Money(10000)

	tests := []struct {
		name     string
		until    time.Duration
		eligible bool
		pct      uint
		amount   types.Money
	}{
		{"ten days out", 10 * 24 * time.Hour, true, 100, 10000},
		{"five days out", 5 * 24 * time.Hour, true, 50, 5000},
		{"two days out", 2 * 24 * time.Hour, true, 25, 2500},
		{"twelve hours out", 12 * time.Hour, false, 0, 0},
		{"twenty five hours out", 25 * time.Hour, true, 25, 2500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(now.Add(tt.until), types.EVENT_PUBLISHED, types.TICKET_CONFIRMED, now)
			assert.Equal(t, tt.eligible, out.Eligible)
			assert.Equal(t, tt.pct, out.Percentage)
			if tt.eligible {
				assert.Equal(t, tt.amount, paid.Percent(out.Percentage))
			}
		})
	}
}

func TestEvaluatePastEvent(t *testing.T) {
	out := Evaluate(now.Add(-time.Hour), types.EVENT_PUBLISHED, types.TICKET_CONFIRMED, now)
	assert.False(t, out.Eligible)
	assert.Equal(t, "event has passed", out.Reason)
}

func TestEvaluateOrganizerCancelled(t *testing.T) {
	// Full refund regardless of how close the event is.
	out := Evaluate(now.Add(time.Hour), types.EVENT_CANCELED, types.TICKET_CONFIRMED, now)
	assert.True(t, out.Eligible)
	assert.Equal(t, uint(100), out.Percentage)

	out = Evaluate(now.Add(-time.Hour), types.EVENT_CANCELED, types.TICKET_CONFIRMED, now)
	assert.True(t, out.Eligible)
	assert.Equal(t, uint(100), out.Percentage)
}

func TestEvaluateIneligibleStatuses(t *testing.T) {
	for _, status := range []types.TicketStatus{types.TICKET_USED, types.TICKET_CANCELED, types.TICKET_EXPIRED} {
		out := Evaluate(now.Add(10*24*time.Hour), types.EVENT_PUBLISHED, status, now)
		assert.False(t, out.Eligible, "status %s must be ineligible", status)
		assert.Zero(t, out.Percentage)
	}
	// A used ticket stays ineligible even when the organizer cancels.
	out := Evaluate(now.Add(time.Hour), types.EVENT_CANCELED, types.TICKET_USED, now)
	assert.False(t, out.Eligible)
}

func TestEvaluateMonotonicPercentage(t *testing.T) {
	// Walking toward the event, the refundable percentage never increases.
	last := uint(100)
	for h := 30 * 24; h >= 0; h-- {
		out := Evaluate(now.Add(time.Duration(h)*time.Hour), types.EVENT_PUBLISHED, types.TICKET_CONFIRMED, now)
		assert.LessOrEqual(t, out.Percentage, last, "at %d hours out", h)
		last = out.Percentage
	}
}

func TestEvaluateIsPure(t *testing.T) {
	date := now.Add(5 * 24 * time.Hour)
	first := Evaluate(date, types.EVENT_PUBLISHED, types.TICKET_CONFIRMED, now)
	for range 10 {
		assert.Equal(t, first, Evaluate(date, types.EVENT_PUBLISHED, types.TICKET_CONFIRMED, now))
	}
}
