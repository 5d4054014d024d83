package refund

import (
	"etix/src/types"
	"time"
)

// Outcome is a refund decision. Percentage applies to the amount originally
// paid; Reason explains ineligibility or the tier that matched.
type Outcome struct {
	Eligible   bool   `json:"eligible"`
	Percentage uint   `json:"percentage"`
	Reason     string `json:"reason"`
}

// Evaluate decides refund eligibility for a ticket at a point in time. The
// function is pure: it reads nothing and writes nothing, so the same inputs
// always yield the same decision.
//
// Tiers are keyed on whole days until the event, rounding partial days up,
// so 25 hours out still counts as more than one day:
//
//	> 7 days  100%
//	> 3 days   50%
//	> 1 day    25%
//	<= 1 day    0% (ineligible)
//
// An event cancelled by the organizer refunds in full regardless of timing.
func Evaluate(eventDate time.Time, eventStatus types.EventStatus, ticketStatus types.TicketStatus, now time.Time) Outcome {
	switch ticketStatus {
	case types.TICKET_USED:
		return Outcome{Reason: "ticket has already been used"}
	case types.TICKET_CANCELED:
		return Outcome{Reason: "ticket has already been cancelled"}
	case types.TICKET_EXPIRED:
		return Outcome{Reason: "ticket has expired"}
	}

	if eventStatus == types.EVENT_CANCELED {
		return Outcome{Eligible: true, Percentage: 100, Reason: "event cancelled by organizer"}
	}

	days := daysUntil(eventDate, now)
	switch {
	case days < 0:
		return Outcome{Reason: "event has passed"}
	case days > 7:
		return Outcome{Eligible: true, Percentage: 100, Reason: "more than 7 days before event"}
	case days > 3:
		return Outcome{Eligible: true, Percentage: 50, Reason: "more than 3 days before event"}
	case days > 1:
		return Outcome{Eligible: true, Percentage: 25, Reason: "more than 1 day before event"}
	default:
		return Outcome{Reason: "within 24 hours of event"}
	}
}

// daysUntil counts whole days from now to the event, rounding up. Negative
// means the event already started.
func daysUntil(eventDate, now time.Time) int {
	d := eventDate.Sub(now)
	if d < 0 {
		return -1
	}
	const day = 24 * time.Hour
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}
