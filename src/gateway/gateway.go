package gateway

import (
	"context"
	"etix/src/types"
	"time"
)

type State string

const (
	StateSuccess State = "success"
	StateFailed  State = "failed"
	StatePending State = "pending"
)

type Session struct {
	Reference   string
	RedirectURL string
}

type Status struct {
	State  State
	Amount types.Money
	PaidAt *time.Time
}

// Gateway is the payment provider boundary. OpenSession starts a hosted
// payment and returns the provider-chosen reference; GetStatus reports the
// definitive transaction state for a reference. Amounts are minor units on
// both calls.
type Gateway interface {
	OpenSession(ctx context.Context, buyerEmail string, amount types.Money, metadata map[string]string) (*Session, error)
	GetStatus(ctx context.Context, reference string) (*Status, error)
}
