package gateway

import (
	"context"
	"errors"
	"etix/src/types"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway drives hosted Checkout sessions. The session ID doubles as
// the payment reference carried through the whole pipeline.
type StripeGateway struct {
	sc       *stripe.Client
	currency string
	timeout  time.Duration
}

func NewStripeGateway(sc *stripe.Client, currency string, timeout time.Duration) *StripeGateway {
	return &StripeGateway{sc: sc, currency: currency, timeout: timeout}
}

func (g *StripeGateway) OpenSession(ctx context.Context, buyerEmail string, amount types.Money, metadata map[string]string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
	createParams := &stripe.CheckoutSessionCreateParams{
		SuccessURL:    stripe.String(successUrl),
		UIMode:        stripe.String("hosted"),
		Mode:          stripe.String("payment"),
		CustomerEmail: stripe.String(buyerEmail),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(int64(amount)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String("Event ticket"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}
	cs, err := g.sc.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	log.Printf("[gateway] opened checkout session %s for %s\n", cs.ID, buyerEmail)
	return &Session{Reference: cs.ID, RedirectURL: cs.URL}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, reference string) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cs, err := g.sc.V1CheckoutSessions.Retrieve(ctx, reference, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	status := &Status{
		State:  mapSessionStatus(cs.PaymentStatus, cs.Status),
		Amount: types.Money(cs.AmountTotal),
	}
	return status, nil
}

func mapSessionStatus(payment stripe.CheckoutSessionPaymentStatus, session stripe.CheckoutSessionStatus) State {
	if payment == stripe.CheckoutSessionPaymentStatusPaid {
		return StateSuccess
	}
	if session == stripe.CheckoutSessionStatusExpired {
		return StateFailed
	}
	return StatePending
}

// wrapStripeErr classifies provider failures: timeouts and 5xx responses
// are transient and must leave reconciliation state untouched.
func wrapStripeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: gateway timeout: %s", types.ErrTransientUpstream, err.Error())
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: gateway error: %s", types.ErrTransientUpstream, stripeErr.Msg)
		}
		return err
	}
	return fmt.Errorf("%w: %s", types.ErrTransientUpstream, err.Error())
}
