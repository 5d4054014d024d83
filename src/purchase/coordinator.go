package purchase

import (
	"context"
	"errors"
	"etix/src/cache"
	"etix/src/gateway"
	"etix/src/models"
	"etix/src/monitoring"
	"etix/src/refund"
	"etix/src/tickets"
	"etix/src/types"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Collaborator boundaries. The coordinator receives all of these at
// construction; it opens no connections and reads no globals of its own.

type EventFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Event, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type TicketLedger interface {
	Settle(ctx context.Context, ticket *models.Ticket) (*models.Ticket, tickets.SettleState, error)
	FindByReference(ctx context.Context, reference string) (*models.Ticket, error)
	FindByID(ctx context.Context, id uint) (*models.Ticket, error)
	MarkUsed(ctx context.Context, ticketID uint, at time.Time) error
	SetQRPayload(ctx context.Context, ticketID uint, payload string) error
	Cancel(ctx context.Context, ticketID uint) error
}

// InventoryLedger is the availability read at initiation. Seat arithmetic
// happens inside the ticket ledger's settlement transaction and the wallet
// ledger's refund transaction.
type InventoryLedger interface {
	Available(ctx context.Context, eventID uint) (uint, error)
}

type WalletLedger interface {
	CreditRefund(ctx context.Context, ticket *models.Ticket, amount types.Money, percentage uint, reason string) (*models.Transaction, error)
}

type Notifier interface {
	SendTicketConfirmation(email string, ticket *models.Ticket, event *models.Event) error
	SendRefundConfirmation(email string, txn *models.Transaction, ticket *models.Ticket) error
}

// Coordinator drives the purchase pipeline from initiation through
// reconciliation, admission and refund. It owns no state: every durable
// fact lives in the ledgers, every pending fact in the intent cache.
type Coordinator struct {
	events    EventFinder
	users     UserFinder
	tickets   TicketLedger
	inventory InventoryLedger
	wallet    WalletLedger
	gw        gateway.Gateway
	intents   cache.IntentStore
	notifier  Notifier
	intentTTL time.Duration
	qrKey     []byte
	now       func() time.Time
}

type CoordinatorParams struct {
	Events    EventFinder
	Users     UserFinder
	Tickets   TicketLedger
	Inventory InventoryLedger
	Wallet    WalletLedger
	Gateway   gateway.Gateway
	Intents   cache.IntentStore
	Notifier  Notifier
	IntentTTL time.Duration
	QRKey     []byte
	Now       func() time.Time
}

func NewCoordinator(p CoordinatorParams) *Coordinator {
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Coordinator{
		events:    p.Events,
		users:     p.Users,
		tickets:   p.Tickets,
		inventory: p.Inventory,
		wallet:    p.Wallet,
		gw:        p.Gateway,
		intents:   p.Intents,
		notifier:  p.Notifier,
		intentTTL: p.IntentTTL,
		qrKey:     p.QRKey,
		now:       p.Now,
	}
}

// InitiatePurchase opens a gateway session for qty tickets and caches a
// payment intent under the gateway reference. Availability is checked but
// not reserved; the authoritative decrement happens at reconciliation, so a
// buyer can still lose the race after paying.
func (c *Coordinator) InitiatePurchase(ctx context.Context, userID, eventID, qty uint) (*models.PaymentIntent, string, error) {
	if qty == 0 {
		return nil, "", fmt.Errorf("%w: quantity must be positive", types.ErrInvalidState)
	}
	event, err := c.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	if event.Status != types.EVENT_PUBLISHED {
		return nil, "", fmt.Errorf("%w: event %d is %s", types.ErrInvalidState, eventID, event.Status)
	}
	now := c.now()
	if event.Date.Before(now) {
		return nil, "", fmt.Errorf("%w: event %d has passed", types.ErrInvalidState, eventID)
	}
	available, err := c.inventory.Available(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	if available < qty {
		return nil, "", fmt.Errorf("%w: %d requested, %d available", types.ErrInsufficientInventory, qty, available)
	}
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	amount := event.TicketPrice.Times(qty)
	timer := prometheus.NewTimer(monitoring.GatewayRequestDuration.WithLabelValues("open_session"))
	session, err := c.gw.OpenSession(ctx, user.Email, amount, map[string]string{
		"event": fmt.Sprint(eventID),
		"user":  fmt.Sprint(userID),
		"qty":   fmt.Sprint(qty),
	})
	timer.ObserveDuration()
	if err != nil {
		return nil, "", err
	}

	intent := &models.PaymentIntent{
		Reference: session.Reference,
		EventID:   eventID,
		UserID:    userID,
		Quantity:  qty,
		UnitPrice: event.TicketPrice,
		Amount:    amount,
		Status:    types.INTENT_PENDING,
		CreatedAt: now,
		ExpiresAt: now.Add(c.intentTTL),
	}
	if err := c.intents.Put(ctx, intent, c.intentTTL); err != nil {
		return nil, "", err
	}
	monitoring.PurchasesInitiated.Inc()
	log.Printf("[purchase] intent %s opened: user=%d event=%d qty=%d amount=%d\n", intent.Reference, userID, eventID, qty, amount)
	return intent, session.RedirectURL, nil
}

// ReconcilePayment settles the intent behind a gateway reference. It is safe
// to call any number of times, concurrently, from the webhook and from
// client-driven verification: the ticket insert, seat decrement and confirm
// run in one settlement transaction keyed on the unique payment reference,
// so exactly one caller commits and notifies the buyer, everyone else gets
// the winner's ticket, and a failure mid-settlement rolls back whole.
func (c *Coordinator) ReconcilePayment(ctx context.Context, reference string) (*models.Ticket, error) {
	intent, err := c.intents.Get(ctx, reference)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// The intent is gone but the ticket may already exist from an
			// earlier reconciliation of the same reference.
			if ticket, ferr := c.tickets.FindByReference(ctx, reference); ferr == nil {
				monitoring.Reconciliations.WithLabelValues("duplicate").Inc()
				return ticket, nil
			}
			monitoring.Reconciliations.WithLabelValues("expired").Inc()
			return nil, fmt.Errorf("%w: %s", types.ErrIntentExpired, reference)
		}
		return nil, err
	}
	if intent.Status == types.INTENT_FAILED {
		monitoring.Reconciliations.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: payment for %s failed", types.ErrPaymentNotSuccessful, reference)
	}

	timer := prometheus.NewTimer(monitoring.GatewayRequestDuration.WithLabelValues("get_status"))
	status, err := c.gw.GetStatus(ctx, reference)
	timer.ObserveDuration()
	if err != nil {
		monitoring.Reconciliations.WithLabelValues("transient").Inc()
		return nil, err
	}
	switch status.State {
	case gateway.StatePending:
		// Not an error state upstream; the intent stays cached for a retry.
		monitoring.Reconciliations.WithLabelValues("pending").Inc()
		return nil, fmt.Errorf("%w: payment for %s is still pending", types.ErrPaymentNotSuccessful, reference)
	case gateway.StateFailed:
		// The intent stays cached, marked failed, until its TTL runs out so
		// a re-poll reads a definitive failure rather than an expired intent.
		intent.Status = types.INTENT_FAILED
		if ttl := intent.ExpiresAt.Sub(c.now()); ttl > 0 {
			if err := c.intents.Put(ctx, intent, ttl); err != nil {
				log.Printf("[purchase] error marking intent %s failed: %s\n", reference, err.Error())
			}
		}
		monitoring.Reconciliations.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: payment for %s failed", types.ErrPaymentNotSuccessful, reference)
	}
	if status.Amount != intent.Amount {
		log.Printf("[purchase] amount mismatch on %s: charged=%d expected=%d\n", reference, status.Amount, intent.Amount)
	}

	ticket := &models.Ticket{
		TicketNumber:     newTicketNumber(),
		EventID:          intent.EventID,
		UserID:           intent.UserID,
		Quantity:         intent.Quantity,
		Price:            intent.UnitPrice,
		PaymentReference: reference,
		PaymentStatus:    types.PAYMENT_PENDING,
		Status:           types.TICKET_PENDING,
		PurchaseDate:     c.now(),
	}
	ticket, state, err := c.tickets.Settle(ctx, ticket)
	if err != nil {
		// The settlement transaction rolled back whole; the intent stays
		// cached and a retry starts from nothing.
		monitoring.Reconciliations.WithLabelValues("transient").Inc()
		return nil, err
	}
	switch state {
	case tickets.SettleDuplicate:
		monitoring.Reconciliations.WithLabelValues("duplicate").Inc()
		return ticket, nil
	case tickets.SettleStarved:
		// Paid but sold out. The ticket stays pending with the payment
		// recorded so support can refund or reseat the buyer; the intent
		// stays cached so a later retry can settle a freed seat.
		monitoring.Reconciliations.WithLabelValues("starved").Inc()
		return nil, fmt.Errorf("%w: event %d sold out before %s settled", types.ErrInsufficientInventory, intent.EventID, reference)
	}

	payload, err := sealCode(c.qrKey, admissionCode{TicketID: ticket.ID, TicketNumber: ticket.TicketNumber})
	if err != nil {
		log.Printf("[purchase] error sealing admission code for ticket %d: %s\n", ticket.ID, err.Error())
	} else if err := c.tickets.SetQRPayload(ctx, ticket.ID, payload); err != nil {
		log.Printf("[purchase] error storing admission code for ticket %d: %s\n", ticket.ID, err.Error())
	} else {
		ticket.QRPayload = payload
	}

	if err := c.intents.Delete(ctx, reference); err != nil {
		log.Printf("[purchase] error dropping settled intent %s: %s\n", reference, err.Error())
	}

	if user, uerr := c.users.FindByID(ctx, intent.UserID); uerr == nil {
		event, eerr := c.events.FindByID(ctx, intent.EventID)
		if eerr != nil {
			event = &models.Event{ID: intent.EventID}
		}
		if nerr := c.notifier.SendTicketConfirmation(user.Email, ticket, event); nerr != nil {
			log.Printf("[purchase] error sending confirmation for ticket %d: %s\n", ticket.ID, nerr.Error())
		}
	}

	monitoring.Reconciliations.WithLabelValues("confirmed").Inc()
	log.Printf("[purchase] reconciled %s: ticket=%d user=%d event=%d qty=%d\n", reference, ticket.ID, intent.UserID, intent.EventID, intent.Quantity)
	return ticket, nil
}

// LookupIntent reads the cached intent for a reference without touching the
// gateway. Owner-scoped: a reference belonging to someone else reads as
// unauthorized, not as absent.
func (c *Coordinator) LookupIntent(ctx context.Context, userID uint, reference string) (*models.PaymentIntent, error) {
	intent, err := c.intents.Get(ctx, reference)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrIntentExpired, reference)
		}
		return nil, err
	}
	if intent.UserID != userID {
		return nil, fmt.Errorf("%w: intent %s belongs to another user", types.ErrUnauthorized, reference)
	}
	return intent, nil
}

// VerifyAdmission decodes a sealed admission code and marks the ticket used.
// Replays surface as ErrAlreadyUsed; codes that decrypt but do not match
// their ticket row are rejected outright.
func (c *Coordinator) VerifyAdmission(ctx context.Context, code string) (*models.Ticket, error) {
	decoded, err := openCode(c.qrKey, code)
	if err != nil {
		monitoring.Admissions.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: unreadable admission code", types.ErrUnauthorized)
	}
	ticket, err := c.tickets.FindByID(ctx, decoded.TicketID)
	if err != nil {
		monitoring.Admissions.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if ticket.TicketNumber != decoded.TicketNumber {
		monitoring.Admissions.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: admission code does not match ticket", types.ErrUnauthorized)
	}
	at := c.now()
	if err := c.tickets.MarkUsed(ctx, ticket.ID, at); err != nil {
		if errors.Is(err, types.ErrAlreadyUsed) {
			monitoring.Admissions.WithLabelValues("replay").Inc()
		} else {
			monitoring.Admissions.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}
	ticket.Status = types.TICKET_USED
	ticket.UsedAt = &at
	monitoring.Admissions.WithLabelValues("admitted").Inc()
	log.Printf("[admission] ticket %d (%s) admitted\n", ticket.ID, ticket.TicketNumber)
	return ticket, nil
}

// QuoteRefund evaluates the refund policy for a ticket without changing
// anything. The returned amount is what ProcessRefund would credit.
func (c *Coordinator) QuoteRefund(ctx context.Context, userID, ticketID uint) (*refund.Outcome, types.Money, error) {
	ticket, err := c.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, 0, err
	}
	if ticket.UserID != userID {
		return nil, 0, fmt.Errorf("%w: ticket %d belongs to another user", types.ErrUnauthorized, ticketID)
	}
	outcome := refund.Evaluate(ticket.Event.Date, ticket.Event.Status, ticket.Status, c.now())
	amount := ticket.Price.Times(ticket.Quantity).Percent(outcome.Percentage)
	if !outcome.Eligible {
		amount = 0
	}
	return &outcome, amount, nil
}

// ProcessRefund cancels a ticket and credits the policy amount to the
// buyer's balance. The wallet ledger makes the state flip, the credit, the
// transaction record and the inventory release one atomic unit.
func (c *Coordinator) ProcessRefund(ctx context.Context, userID, ticketID uint) (*models.Transaction, error) {
	ticket, err := c.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, fmt.Errorf("%w: ticket %d belongs to another user", types.ErrUnauthorized, ticketID)
	}
	outcome := refund.Evaluate(ticket.Event.Date, ticket.Event.Status, ticket.Status, c.now())
	if !outcome.Eligible {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidState, outcome.Reason)
	}
	amount := ticket.Price.Times(ticket.Quantity).Percent(outcome.Percentage)
	txn, err := c.wallet.CreditRefund(ctx, ticket, amount, outcome.Percentage, outcome.Reason)
	if err != nil {
		return nil, err
	}
	monitoring.RefundsProcessed.Inc()
	if user, uerr := c.users.FindByID(ctx, userID); uerr == nil {
		if nerr := c.notifier.SendRefundConfirmation(user.Email, txn, ticket); nerr != nil {
			log.Printf("[refund] error sending refund notice for ticket %d: %s\n", ticket.ID, nerr.Error())
		}
	}
	return txn, nil
}

// CancelTicket abandons a pending purchase or, for a confirmed ticket,
// routes through the refund pipeline so the buyer keeps whatever the policy
// grants.
func (c *Coordinator) CancelTicket(ctx context.Context, userID, ticketID uint) (*models.Ticket, error) {
	ticket, err := c.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, fmt.Errorf("%w: ticket %d belongs to another user", types.ErrUnauthorized, ticketID)
	}
	switch ticket.Status {
	case types.TICKET_PENDING:
		if err := c.tickets.Cancel(ctx, ticketID); err != nil {
			return nil, err
		}
		if err := c.intents.Delete(ctx, ticket.PaymentReference); err != nil {
			log.Printf("[purchase] error dropping intent %s on cancel: %s\n", ticket.PaymentReference, err.Error())
		}
		ticket.Status = types.TICKET_CANCELED
		return ticket, nil
	case types.TICKET_CONFIRMED:
		if _, err := c.ProcessRefund(ctx, userID, ticketID); err != nil {
			return nil, err
		}
		return c.tickets.FindByID(ctx, ticketID)
	default:
		return nil, fmt.Errorf("%w: ticket %d is %s", types.ErrInvalidState, ticketID, ticket.Status)
	}
}

func newTicketNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("TKT-%s", strings.ToUpper(raw[:12]))
}
