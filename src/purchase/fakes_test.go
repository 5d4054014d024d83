package purchase

import (
	"context"
	"errors"
	"etix/src/gateway"
	"etix/src/models"
	"etix/src/tickets"
	"etix/src/types"
	"fmt"
	"sync"
	"time"
)

// In-memory collaborators with the same guard semantics as the real
// ledgers, mutex-held so the concurrency tests exercise real interleavings.

type fakeEvents struct {
	mu     sync.Mutex
	events map[uint]*models.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[uint]*models.Event{}}
}

func (f *fakeEvents) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %d", types.ErrNotFound, id)
	}
	clone := *event
	return &clone, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint]*models.User{}}
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", types.ErrNotFound, id)
	}
	clone := *user
	return &clone, nil
}

type fakeTickets struct {
	mu     sync.Mutex
	inv    *fakeInventory
	byID   map[uint]*models.Ticket
	byRef  map[string]uint
	nextID uint
}

func newFakeTickets(inv *fakeInventory) *fakeTickets {
	return &fakeTickets{inv: inv, byID: map[uint]*models.Ticket{}, byRef: map[string]uint{}, nextID: 1}
}

// Settle mirrors the real ledger's transactional semantics: on any error the
// fake stores nothing, exactly one caller per reference takes the seats, and
// a starved pending row can be resumed once seats free up.
func (f *fakeTickets) Settle(ctx context.Context, ticket *models.Ticket) (*models.Ticket, tickets.SettleState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byRef[ticket.PaymentReference]; ok {
		existing := f.byID[id]
		if existing.Status != types.TICKET_PENDING || existing.PaymentStatus != types.PAYMENT_SUCCESSFUL {
			clone := *existing
			return &clone, tickets.SettleDuplicate, nil
		}
		if err := f.inv.Decrement(ctx, existing.EventID, existing.Quantity); err != nil {
			if errors.Is(err, types.ErrInsufficientInventory) {
				clone := *existing
				return &clone, tickets.SettleStarved, nil
			}
			return nil, tickets.SettleConfirmed, err
		}
		existing.Status = types.TICKET_CONFIRMED
		clone := *existing
		return &clone, tickets.SettleConfirmed, nil
	}
	t := *ticket
	if err := f.inv.Decrement(ctx, t.EventID, t.Quantity); err != nil {
		if !errors.Is(err, types.ErrInsufficientInventory) {
			return nil, tickets.SettleConfirmed, err
		}
		t.PaymentStatus = types.PAYMENT_SUCCESSFUL
	} else {
		t.Status = types.TICKET_CONFIRMED
		t.PaymentStatus = types.PAYMENT_SUCCESSFUL
	}
	t.ID = f.nextID
	f.nextID++
	f.byID[t.ID] = &t
	f.byRef[t.PaymentReference] = t.ID
	clone := t
	if clone.Status == types.TICKET_PENDING {
		return &clone, tickets.SettleStarved, nil
	}
	return &clone, tickets.SettleConfirmed, nil
}

func (f *fakeTickets) FindByReference(ctx context.Context, reference string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byRef[reference]
	if !ok {
		return nil, fmt.Errorf("%w: ticket for reference %s", types.ErrNotFound, reference)
	}
	clone := *f.byID[id]
	return &clone, nil
}

func (f *fakeTickets) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: ticket %d", types.ErrNotFound, id)
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTickets) MarkUsed(ctx context.Context, ticketID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.byID[ticketID]
	if !ok {
		return fmt.Errorf("%w: ticket %d", types.ErrNotFound, ticketID)
	}
	if ticket.Status == types.TICKET_CONFIRMED && ticket.PaymentStatus == types.PAYMENT_SUCCESSFUL {
		ticket.Status = types.TICKET_USED
		ticket.UsedAt = &at
		return nil
	}
	if ticket.Status == types.TICKET_USED {
		return fmt.Errorf("%w: ticket %d", types.ErrAlreadyUsed, ticketID)
	}
	return fmt.Errorf("%w: ticket %d is %s", types.ErrInvalidState, ticketID, ticket.Status)
}

func (f *fakeTickets) SetQRPayload(ctx context.Context, ticketID uint, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket, ok := f.byID[ticketID]; ok {
		ticket.QRPayload = payload
	}
	return nil
}

func (f *fakeTickets) Cancel(ctx context.Context, ticketID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.byID[ticketID]
	if !ok {
		return fmt.Errorf("%w: ticket %d", types.ErrNotFound, ticketID)
	}
	if ticket.Status != types.TICKET_PENDING && ticket.Status != types.TICKET_CONFIRMED {
		return fmt.Errorf("%w: ticket %d cannot be cancelled", types.ErrInvalidState, ticketID)
	}
	ticket.Status = types.TICKET_CANCELED
	return nil
}

type fakeInventory struct {
	mu           sync.Mutex
	available    map[uint]uint
	total        map[uint]uint
	decrements   int
	decrementErr error // returned by the next Decrement, then cleared
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{available: map[uint]uint{}, total: map[uint]uint{}}
}

func (f *fakeInventory) Available(ctx context.Context, eventID uint) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.available[eventID]
	if !ok {
		return 0, fmt.Errorf("%w: event %d", types.ErrNotFound, eventID)
	}
	return n, nil
}

func (f *fakeInventory) Decrement(ctx context.Context, eventID uint, n uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decrementErr != nil {
		err := f.decrementErr
		f.decrementErr = nil
		return err
	}
	if f.available[eventID] < n {
		return fmt.Errorf("%w: event %d has fewer than %d tickets left", types.ErrInsufficientInventory, eventID, n)
	}
	f.available[eventID] -= n
	f.decrements++
	return nil
}

func (f *fakeInventory) Release(ctx context.Context, eventID uint, n uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.available[eventID]+n > f.total[eventID] {
		return fmt.Errorf("%w: release exceeds total for event %d", types.ErrInvalidState, eventID)
	}
	f.available[eventID] += n
	return nil
}

type fakeWallet struct {
	mu        sync.Mutex
	tickets   *fakeTickets
	inventory *fakeInventory
	credits   map[uint]types.Money
	refunds   int
}

func newFakeWallet(tickets *fakeTickets, inventory *fakeInventory) *fakeWallet {
	return &fakeWallet{tickets: tickets, inventory: inventory, credits: map[uint]types.Money{}}
}

func (f *fakeWallet) CreditRefund(ctx context.Context, ticket *models.Ticket, amount types.Money, percentage uint, reason string) (*models.Transaction, error) {
	f.tickets.mu.Lock()
	stored, ok := f.tickets.byID[ticket.ID]
	refundable := ok &&
		stored.PaymentStatus == types.PAYMENT_SUCCESSFUL &&
		(stored.Status == types.TICKET_PENDING || stored.Status == types.TICKET_CONFIRMED)
	if !refundable {
		f.tickets.mu.Unlock()
		return nil, fmt.Errorf("%w: ticket %d is not refundable", types.ErrInvalidState, ticket.ID)
	}
	heldSeats := stored.Status == types.TICKET_CONFIRMED
	stored.Status = types.TICKET_CANCELED
	stored.PaymentStatus = types.PAYMENT_REFUNDED
	f.tickets.mu.Unlock()

	if heldSeats {
		if err := f.inventory.Release(ctx, ticket.EventID, ticket.Quantity); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits[ticket.UserID] += amount
	f.refunds++
	return &models.Transaction{
		Reference:        fmt.Sprintf("REF-%s", ticket.PaymentReference),
		PaymentReference: ticket.PaymentReference,
		TicketID:         ticket.ID,
		UserID:           ticket.UserID,
		Amount:           amount,
		Percentage:       percentage,
		Reason:           reason,
		Status:           types.TRANSACTION_COMPLETED,
	}, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions int
	states   map[string]gateway.State
	amounts  map[string]types.Money
	err      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{states: map[string]gateway.State{}, amounts: map[string]types.Money{}}
}

func (f *fakeGateway) OpenSession(ctx context.Context, buyerEmail string, amount types.Money, metadata map[string]string) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sessions++
	ref := fmt.Sprintf("cs_test_%d", f.sessions)
	f.states[ref] = gateway.StatePending
	f.amounts[ref] = amount
	return &gateway.Session{Reference: ref, RedirectURL: "https://pay.example.com/" + ref}, nil
}

func (f *fakeGateway) GetStatus(ctx context.Context, reference string) (*gateway.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	state, ok := f.states[reference]
	if !ok {
		return nil, fmt.Errorf("%w: unknown reference %s", types.ErrTransientUpstream, reference)
	}
	return &gateway.Status{State: state, Amount: f.amounts[reference]}, nil
}

func (f *fakeGateway) setState(reference string, state gateway.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[reference] = state
}

type fakeIntents struct {
	mu      sync.Mutex
	intents map[string]*models.PaymentIntent
}

func newFakeIntents() *fakeIntents {
	return &fakeIntents{intents: map[string]*models.PaymentIntent{}}
}

func (f *fakeIntents) Put(ctx context.Context, intent *models.PaymentIntent, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *intent
	f.intents[intent.Reference] = &clone
	return nil
}

func (f *fakeIntents) Get(ctx context.Context, reference string) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent, ok := f.intents[reference]
	if !ok {
		return nil, fmt.Errorf("%w: intent %s", types.ErrNotFound, reference)
	}
	clone := *intent
	return &clone, nil
}

func (f *fakeIntents) Delete(ctx context.Context, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.intents, reference)
	return nil
}

func (f *fakeIntents) has(reference string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.intents[reference]
	return ok
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations int
	refundNotices int
	err           error
}

func (f *fakeNotifier) SendTicketConfirmation(email string, ticket *models.Ticket, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmations++
	return nil
}

func (f *fakeNotifier) SendRefundConfirmation(email string, txn *models.Transaction, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.refundNotices++
	return nil
}

var errGatewayDown = fmt.Errorf("%w: gateway unreachable", types.ErrTransientUpstream)
