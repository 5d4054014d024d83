package mailer

import (
	"etix/src/lib"
	"etix/src/models"
	"fmt"
	"os"
)

// Dispatcher sends buyer-facing notifications. Delivery is best-effort:
// callers log failures and never roll back ledger state over them.
type Dispatcher struct {
	From     string
	FromName string
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		From:     os.Getenv("SMTP_FROM"),
		FromName: "noreply",
	}
}

func (d *Dispatcher) SendTicketConfirmation(email string, ticket *models.Ticket, event *models.Event) error {
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Your ticket for %s", event.Title),
		From:     d.From,
		FromName: d.FromName,
		To:       []string{email},
		Body: fmt.Sprintf(`
			<p>Your payment has been confirmed.</p>
			<p>Ticket number: <b>%s</b></p>
			<p>What: %s</p>
			<p>Where: %s</p>
			<p>When: %s</p>
			<p>Present the QR code from your ticket page at the venue.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			ticket.TicketNumber,
			event.Title,
			event.Location,
			event.Date,
		),
		Html: true,
	}
	return lib.SendMail(input)
}

func (d *Dispatcher) SendRefundConfirmation(email string, txn *models.Transaction, ticket *models.Ticket) error {
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Refund processed for ticket %s", ticket.TicketNumber),
		From:     d.From,
		FromName: d.FromName,
		To:       []string{email},
		Body: fmt.Sprintf(`
			<p>Your refund has been processed.</p>
			<p>Reference: <b>%s</b></p>
			<p>Amount credited: %d (%d%%)</p>
			<p>The amount has been added to your account balance.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			txn.Reference,
			txn.Amount,
			txn.Percentage,
		),
		Html: true,
	}
	return lib.SendMail(input)
}
