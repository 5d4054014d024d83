package models

import (
	"etix/src/types"
	"time"
)

type Event struct {
	ID       uint              `gorm:"primarykey" json:"id"`
	Title    string            `json:"title,omitempty"`
	Location string            `json:"location,omitempty"`
	Date     time.Time         `json:"date,omitempty"`
	Status   types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`

	// TicketPrice is per unit, in minor currency units.
	TicketPrice      types.Money `json:"ticket_price"`
	TotalTickets     uint        `json:"total_tickets"`
	AvailableTickets uint        `json:"available_tickets"`

	types.Timestamps
}
