package models

import "etix/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Name  string `json:"name,omitempty"`

	// Balance holds refund credits, in minor units.
	Balance types.Money `json:"balance"`

	types.Timestamps
}
