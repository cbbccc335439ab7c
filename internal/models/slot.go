package models

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING"
)

// Valid reports whether s is one of the persisted slot states.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return true
	}
	return false
}

// Slot is a time unit owned by exactly one user. Date and Time are kept
// as the owner entered them (YYYY-MM-DD and HH:MM).
type Slot struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SwappableSlot is a slot offered for exchange along with its owner's name.
type SwappableSlot struct {
	Slot
	OwnerName string `json:"owner_name"`
}

type CreateSlotParams struct {
	UserID uuid.UUID `json:"-"`
	Date   string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time   string    `json:"time" validate:"required,datetime=15:04"`
}
