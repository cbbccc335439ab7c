package models

import (
	"time"

	"github.com/google/uuid"
)

type SwapEventType string

const (
	SwapEventProposed SwapEventType = "swap.proposed"
	SwapEventAccepted SwapEventType = "swap.accepted"
	SwapEventRejected SwapEventType = "swap.rejected"
)

// SwapEvent tells a counterparty that a swap request changed state.
type SwapEvent struct {
	Type        SwapEventType `json:"type"`
	RequestID   uuid.UUID     `json:"request_id"`
	MySlotID    uuid.UUID     `json:"my_slot_id"`
	TheirSlotID uuid.UUID     `json:"their_slot_id"`
	ActorID     uuid.UUID     `json:"actor_id"`
	OccurredAt  time.Time     `json:"occurred_at"`
}
