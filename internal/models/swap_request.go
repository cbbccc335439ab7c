package models

import (
	"time"

	"github.com/google/uuid"
)

type SwapRequestStatus string

const (
	SwapRequestStatusPending  SwapRequestStatus = "PENDING"
	SwapRequestStatusAccepted SwapRequestStatus = "ACCEPTED"
	SwapRequestStatusRejected SwapRequestStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed from s.
func (s SwapRequestStatus) Terminal() bool {
	return s == SwapRequestStatusAccepted || s == SwapRequestStatusRejected
}

// SwapRequest proposes exchanging MySlotID (owned by the requester when the
// request was made) for TheirSlotID (owned by the receiver at that time).
type SwapRequest struct {
	ID          uuid.UUID         `json:"id"`
	RequesterID uuid.UUID         `json:"requester_id"`
	ReceiverID  uuid.UUID         `json:"receiver_id"`
	MySlotID    uuid.UUID         `json:"my_slot_id"`
	TheirSlotID uuid.UUID         `json:"their_slot_id"`
	Status      SwapRequestStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
}

// IncomingSwapRequest is a pending request as seen by its receiver.
type IncomingSwapRequest struct {
	SwapRequest
	RequesterName string `json:"requester_name"`
}

// SwapResult is the outcome of answering a swap request.
type SwapResult struct {
	Request   *SwapRequest `json:"request"`
	MySlot    *Slot        `json:"my_slot"`
	TheirSlot *Slot        `json:"their_slot"`
}

type ProposeSwapParams struct {
	MySlotID    string `json:"my_slot_id" validate:"required,uuid"`
	TheirSlotID string `json:"their_slot_id" validate:"required,uuid"`
}

type RespondSwapParams struct {
	Accept *bool `json:"accept" validate:"required"`
}
