package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// SlotStore persists slots. Every mutation is conditional on the state the
// caller last observed and fails with ErrStaleWrite when it has moved on.
type SlotStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Slot, error)
	Create(ctx context.Context, owner uuid.UUID, date, slotTime string) (*models.Slot, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to models.SlotStatus) error
	SetOwnerAndStatus(ctx context.Context, id uuid.UUID, fromOwner uuid.UUID, fromStatus models.SlotStatus, owner uuid.UUID, status models.SlotStatus) error
	Delete(ctx context.Context, id, owner uuid.UUID) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Slot, error)
	ListSwappableExcluding(ctx context.Context, owner uuid.UUID) ([]models.SwappableSlot, error)
}

// SwapRequestStore persists swap requests.
type SwapRequestStore interface {
	Create(ctx context.Context, requesterID, receiverID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to models.SwapRequestStatus) error
	ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.IncomingSwapRequest, error)
	ListPendingForRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.SwapRequest, error)
}

// Transactor applies a group of store operations atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(stores SwapStores) error) error
}

// EventPublisher delivers swap events to a single user.
type EventPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event models.SwapEvent) error
}

// EventSubscriber streams the swap events addressed to a user.
type EventSubscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan models.SwapEvent, func() error, error)
}

// SwapServiceInterface defines the slot and swap operations used by handlers.
type SwapServiceInterface interface {
	CreateSlot(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error)
	ListMySlots(ctx context.Context, userID uuid.UUID) ([]*models.Slot, error)
	DeleteSlot(ctx context.Context, userID, slotID uuid.UUID) error
	MakeSwappable(ctx context.Context, userID, slotID uuid.UUID) (*models.Slot, error)
	ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.SwappableSlot, error)
	ProposeSwap(ctx context.Context, requesterID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingSwapRequest, error)
	ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]*models.SwapRequest, error)
	GetSwapRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.SwapRequest, error)
	RespondToSwap(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (*models.SwapResult, error)
}
