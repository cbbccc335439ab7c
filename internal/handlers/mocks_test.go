package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

type mockUserService struct {
	CreateFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

type mockAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	VerifyPasswordFunc  func(hash, password string) bool
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed_"+password
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "test_session_token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

type mockSwapService struct {
	CreateSlotFunc           func(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error)
	ListMySlotsFunc          func(ctx context.Context, userID uuid.UUID) ([]*models.Slot, error)
	DeleteSlotFunc           func(ctx context.Context, userID, slotID uuid.UUID) error
	MakeSwappableFunc        func(ctx context.Context, userID, slotID uuid.UUID) (*models.Slot, error)
	ListSwappableSlotsFunc   func(ctx context.Context, userID uuid.UUID) ([]models.SwappableSlot, error)
	ProposeSwapFunc          func(ctx context.Context, requesterID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error)
	ListIncomingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.IncomingSwapRequest, error)
	ListOutgoingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]*models.SwapRequest, error)
	GetSwapRequestFunc       func(ctx context.Context, userID, requestID uuid.UUID) (*models.SwapRequest, error)
	RespondToSwapFunc        func(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (*models.SwapResult, error)
}

func (m *mockSwapService) CreateSlot(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
	if m.CreateSlotFunc != nil {
		return m.CreateSlotFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockSwapService) ListMySlots(ctx context.Context, userID uuid.UUID) ([]*models.Slot, error) {
	if m.ListMySlotsFunc != nil {
		return m.ListMySlotsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSwapService) DeleteSlot(ctx context.Context, userID, slotID uuid.UUID) error {
	if m.DeleteSlotFunc != nil {
		return m.DeleteSlotFunc(ctx, userID, slotID)
	}
	return nil
}

func (m *mockSwapService) MakeSwappable(ctx context.Context, userID, slotID uuid.UUID) (*models.Slot, error) {
	if m.MakeSwappableFunc != nil {
		return m.MakeSwappableFunc(ctx, userID, slotID)
	}
	return nil, nil
}

func (m *mockSwapService) ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.SwappableSlot, error) {
	if m.ListSwappableSlotsFunc != nil {
		return m.ListSwappableSlotsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSwapService) ProposeSwap(ctx context.Context, requesterID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error) {
	if m.ProposeSwapFunc != nil {
		return m.ProposeSwapFunc(ctx, requesterID, mySlotID, theirSlotID)
	}
	return nil, nil
}

func (m *mockSwapService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingSwapRequest, error) {
	if m.ListIncomingRequestsFunc != nil {
		return m.ListIncomingRequestsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSwapService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]*models.SwapRequest, error) {
	if m.ListOutgoingRequestsFunc != nil {
		return m.ListOutgoingRequestsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSwapService) GetSwapRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.SwapRequest, error) {
	if m.GetSwapRequestFunc != nil {
		return m.GetSwapRequestFunc(ctx, userID, requestID)
	}
	return nil, nil
}

func (m *mockSwapService) RespondToSwap(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (*models.SwapResult, error) {
	if m.RespondToSwapFunc != nil {
		return m.RespondToSwapFunc(ctx, responderID, requestID, accept)
	}
	return nil, nil
}

type mockSubscriber struct {
	SubscribeFunc func(ctx context.Context, userID uuid.UUID) (<-chan models.SwapEvent, func() error, error)
}

func (m *mockSubscriber) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan models.SwapEvent, func() error, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, userID)
	}
	ch := make(chan models.SwapEvent)
	close(ch)
	return ch, func() error { return nil }, nil
}
