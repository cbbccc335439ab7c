package services

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/models"
	"github.com/HammerMeetNail/slotswap/internal/validation"
)

var (
	ErrNotSlotOwner      = errors.New("slot belongs to another user")
	ErrNotSwapReceiver   = errors.New("only the receiver can respond to this swap request")
	ErrSlotNotSwappable  = errors.New("slot is not available for swapping")
	ErrSlotPendingSwap   = errors.New("slot is part of a pending swap")
	ErrSwapNotPending    = errors.New("swap request is not pending")
	ErrCannotSwapOwnSlot = errors.New("cannot swap with your own slot")
	ErrSwapConflict      = errors.New("slot changed during the operation")
)

// SwapService owns the slot and swap request state machine. It never caches
// records: every operation re-reads what it needs inside its transaction.
type SwapService struct {
	tx        Transactor
	slots     SlotStore
	requests  SwapRequestStore
	events    EventPublisher
	validator *validation.Validator
	logger    *logging.Logger
	now       func() time.Time
}

func NewSwapService(tx Transactor, slots SlotStore, requests SwapRequestStore) *SwapService {
	return &SwapService{
		tx:        tx,
		slots:     slots,
		requests:  requests,
		validator: validation.New(),
		logger:    logging.Default,
		now:       time.Now,
	}
}

func (s *SwapService) SetEventPublisher(events EventPublisher) {
	s.events = events
}

func (s *SwapService) SetLogger(logger *logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

func (s *SwapService) CreateSlot(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}
	return s.slots.Create(ctx, params.UserID, params.Date, params.Time)
}

func (s *SwapService) ListMySlots(ctx context.Context, userID uuid.UUID) ([]*models.Slot, error) {
	return s.slots.ListByOwner(ctx, userID)
}

func (s *SwapService) ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.SwappableSlot, error) {
	return s.slots.ListSwappableExcluding(ctx, userID)
}

func (s *SwapService) DeleteSlot(ctx context.Context, userID, slotID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(st SwapStores) error {
		slot, err := st.Slots.Get(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.UserID != userID {
			return ErrNotSlotOwner
		}
		if slot.Status == models.SlotStatusSwapPending {
			return ErrSlotPendingSwap
		}
		return conflictOnStale(st.Slots.Delete(ctx, slotID, userID))
	})
}

// MakeSwappable offers a BUSY slot for exchange. Repeating it on a slot that
// is already SWAPPABLE is a no-op.
func (s *SwapService) MakeSwappable(ctx context.Context, userID, slotID uuid.UUID) (*models.Slot, error) {
	var result *models.Slot
	err := s.tx.WithinTx(ctx, func(st SwapStores) error {
		slot, err := st.Slots.Get(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.UserID != userID {
			return ErrNotSlotOwner
		}

		switch slot.Status {
		case models.SlotStatusSwappable:
			result = slot
			return nil
		case models.SlotStatusSwapPending:
			return ErrSlotPendingSwap
		}

		if err := st.Slots.SetStatus(ctx, slotID, slot.Status, models.SlotStatusSwappable); err != nil {
			return conflictOnStale(err)
		}
		result, err = st.Slots.Get(ctx, slotID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProposeSwap offers the requester's slot in exchange for theirSlotID. Both
// slots must be SWAPPABLE; on success they are SWAP_PENDING and the request
// is addressed to whoever owned theirSlotID at that moment.
func (s *SwapService) ProposeSwap(ctx context.Context, requesterID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error) {
	if mySlotID == theirSlotID {
		return nil, ErrCannotSwapOwnSlot
	}

	var request *models.SwapRequest
	err := s.tx.WithinTx(ctx, func(st SwapStores) error {
		locked, err := lockSlots(ctx, st.Slots, mySlotID, theirSlotID)
		if err != nil {
			return err
		}

		mySlot := locked[mySlotID]
		if mySlot == nil || mySlot.UserID != requesterID {
			return ErrNotSlotOwner
		}
		theirSlot := locked[theirSlotID]
		if theirSlot == nil {
			return ErrSlotNotFound
		}
		if theirSlot.UserID == requesterID {
			return ErrCannotSwapOwnSlot
		}
		if mySlot.Status != models.SlotStatusSwappable || theirSlot.Status != models.SlotStatusSwappable {
			return ErrSlotNotSwappable
		}

		request, err = st.Requests.Create(ctx, requesterID, theirSlot.UserID, mySlotID, theirSlotID)
		if err != nil {
			return err
		}
		for _, id := range []uuid.UUID{mySlotID, theirSlotID} {
			if err := st.Slots.SetStatus(ctx, id, models.SlotStatusSwappable, models.SlotStatusSwapPending); err != nil {
				return conflictOnStale(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Swap proposed", map[string]interface{}{
		"request_id":    request.ID.String(),
		"requester_id":  request.RequesterID.String(),
		"receiver_id":   request.ReceiverID.String(),
		"my_slot_id":    mySlotID.String(),
		"their_slot_id": theirSlotID.String(),
	})
	s.publish(ctx, request.ReceiverID, models.SwapEventProposed, request, requesterID)

	return request, nil
}

// RespondToSwap resolves a pending request. Rejecting returns both slots to
// SWAPPABLE with their owners unchanged; accepting exchanges the owners and
// leaves both slots BUSY. Only the receiver may respond, and only once.
func (s *SwapService) RespondToSwap(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (*models.SwapResult, error) {
	result := &models.SwapResult{}
	err := s.tx.WithinTx(ctx, func(st SwapStores) error {
		req, err := st.Requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if req.ReceiverID != responderID {
			return ErrNotSwapReceiver
		}
		if req.Status != models.SwapRequestStatusPending {
			return ErrSwapNotPending
		}

		target := models.SwapRequestStatusRejected
		if accept {
			target = models.SwapRequestStatusAccepted
		}
		if err := st.Requests.SetStatus(ctx, requestID, models.SwapRequestStatusPending, target); err != nil {
			if errors.Is(err, ErrStaleWrite) {
				return ErrSwapNotPending
			}
			return err
		}

		if _, err := lockSlots(ctx, st.Slots, req.MySlotID, req.TheirSlotID); err != nil {
			return err
		}

		if accept {
			err = st.Slots.SetOwnerAndStatus(ctx, req.MySlotID,
				req.RequesterID, models.SlotStatusSwapPending, req.ReceiverID, models.SlotStatusBusy)
			if err == nil {
				err = st.Slots.SetOwnerAndStatus(ctx, req.TheirSlotID,
					req.ReceiverID, models.SlotStatusSwapPending, req.RequesterID, models.SlotStatusBusy)
			}
		} else {
			err = st.Slots.SetStatus(ctx, req.MySlotID, models.SlotStatusSwapPending, models.SlotStatusSwappable)
			if err == nil {
				err = st.Slots.SetStatus(ctx, req.TheirSlotID, models.SlotStatusSwapPending, models.SlotStatusSwappable)
			}
		}
		if err != nil {
			return conflictOnStale(err)
		}

		if result.Request, err = st.Requests.Get(ctx, requestID); err != nil {
			return err
		}
		if result.MySlot, err = st.Slots.Get(ctx, req.MySlotID); err != nil {
			return err
		}
		result.TheirSlot, err = st.Slots.Get(ctx, req.TheirSlotID)
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := models.SwapEventRejected
	message := "Swap rejected"
	if accept {
		eventType = models.SwapEventAccepted
		message = "Swap accepted"
	}
	s.logger.Info(message, map[string]interface{}{
		"request_id":    requestID.String(),
		"requester_id":  result.Request.RequesterID.String(),
		"receiver_id":   result.Request.ReceiverID.String(),
		"my_slot_id":    result.Request.MySlotID.String(),
		"their_slot_id": result.Request.TheirSlotID.String(),
	})
	s.publish(ctx, result.Request.RequesterID, eventType, result.Request, responderID)

	return result, nil
}

func (s *SwapService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingSwapRequest, error) {
	return s.requests.ListPendingForReceiver(ctx, userID)
}

func (s *SwapService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]*models.SwapRequest, error) {
	return s.requests.ListPendingForRequester(ctx, userID)
}

// GetSwapRequest returns a request to either of its parties. Anyone else gets
// ErrSwapRequestNotFound.
func (s *SwapService) GetSwapRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.SwapRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != userID && req.ReceiverID != userID {
		return nil, ErrSwapRequestNotFound
	}
	return req, nil
}

func (s *SwapService) publish(ctx context.Context, recipient uuid.UUID, eventType models.SwapEventType, req *models.SwapRequest, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	event := models.SwapEvent{
		Type:        eventType,
		RequestID:   req.ID,
		MySlotID:    req.MySlotID,
		TheirSlotID: req.TheirSlotID,
		ActorID:     actorID,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.events.Publish(ctx, recipient, event); err != nil {
		s.logger.Warn("Failed to publish swap event", map[string]interface{}{
			"type":       string(eventType),
			"request_id": req.ID.String(),
			"error":      err.Error(),
		})
	}
}

// lockSlots reads the given slots in ascending id order so that concurrent
// transactions touching the same pair always lock them in the same order.
// Missing slots are absent from the returned map.
func lockSlots(ctx context.Context, store SlotStore, ids ...uuid.UUID) (map[uuid.UUID]*models.Slot, error) {
	ordered := append([]uuid.UUID(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	locked := make(map[uuid.UUID]*models.Slot, len(ordered))
	for i, id := range ordered {
		if i > 0 && ordered[i-1] == id {
			continue
		}
		slot, err := store.Get(ctx, id)
		if errors.Is(err, ErrSlotNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked[id] = slot
	}
	return locked, nil
}

func conflictOnStale(err error) error {
	if errors.Is(err, ErrStaleWrite) {
		return ErrSwapConflict
	}
	return err
}
