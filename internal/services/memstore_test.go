package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

// memState is a single consistent store for engine tests. Transactions hold
// the mutex for their whole duration and restore a snapshot on error.
type memState struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]models.Slot
	requests map[uuid.UUID]models.SwapRequest
	names    map[uuid.UUID]string
	seq      int
}

func newMemState() *memState {
	return &memState{
		slots:    make(map[uuid.UUID]models.Slot),
		requests: make(map[uuid.UUID]models.SwapRequest),
		names:    make(map[uuid.UUID]string),
	}
}

func (m *memState) addUser(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.names[id] = name
	return id
}

// tick hands out strictly increasing timestamps so ordering is deterministic.
func (m *memState) tick() time.Time {
	m.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
}

func (m *memState) slot(id uuid.UUID) (models.Slot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	return s, ok
}

func (m *memState) request(id uuid.UUID) (models.SwapRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	return r, ok
}

// checkPendingInvariant reports slots whose SWAP_PENDING status disagrees with
// the set of slots referenced by PENDING requests.
func (m *memState) checkPendingInvariant() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	referenced := make(map[uuid.UUID]bool)
	for _, r := range m.requests {
		if r.Status == models.SwapRequestStatusPending {
			referenced[r.MySlotID] = true
			referenced[r.TheirSlotID] = true
		}
	}

	var bad []uuid.UUID
	for id, s := range m.slots {
		if (s.Status == models.SlotStatusSwapPending) != referenced[id] {
			bad = append(bad, id)
		}
	}
	return bad
}

type memTransactor struct {
	state *memState
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(stores SwapStores) error) error {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	slots := make(map[uuid.UUID]models.Slot, len(t.state.slots))
	for k, v := range t.state.slots {
		slots[k] = v
	}
	requests := make(map[uuid.UUID]models.SwapRequest, len(t.state.requests))
	for k, v := range t.state.requests {
		requests[k] = v
	}

	err := fn(SwapStores{
		Slots:    &memSlotStore{state: t.state, inTx: true},
		Requests: &memSwapRequestStore{state: t.state, inTx: true},
	})
	if err != nil {
		t.state.slots = slots
		t.state.requests = requests
	}
	return err
}

type memSlotStore struct {
	state *memState
	inTx  bool
}

func (s *memSlotStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.state.mu.Lock()
	return s.state.mu.Unlock
}

func (s *memSlotStore) Get(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	defer s.lock()()
	slot, ok := s.state.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &slot, nil
}

func (s *memSlotStore) Create(ctx context.Context, owner uuid.UUID, date, slotTime string) (*models.Slot, error) {
	defer s.lock()()
	now := s.state.tick()
	slot := models.Slot{
		ID:        uuid.New(),
		UserID:    owner,
		Date:      date,
		Time:      slotTime,
		Status:    models.SlotStatusBusy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.slots[slot.ID] = slot
	return &slot, nil
}

func (s *memSlotStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SlotStatus) error {
	defer s.lock()()
	slot, ok := s.state.slots[id]
	if !ok || slot.Status != from {
		return ErrStaleWrite
	}
	slot.Status = to
	slot.UpdatedAt = s.state.tick()
	s.state.slots[id] = slot
	return nil
}

func (s *memSlotStore) SetOwnerAndStatus(ctx context.Context, id uuid.UUID, fromOwner uuid.UUID, fromStatus models.SlotStatus, owner uuid.UUID, status models.SlotStatus) error {
	defer s.lock()()
	slot, ok := s.state.slots[id]
	if !ok || slot.UserID != fromOwner || slot.Status != fromStatus {
		return ErrStaleWrite
	}
	slot.UserID = owner
	slot.Status = status
	slot.UpdatedAt = s.state.tick()
	s.state.slots[id] = slot
	return nil
}

func (s *memSlotStore) Delete(ctx context.Context, id, owner uuid.UUID) error {
	defer s.lock()()
	slot, ok := s.state.slots[id]
	if !ok || slot.UserID != owner || slot.Status == models.SlotStatusSwapPending {
		return ErrStaleWrite
	}
	delete(s.state.slots, id)
	return nil
}

func (s *memSlotStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Slot, error) {
	defer s.lock()()
	out := []*models.Slot{}
	for _, slot := range s.state.slots {
		if slot.UserID == owner {
			slot := slot
			out = append(out, &slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memSlotStore) ListSwappableExcluding(ctx context.Context, owner uuid.UUID) ([]models.SwappableSlot, error) {
	defer s.lock()()
	out := []models.SwappableSlot{}
	for _, slot := range s.state.slots {
		if slot.UserID != owner && slot.Status == models.SlotStatusSwappable {
			out = append(out, models.SwappableSlot{Slot: slot, OwnerName: s.state.names[slot.UserID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memSwapRequestStore struct {
	state *memState
	inTx  bool
}

func (s *memSwapRequestStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.state.mu.Lock()
	return s.state.mu.Unlock
}

func (s *memSwapRequestStore) Create(ctx context.Context, requesterID, receiverID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error) {
	defer s.lock()()
	req := models.SwapRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		MySlotID:    mySlotID,
		TheirSlotID: theirSlotID,
		Status:      models.SwapRequestStatusPending,
		CreatedAt:   s.state.tick(),
	}
	s.state.requests[req.ID] = req
	return &req, nil
}

func (s *memSwapRequestStore) Get(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	defer s.lock()()
	req, ok := s.state.requests[id]
	if !ok {
		return nil, ErrSwapRequestNotFound
	}
	return &req, nil
}

func (s *memSwapRequestStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SwapRequestStatus) error {
	defer s.lock()()
	req, ok := s.state.requests[id]
	if !ok || req.Status != from {
		return ErrStaleWrite
	}
	now := s.state.tick()
	req.Status = to
	req.RespondedAt = &now
	s.state.requests[id] = req
	return nil
}

func (s *memSwapRequestStore) ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.IncomingSwapRequest, error) {
	defer s.lock()()
	out := []models.IncomingSwapRequest{}
	for _, req := range s.state.requests {
		if req.ReceiverID == receiverID && req.Status == models.SwapRequestStatusPending {
			out = append(out, models.IncomingSwapRequest{SwapRequest: req, RequesterName: s.state.names[req.RequesterID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memSwapRequestStore) ListPendingForRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.SwapRequest, error) {
	defer s.lock()()
	out := []*models.SwapRequest{}
	for _, req := range s.state.requests {
		if req.RequesterID == requesterID && req.Status == models.SwapRequestStatusPending {
			req := req
			out = append(out, &req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type recordedEvent struct {
	recipient uuid.UUID
	event     models.SwapEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, userID uuid.UUID, event models.SwapEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{recipient: userID, event: event})
	return p.err
}

func (p *fakePublisher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

func newMemSwapService() (*SwapService, *memState, *fakePublisher) {
	state := newMemState()
	svc := NewSwapService(
		&memTransactor{state: state},
		&memSlotStore{state: state},
		&memSwapRequestStore{state: state},
	)
	events := &fakePublisher{}
	svc.SetEventPublisher(events)
	return svc, state, events
}
