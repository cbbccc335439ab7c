package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	// ErrStaleWrite is returned by conditional updates whose expected prior
	// state no longer matches the stored row.
	ErrStaleWrite = errors.New("record changed concurrently")
)

const slotColumns = `id, user_id, slot_date, slot_time, status, created_at, updated_at`

// PGSlotStore persists slots in postgres. A locking store (see
// newLockingSlotStore) reads rows FOR UPDATE and must only be used inside a
// transaction.
type PGSlotStore struct {
	db   DBConn
	lock bool
}

func NewSlotStore(db DBConn) *PGSlotStore {
	return &PGSlotStore{db: db}
}

func newLockingSlotStore(tx DBConn) *PGSlotStore {
	return &PGSlotStore{db: tx, lock: true}
}

func (s *PGSlotStore) Get(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	query := "SELECT " + slotColumns + " FROM slots WHERE id = $1"
	if s.lock {
		query += " FOR UPDATE"
	}

	slot, err := scanSlot(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting slot: %w", err)
	}
	return slot, nil
}

func (s *PGSlotStore) Create(ctx context.Context, owner uuid.UUID, date, slotTime string) (*models.Slot, error) {
	slot, err := scanSlot(s.db.QueryRow(ctx,
		`INSERT INTO slots (user_id, slot_date, slot_time, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+slotColumns,
		owner, date, slotTime, models.SlotStatusBusy,
	))
	if err != nil {
		return nil, fmt.Errorf("creating slot: %w", err)
	}
	return slot, nil
}

func (s *PGSlotStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SlotStatus) error {
	result, err := s.db.Exec(ctx,
		`UPDATE slots SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("updating slot status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (s *PGSlotStore) SetOwnerAndStatus(ctx context.Context, id uuid.UUID, fromOwner uuid.UUID, fromStatus models.SlotStatus, owner uuid.UUID, status models.SlotStatus) error {
	result, err := s.db.Exec(ctx,
		`UPDATE slots SET user_id = $4, status = $5, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND status = $3`,
		id, fromOwner, fromStatus, owner, status,
	)
	if err != nil {
		return fmt.Errorf("reassigning slot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

// Delete removes the slot if it still belongs to owner and is not part of a
// pending swap.
func (s *PGSlotStore) Delete(ctx context.Context, id, owner uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM slots WHERE id = $1 AND user_id = $2 AND status <> $3`,
		id, owner, models.SlotStatusSwapPending,
	)
	if err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (s *PGSlotStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Slot, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+slotColumns+` FROM slots
		 WHERE user_id = $1
		 ORDER BY slot_date, slot_time, created_at`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	slots := []*models.Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}

	return slots, nil
}

func (s *PGSlotStore) ListSwappableExcluding(ctx context.Context, owner uuid.UUID) ([]models.SwappableSlot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT s.id, s.user_id, s.slot_date, s.slot_time, s.status, s.created_at, s.updated_at, u.display_name
		 FROM slots s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.status = $1 AND s.user_id <> $2
		 ORDER BY s.slot_date, s.slot_time, s.created_at`,
		models.SlotStatusSwappable, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing swappable slots: %w", err)
	}
	defer rows.Close()

	slots := []models.SwappableSlot{}
	for rows.Next() {
		var slot models.SwappableSlot
		if err := rows.Scan(&slot.ID, &slot.UserID, &slot.Date, &slot.Time, &slot.Status, &slot.CreatedAt, &slot.UpdatedAt, &slot.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning swappable slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating swappable slots: %w", err)
	}

	return slots, nil
}

func scanSlot(row Row) (*models.Slot, error) {
	slot := &models.Slot{}
	err := row.Scan(&slot.ID, &slot.UserID, &slot.Date, &slot.Time, &slot.Status, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return slot, nil
}
