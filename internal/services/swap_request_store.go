package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

var ErrSwapRequestNotFound = errors.New("swap request not found")

const swapRequestColumns = `id, requester_id, receiver_id, my_slot_id, their_slot_id, status, created_at, responded_at`

// PGSwapRequestStore persists swap requests in postgres. Rows are never
// deleted; resolved requests stay as history.
type PGSwapRequestStore struct {
	db   DBConn
	lock bool
}

func NewSwapRequestStore(db DBConn) *PGSwapRequestStore {
	return &PGSwapRequestStore{db: db}
}

func newLockingSwapRequestStore(tx DBConn) *PGSwapRequestStore {
	return &PGSwapRequestStore{db: tx, lock: true}
}

func (s *PGSwapRequestStore) Create(ctx context.Context, requesterID, receiverID, mySlotID, theirSlotID uuid.UUID) (*models.SwapRequest, error) {
	req, err := scanSwapRequest(s.db.QueryRow(ctx,
		`INSERT INTO swap_requests (requester_id, receiver_id, my_slot_id, their_slot_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+swapRequestColumns,
		requesterID, receiverID, mySlotID, theirSlotID, models.SwapRequestStatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("creating swap request: %w", err)
	}
	return req, nil
}

func (s *PGSwapRequestStore) Get(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	query := "SELECT " + swapRequestColumns + " FROM swap_requests WHERE id = $1"
	if s.lock {
		query += " FOR UPDATE"
	}

	req, err := scanSwapRequest(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSwapRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap request: %w", err)
	}
	return req, nil
}

func (s *PGSwapRequestStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SwapRequestStatus) error {
	result, err := s.db.Exec(ctx,
		`UPDATE swap_requests SET status = $3, responded_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("updating swap request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (s *PGSwapRequestStore) ListPendingForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.IncomingSwapRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.requester_id, r.receiver_id, r.my_slot_id, r.their_slot_id, r.status, r.created_at, r.responded_at,
		        u.display_name
		 FROM swap_requests r
		 JOIN users u ON u.id = r.requester_id
		 WHERE r.receiver_id = $1 AND r.status = $2
		 ORDER BY r.created_at DESC`,
		receiverID, models.SwapRequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing incoming swap requests: %w", err)
	}
	defer rows.Close()

	requests := []models.IncomingSwapRequest{}
	for rows.Next() {
		var r models.IncomingSwapRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.ReceiverID, &r.MySlotID, &r.TheirSlotID, &r.Status, &r.CreatedAt, &r.RespondedAt, &r.RequesterName); err != nil {
			return nil, fmt.Errorf("scanning swap request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating swap requests: %w", err)
	}

	return requests, nil
}

func (s *PGSwapRequestStore) ListPendingForRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.SwapRequest, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+swapRequestColumns+` FROM swap_requests
		 WHERE requester_id = $1 AND status = $2
		 ORDER BY created_at DESC`,
		requesterID, models.SwapRequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing swap requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.SwapRequest{}
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning swap request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating swap requests: %w", err)
	}

	return requests, nil
}

func scanSwapRequest(row Row) (*models.SwapRequest, error) {
	req := &models.SwapRequest{}
	err := row.Scan(&req.ID, &req.RequesterID, &req.ReceiverID, &req.MySlotID, &req.TheirSlotID, &req.Status, &req.CreatedAt, &req.RespondedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}
