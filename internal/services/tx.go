package services

import (
	"context"
	"fmt"
)

// SwapStores is the pair of stores an engine operation works against. Inside
// a transaction both share the same connection and lock the rows they read.
type SwapStores struct {
	Slots    SlotStore
	Requests SwapRequestStore
}

// PGTransactor runs a function against transaction-bound stores and commits
// only if it returns nil.
type PGTransactor struct {
	db DB
}

func NewPGTransactor(db DB) *PGTransactor {
	return &PGTransactor{db: db}
}

func (t *PGTransactor) WithinTx(ctx context.Context, fn func(stores SwapStores) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	stores := SwapStores{
		Slots:    newLockingSlotStore(tx),
		Requests: newLockingSwapRequestStore(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
