// Package transfer implements the funds transfer engine: one money movement
// executed as an all-or-nothing unit of work against the account store and
// the transfer ledger.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
)

// maxAttempts bounds the transparent retry on store conflicts before the
// engine gives up and reports a storage failure.
const maxAttempts = 3

// TxStore is the account store and ledger bound to one atomic scope. Its
// methods are only valid inside the callback passed to Store.WithinTx; the
// runtime guarantees commit-or-rollback atomicity around that callback.
type TxStore interface {
	// AccountsForUpdate loads and row-locks the given accounts in ascending
	// id order. Missing ids are simply absent from the result.
	AccountsForUpdate(ctx context.Context, ids []int64) (map[int64]domain.BankAccount, error)

	// UpdateBalance writes the new balance and returns the updated snapshot.
	UpdateBalance(ctx context.Context, id int64, balance float64) (domain.BankAccount, error)

	// AppendTransfer inserts one immutable ledger row.
	AppendTransfer(ctx context.Context, amount float64, sourceID, destinationID int64) (domain.Transfer, error)
}

// Store opens atomic units of work. If fn returns an error nothing is
// committed; otherwise all writes become durable together.
type Store interface {
	WithinTx(ctx context.Context, fn func(TxStore) error) error
}

// Result is the committed outcome of a transfer: the ledger row plus both
// post-mutation account snapshots.
type Result struct {
	Transfer           domain.Transfer    `json:"transfer"`
	SourceAccount      domain.BankAccount `json:"sourceAccount"`
	DestinationAccount domain.BankAccount `json:"destinationAccount"`
}

// Engine executes transfers. Safe for concurrent use; all shared state lives
// in the store, which serializes overlapping transfers via row locks.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Execute moves amount from the source account to the destination account.
//
// Validation order, first failure wins:
//  1. amount must be positive
//  2. source account must exist
//  3. source balance must cover the amount
//  4. destination account must exist
//
// Both balance updates and the ledger append happen inside a single
// transaction; no intermediate state is observable and every failure leaves
// both balances untouched. Store conflicts are retried up to maxAttempts.
func (e *Engine) Execute(ctx context.Context, sourceID, destinationID int64, amount float64) (*Result, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := e.attempt(ctx, sourceID, destinationID, amount)
		if !errors.Is(err, domain.ErrConflict) {
			return res, err
		}
		lastErr = err
		slog.Warn("transfer conflicted, retrying",
			"source_id", sourceID, "destination_id", destinationID, "attempt", attempt)
	}

	return nil, fmt.Errorf("%w: gave up after %d conflicts: %v", domain.ErrStorage, maxAttempts, lastErr)
}

func (e *Engine) attempt(ctx context.Context, sourceID, destinationID int64, amount float64) (*Result, error) {
	var out Result

	err := e.store.WithinTx(ctx, func(s TxStore) error {
		ids := []int64{sourceID}
		if destinationID != sourceID {
			ids = append(ids, destinationID)
		}

		// Both rows are locked up front, in id order, so two opposing
		// transfers can never deadlock. Errors are still reported in the
		// documented order below.
		accounts, err := s.AccountsForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		source, ok := accounts[sourceID]
		if !ok {
			return domain.ErrSourceNotFound
		}
		if source.Balance < amount {
			return domain.ErrInsufficientFunds
		}
		destination, ok := accounts[destinationID]
		if !ok {
			return domain.ErrDestinationNotFound
		}

		if sourceID == destinationID {
			// Self transfer: debit and credit cancel out. The balance is
			// untouched but the movement is still recorded in the ledger.
			out.SourceAccount = source
			out.DestinationAccount = source
		} else {
			out.SourceAccount, err = s.UpdateBalance(ctx, sourceID, source.Balance-amount)
			if err != nil {
				return err
			}
			out.DestinationAccount, err = s.UpdateBalance(ctx, destinationID, destination.Balance+amount)
			if err != nil {
				return err
			}
		}

		out.Transfer, err = s.AppendTransfer(ctx, amount, sourceID, destinationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
