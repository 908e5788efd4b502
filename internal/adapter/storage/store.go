package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/transfer"
)

// Store opens atomic units of work on Postgres for the transfer engine.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithinTx runs fn inside one transaction. A business error from fn rolls
// everything back and is returned as-is; commit and connection level faults
// are classified into domain.ErrConflict (retryable) or domain.ErrStorage.
func (s *Store) WithinTx(ctx context.Context, fn func(transfer.TxStore) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// txStore implements transfer.TxStore over one open pgx transaction.
type txStore struct {
	tx pgx.Tx
}

func (s *txStore) AccountsForUpdate(ctx context.Context, ids []int64) (map[int64]domain.BankAccount, error) {
	// Locking in ascending id order keeps concurrent transfers over the same
	// pair of accounts deadlock free.
	rows, err := s.tx.Query(ctx, `
		SELECT id, bank_name, bank_account_number, balance, user_id
		FROM bank_accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	accounts := make(map[int64]domain.BankAccount, len(ids))
	for rows.Next() {
		var acc domain.BankAccount
		if err := rows.Scan(&acc.ID, &acc.BankName, &acc.BankAccountNumber, &acc.Balance, &acc.UserID); err != nil {
			return nil, classify(err)
		}
		accounts[acc.ID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (s *txStore) UpdateBalance(ctx context.Context, id int64, balance float64) (domain.BankAccount, error) {
	var acc domain.BankAccount
	err := s.tx.QueryRow(ctx, `
		UPDATE bank_accounts SET balance = $1 WHERE id = $2
		RETURNING id, bank_name, bank_account_number, balance, user_id`,
		balance, id).Scan(&acc.ID, &acc.BankName, &acc.BankAccountNumber, &acc.Balance, &acc.UserID)
	if err != nil {
		return domain.BankAccount{}, classify(err)
	}
	return acc, nil
}

func (s *txStore) AppendTransfer(ctx context.Context, amount float64, sourceID, destinationID int64) (domain.Transfer, error) {
	var t domain.Transfer
	err := s.tx.QueryRow(ctx, `
		INSERT INTO transfers (amount, source_account_id, destination_account_id)
		VALUES ($1, $2, $3)
		RETURNING id, amount, source_account_id, destination_account_id, created_at`,
		amount, sourceID, destinationID).Scan(
		&t.ID, &t.Amount, &t.SourceAccountID, &t.DestinationAccountID, &t.CreatedAt)
	if err != nil {
		return domain.Transfer{}, classify(err)
	}
	return t, nil
}

// classify maps Postgres faults onto the domain taxonomy. Serialization
// failures and deadlocks are retryable conflicts; everything else is a
// storage fault.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}
