package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
)

// TransferRepository serves the read side of the ledger. Writes go through
// the engine's transaction exclusively; there is deliberately no update or
// delete here.
type TransferRepository struct {
	db *pgxpool.Pool
}

func NewTransferRepository(db *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{db: db}
}

// TransferParty is the account projection embedded in a transfer detail.
type TransferParty struct {
	BankAccountNumber string       `json:"bankAccountNumber"`
	BankName          string       `json:"bankName"`
	User              AccountOwner `json:"user"`
}

// TransferDetail is one ledger row joined with both parties.
type TransferDetail struct {
	domain.Transfer
	SourceAccount      TransferParty `json:"sourceAccount"`
	DestinationAccount TransferParty `json:"destinationAccount"`
}

func (r *TransferRepository) List(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, amount, source_account_id, destination_account_id, created_at
		FROM transfers ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		var t domain.Transfer
		if err := rows.Scan(&t.ID, &t.Amount, &t.SourceAccountID, &t.DestinationAccountID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *TransferRepository) GetByID(ctx context.Context, id int64) (*TransferDetail, error) {
	var d TransferDetail
	err := r.db.QueryRow(ctx, `
		SELECT t.id, t.amount, t.source_account_id, t.destination_account_id, t.created_at,
		       sa.bank_account_number, sa.bank_name, su.name, su.email,
		       da.bank_account_number, da.bank_name, du.name, du.email
		FROM transfers t
		JOIN bank_accounts sa ON sa.id = t.source_account_id
		JOIN users su ON su.id = sa.user_id
		JOIN bank_accounts da ON da.id = t.destination_account_id
		JOIN users du ON du.id = da.user_id
		WHERE t.id = $1`, id).Scan(
		&d.ID, &d.Amount, &d.SourceAccountID, &d.DestinationAccountID, &d.CreatedAt,
		&d.SourceAccount.BankAccountNumber, &d.SourceAccount.BankName,
		&d.SourceAccount.User.Name, &d.SourceAccount.User.Email,
		&d.DestinationAccount.BankAccountNumber, &d.DestinationAccount.BankName,
		&d.DestinationAccount.User.Name, &d.DestinationAccount.User.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &d, nil
}
