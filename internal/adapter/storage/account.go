package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// AccountOwner is the owner projection embedded in account responses.
type AccountOwner struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AccountSummary is the list projection: id, bank name and owner name only.
type AccountSummary struct {
	ID       int64        `json:"id"`
	BankName string       `json:"bankName"`
	User     AccountOwner `json:"user"`
}

// AccountDetail is the single-account projection including the owner.
type AccountDetail struct {
	domain.BankAccount
	User AccountOwner `json:"user"`
}

// Create opens a bank account with its initial funding balance. This is the
// only balance write outside the transfer engine's transaction.
func (r *AccountRepository) Create(ctx context.Context, bankName, bankAccountNumber string, balance float64, userID int64) (*domain.BankAccount, error) {
	var acc domain.BankAccount
	err := r.db.QueryRow(ctx, `
		INSERT INTO bank_accounts (bank_name, bank_account_number, balance, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, bank_name, bank_account_number, balance, user_id`,
		bankName, bankAccountNumber, balance, userID).Scan(
		&acc.ID, &acc.BankName, &acc.BankAccountNumber, &acc.Balance, &acc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]AccountSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.bank_name, u.name
		FROM bank_accounts a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []AccountSummary{}
	for rows.Next() {
		var s AccountSummary
		if err := rows.Scan(&s.ID, &s.BankName, &s.User.Name); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, s)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*AccountDetail, error) {
	var d AccountDetail
	err := r.db.QueryRow(ctx, `
		SELECT a.id, a.bank_name, a.bank_account_number, a.balance, a.user_id,
		       u.id, u.name, u.email
		FROM bank_accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`, id).Scan(
		&d.ID, &d.BankName, &d.BankAccountNumber, &d.Balance, &d.UserID,
		&d.User.ID, &d.User.Name, &d.User.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &d, nil
}
