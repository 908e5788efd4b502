package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithProfile inserts the user and its profile in one transaction so a
// user row never exists without its identity data.
func (r *UserRepository) CreateWithProfile(ctx context.Context, name, email, password, identityType, identityNumber, address string) (*domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	defer tx.Rollback(ctx)

	var user domain.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, name, email`, name, email, password).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var profile domain.Profile
	err = tx.QueryRow(ctx, `
		INSERT INTO profiles (user_id, identity_type, identity_number, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, identity_type, identity_number, address`,
		user.ID, identityType, identityNumber, address).Scan(
		&profile.ID, &profile.UserID, &profile.IdentityType, &profile.IdentityNumber, &profile.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	user.Profile = &profile

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Create inserts a bare user, as the register flow does.
func (r *UserRepository) Create(ctx context.Context, name, email, password string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, name, email`, name, email, password).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID returns the user with its profile and bank accounts.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Name, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var profile domain.Profile
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, identity_type, identity_number, address
		FROM profiles WHERE user_id = $1`, id).Scan(
		&profile.ID, &profile.UserID, &profile.IdentityType, &profile.IdentityNumber, &profile.Address)
	if err == nil {
		user.Profile = &profile
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, bank_name, bank_account_number, balance, user_id
		FROM bank_accounts WHERE user_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list user accounts: %w", err)
	}
	defer rows.Close()

	user.BankAccounts = []domain.BankAccount{}
	for rows.Next() {
		var acc domain.BankAccount
		if err := rows.Scan(&acc.ID, &acc.BankName, &acc.BankAccountNumber, &acc.Balance, &acc.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		user.BankAccounts = append(user.BankAccounts, acc)
	}
	return &user, rows.Err()
}

// GetByEmail returns the user including the password hash, for login.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, `SELECT id, name, email, password FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
