package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The CHECK on balance backs the application-level invariant that no account
// is ever observably negative, even if a future code path bypasses the engine.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
	identity_type TEXT NOT NULL,
	identity_number TEXT NOT NULL,
	address TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bank_accounts (
	id BIGSERIAL PRIMARY KEY,
	bank_name TEXT NOT NULL,
	bank_account_number TEXT NOT NULL,
	balance DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (balance >= 0),
	user_id BIGINT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transfers (
	id BIGSERIAL PRIMARY KEY,
	amount DOUBLE PRECISION NOT NULL CHECK (amount > 0),
	source_account_id BIGINT NOT NULL REFERENCES bank_accounts(id),
	destination_account_id BIGINT NOT NULL REFERENCES bank_accounts(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
	key_id TEXT PRIMARY KEY,
	response_status INT NOT NULL,
	response_body BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate bootstraps the schema at process start. Statements are idempotent
// so restarting against an existing database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
