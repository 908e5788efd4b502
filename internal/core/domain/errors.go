package domain

import "errors"

// Business errors carry the exact messages the old API exposed, so clients
// matching on the message keep working.
var (
	// ErrInvalidAmount rejects transfers of zero or negative amounts.
	ErrInvalidAmount = errors.New("jumlah transfer tidak valid")

	// ErrSourceNotFound means the debited account does not exist.
	ErrSourceNotFound = errors.New("akun tidak ditemukan")

	// ErrInsufficientFunds means the source balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("kekurangan saldo")

	// ErrDestinationNotFound means the credited account does not exist.
	ErrDestinationNotFound = errors.New("akun yang dituju tidak ditemukan")

	// ErrAccountNotFound is returned by account lookups outside the transfer
	// path. Same message as ErrSourceNotFound, distinct identity.
	ErrAccountNotFound = errors.New("akun tidak ditemukan")

	// ErrTransferNotFound is returned by transaction detail lookups.
	ErrTransferNotFound = errors.New("transaksi tidak ditemukan")

	// ErrUserNotFound is returned by user lookups; handlers format the
	// user-facing message themselves.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken maps the unique-email violation on user creation.
	ErrEmailTaken = errors.New("Email sudah terdaftar")
)

// Infrastructure errors. Never shown verbatim to callers.
var (
	// ErrConflict means the store detected a concurrent update (serialization
	// failure or deadlock). The transfer engine retries these transparently.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStorage is a transaction or commit level fault. Fatal to the single
	// request only; nothing was committed.
	ErrStorage = errors.New("storage failure")
)
