package domain

import "time"

// User owns zero or more bank accounts. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Password     string        `json:"-"`
	Profile      *Profile      `json:"profile,omitempty"`
	BankAccounts []BankAccount `json:"bankAccounts,omitempty"`
}

// Profile is the identity data attached to a user when the account is opened.
type Profile struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"userId"`
	IdentityType   string `json:"identityType"`
	IdentityNumber string `json:"identityNumber"`
	Address        string `json:"address"`
}

// BankAccount holds a balance in the name of one user.
// The balance is only ever written inside a transfer transaction (or the
// initial funding at creation); handlers never touch it directly.
type BankAccount struct {
	ID                int64   `json:"id"`
	BankName          string  `json:"bankName"`
	BankAccountNumber string  `json:"bankAccountNumber"`
	Balance           float64 `json:"balance"`
	UserID            int64   `json:"userId"`
}

// Transfer is the immutable record of one completed balance movement.
// Rows are inserted exactly once, at the successful end of a transfer
// transaction, and never updated or deleted afterwards.
type Transfer struct {
	ID                   int64     `json:"id"`
	Amount               float64   `json:"amount"`
	SourceAccountID      int64     `json:"sourceAccountId"`
	DestinationAccountID int64     `json:"destinationAccountId"`
	CreatedAt            time.Time `json:"createdAt"`
}
