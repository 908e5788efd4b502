package transfer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/transfer"
)

// memStore is an in-memory transfer.Store. One mutex serializes units of
// work, mirroring the row-locking discipline of the real store, and every
// failed callback rolls the state back to its snapshot.
type memStore struct {
	mu            sync.Mutex
	accounts      map[int64]domain.BankAccount
	ledger        []domain.Transfer
	nextID        int64
	conflictsLeft int
	sawNegative   bool
}

func newMemStore(accounts ...domain.BankAccount) *memStore {
	s := &memStore{accounts: make(map[int64]domain.BankAccount)}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (m *memStore) WithinTx(ctx context.Context, fn func(transfer.TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return domain.ErrConflict
	}

	snapshot := make(map[int64]domain.BankAccount, len(m.accounts))
	for id, a := range m.accounts {
		snapshot[id] = a
	}
	ledgerLen := len(m.ledger)

	if err := fn(&memTx{store: m}); err != nil {
		m.accounts = snapshot
		m.ledger = m.ledger[:ledgerLen]
		return err
	}
	return nil
}

func (m *memStore) balance(id int64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Balance
}

type memTx struct {
	store *memStore
}

func (t *memTx) AccountsForUpdate(ctx context.Context, ids []int64) (map[int64]domain.BankAccount, error) {
	out := make(map[int64]domain.BankAccount, len(ids))
	for _, id := range ids {
		if a, ok := t.store.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (t *memTx) UpdateBalance(ctx context.Context, id int64, balance float64) (domain.BankAccount, error) {
	if balance < 0 {
		t.store.sawNegative = true
	}
	a := t.store.accounts[id]
	a.Balance = balance
	t.store.accounts[id] = a
	return a, nil
}

func (t *memTx) AppendTransfer(ctx context.Context, amount float64, sourceID, destinationID int64) (domain.Transfer, error) {
	t.store.nextID++
	rec := domain.Transfer{
		ID:                   t.store.nextID,
		Amount:               amount,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
	}
	t.store.ledger = append(t.store.ledger, rec)
	return rec, nil
}

func account(id int64, balance float64) domain.BankAccount {
	return domain.BankAccount{ID: id, BankName: "bank", BankAccountNumber: "001", Balance: balance, UserID: 1}
}

func TestExecuteMovesFunds(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	engine := transfer.NewEngine(store)

	res, err := engine.Execute(context.Background(), 1, 2, 500)
	require.NoError(t, err)

	assert.Equal(t, 500.0, res.SourceAccount.Balance)
	assert.Equal(t, 500.0, res.DestinationAccount.Balance)
	assert.Equal(t, 500.0, res.Transfer.Amount)
	assert.Equal(t, int64(1), res.Transfer.SourceAccountID)
	assert.Equal(t, int64(2), res.Transfer.DestinationAccountID)

	assert.Equal(t, 500.0, store.balance(1))
	assert.Equal(t, 500.0, store.balance(2))
	require.Len(t, store.ledger, 1)
}

func TestExecuteInsufficientFunds(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	engine := transfer.NewEngine(store)

	res, err := engine.Execute(context.Background(), 1, 2, 1500)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Nil(t, res)

	assert.Equal(t, 1000.0, store.balance(1))
	assert.Equal(t, 0.0, store.balance(2))
	assert.Empty(t, store.ledger)
}

func TestExecuteInvalidAmount(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	engine := transfer.NewEngine(store)

	for _, amount := range []float64{0, -5} {
		_, err := engine.Execute(context.Background(), 1, 2, amount)
		require.ErrorIs(t, err, domain.ErrInvalidAmount, "amount=%v", amount)
	}
	assert.Empty(t, store.ledger)
}

func TestExecuteSourceNotFound(t *testing.T) {
	store := newMemStore(account(2, 100))
	engine := transfer.NewEngine(store)

	_, err := engine.Execute(context.Background(), 99, 2, 50)
	require.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Equal(t, 100.0, store.balance(2))
	assert.Empty(t, store.ledger)
}

func TestExecuteDestinationNotFound(t *testing.T) {
	store := newMemStore(account(1, 100))
	engine := transfer.NewEngine(store)

	_, err := engine.Execute(context.Background(), 1, 99, 50)
	require.ErrorIs(t, err, domain.ErrDestinationNotFound)
	assert.Equal(t, 100.0, store.balance(1))
	assert.Empty(t, store.ledger)
}

// Validation order is fixed: the funds check happens before the destination
// lookup, so a broke source and a missing destination report insufficiency.
func TestExecuteValidationOrder(t *testing.T) {
	store := newMemStore(account(1, 10))
	engine := transfer.NewEngine(store)
	_, err := engine.Execute(context.Background(), 1, 99, 50)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestExecuteFailureIsRepeatable(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	engine := transfer.NewEngine(store)

	for i := 0; i < 5; i++ {
		_, err := engine.Execute(context.Background(), 1, 2, 1500)
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	}
	assert.Equal(t, 1000.0, store.balance(1))
	assert.Equal(t, 0.0, store.balance(2))
	assert.Empty(t, store.ledger)
}

func TestExecuteSelfTransfer(t *testing.T) {
	store := newMemStore(account(1, 1000))
	engine := transfer.NewEngine(store)

	res, err := engine.Execute(context.Background(), 1, 1, 300)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.SourceAccount.Balance)
	assert.Equal(t, 1000.0, store.balance(1))
	require.Len(t, store.ledger, 1)

	// Still funds-checked: an over-balance self transfer is rejected.
	_, err = engine.Execute(context.Background(), 1, 1, 5000)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestExecuteRetriesOnConflict(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	store.conflictsLeft = 2
	engine := transfer.NewEngine(store)

	res, err := engine.Execute(context.Background(), 1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 900.0, res.SourceAccount.Balance)
}

func TestExecuteConflictExhaustion(t *testing.T) {
	store := newMemStore(account(1, 1000), account(2, 0))
	store.conflictsLeft = 100
	engine := transfer.NewEngine(store)

	_, err := engine.Execute(context.Background(), 1, 2, 100)
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 1000.0, store.balance(1))
	assert.Empty(t, store.ledger)
}

// N concurrent transfers of v from one account holding exactly N*v must all
// succeed, drain the account to zero, and never expose a negative balance.
func TestConcurrentDrain(t *testing.T) {
	const n = 40
	const v = 25.0

	accounts := []domain.BankAccount{account(1, n*v)}
	for i := int64(2); i < n+2; i++ {
		accounts = append(accounts, account(i, 0))
	}
	store := newMemStore(accounts...)
	engine := transfer.NewEngine(store)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := int64(2); i < n+2; i++ {
		go func(dest int64) {
			defer wg.Done()
			if _, err := engine.Execute(context.Background(), 1, dest, v); err != nil {
				t.Errorf("transfer to %d: %v", dest, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0.0, store.balance(1))
	for i := int64(2); i < n+2; i++ {
		assert.Equal(t, v, store.balance(i))
	}
	assert.Len(t, store.ledger, n)
	assert.False(t, store.sawNegative, "a negative balance was written")
}
