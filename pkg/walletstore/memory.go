package walletstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

// memoryStore is an in-memory implementation of Store. It backs unit tests
// and single-node deployments that do not want a database; it satisfies the
// same contract as the postgres store, including atomic insert-if-absent.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*wallet.Account
}

// NewMemoryStore creates a new in-memory account store
func NewMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[string]*wallet.Account),
	}
}

func (s *memoryStore) CreateIfAbsent(_ context.Context, acct *wallet.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.UserID]; ok {
		return false, nil
	}

	stored := cloneAccount(acct)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.accounts[acct.UserID] = stored
	return true, nil
}

func (s *memoryStore) Get(_ context.Context, userID string) (*wallet.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(acct), nil
}

func (s *memoryStore) UpdateBalance(_ context.Context, userID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}

	now := time.Now()
	acct.CachedBalance = balance
	acct.BalanceUpdatedAt = &now
	return nil
}

func (s *memoryStore) UpdateDisplayName(_ context.Context, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	acct.DisplayName = displayName
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]*wallet.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*wallet.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		accounts = append(accounts, cloneAccount(acct))
	}
	return accounts, nil
}

// cloneAccount copies an account so callers never alias the stored record.
func cloneAccount(acct *wallet.Account) *wallet.Account {
	cp := *acct
	if acct.BalanceUpdatedAt != nil {
		ts := *acct.BalanceUpdatedAt
		cp.BalanceUpdatedAt = &ts
	}
	return &cp
}
