package access

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/pkg/oracle"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"
)

type fakeStore struct {
	account        *wallet.Account
	getErr         error
	updateErr      error
	updatedBalance *decimal.Decimal
}

func (s *fakeStore) Get(_ context.Context, userID string) (*wallet.Account, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.account == nil || s.account.UserID != userID {
		return nil, walletstore.ErrAccountNotFound
	}
	cp := *s.account
	return &cp, nil
}

func (s *fakeStore) UpdateBalance(_ context.Context, _ string, balance decimal.Decimal) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedBalance = &balance
	s.account.CachedBalance = balance
	return nil
}

type fakeOracle struct {
	balance decimal.Decimal
	err     error
}

func (o *fakeOracle) Balance(_ context.Context, _ string) (decimal.Decimal, error) {
	if o.err != nil {
		return decimal.Zero, o.err
	}
	return o.balance, nil
}

func newController(store *fakeStore, o *fakeOracle) *Controller {
	return NewController(store, o, decimal.Decimal{}, zap.NewNop())
}

func provisionedStore() *fakeStore {
	return &fakeStore{
		account: wallet.New("u1", "user one", "addr-u1", "encrypted"),
	}
}

func TestRefreshAndEvaluateUnlocked(t *testing.T) {
	store := provisionedStore()
	c := newController(store, &fakeOracle{balance: decimal.RequireFromString("0.02")})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictUnlocked {
		t.Fatalf("expected unlocked, got %s", verdict.Kind)
	}
	if !verdict.Balance.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("unexpected verdict balance: %s", verdict.Balance)
	}
	if store.updatedBalance == nil || !store.updatedBalance.Equal(verdict.Balance) {
		t.Fatalf("expected fresh balance to be persisted")
	}
}

func TestRefreshAndEvaluateExactThreshold(t *testing.T) {
	c := newController(provisionedStore(), &fakeOracle{balance: DefaultUnlockThreshold})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictUnlocked {
		t.Fatalf("expected threshold balance to unlock, got %s", verdict.Kind)
	}
}

func TestRefreshAndEvaluateLocked(t *testing.T) {
	store := provisionedStore()
	c := newController(store, &fakeOracle{balance: decimal.RequireFromString("0.005")})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictLocked {
		t.Fatalf("expected locked, got %s", verdict.Kind)
	}
	if !verdict.Balance.Equal(decimal.RequireFromString("0.005")) {
		t.Fatalf("unexpected verdict balance: %s", verdict.Balance)
	}
	if store.updatedBalance == nil {
		t.Fatalf("expected locked verdict to still persist the fresh balance")
	}
}

func TestRefreshAndEvaluateStaleCacheIgnored(t *testing.T) {
	// A generous cached balance must not unlock when the fresh read is low.
	store := provisionedStore()
	store.account.CachedBalance = decimal.RequireFromString("5")
	c := newController(store, &fakeOracle{balance: decimal.Zero})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictLocked {
		t.Fatalf("expected locked from fresh read, got %s", verdict.Kind)
	}
}

func TestRefreshAndEvaluateMissingAccount(t *testing.T) {
	c := newController(&fakeStore{}, &fakeOracle{})

	_, err := c.RefreshAndEvaluate(context.Background(), "missing")
	if !errors.Is(err, walletstore.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRefreshAndEvaluateOracleFailure(t *testing.T) {
	store := provisionedStore()
	store.account.CachedBalance = decimal.RequireFromString("0.007")
	c := newController(store, &fakeOracle{err: oracle.ErrUnavailable})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictUnverifiable {
		t.Fatalf("expected unverifiable, got %s", verdict.Kind)
	}
	if store.updatedBalance != nil {
		t.Fatalf("cached balance must not change on oracle failure")
	}
	if !store.account.CachedBalance.Equal(decimal.RequireFromString("0.007")) {
		t.Fatalf("cached balance was mutated: %s", store.account.CachedBalance)
	}
}

func TestRefreshAndEvaluateStorageFailure(t *testing.T) {
	store := provisionedStore()
	store.getErr = errors.New("connection reset")
	c := newController(store, &fakeOracle{balance: decimal.RequireFromString("1")})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictUnverifiable {
		t.Fatalf("expected unverifiable on storage failure, got %s", verdict.Kind)
	}
}

func TestRefreshAndEvaluateUpdateFailure(t *testing.T) {
	store := provisionedStore()
	store.updateErr = errors.New("write failed")
	c := newController(store, &fakeOracle{balance: decimal.RequireFromString("1")})

	verdict, err := c.RefreshAndEvaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshAndEvaluate() failed: %v", err)
	}
	if verdict.Kind != VerdictUnverifiable {
		t.Fatalf("expected unverifiable when the fresh balance cannot be recorded, got %s", verdict.Kind)
	}
}

func TestNewControllerDefaultThreshold(t *testing.T) {
	c := newController(provisionedStore(), &fakeOracle{})
	if !c.Threshold().Equal(DefaultUnlockThreshold) {
		t.Fatalf("expected default threshold, got %s", c.Threshold())
	}

	custom := decimal.RequireFromString("0.5")
	c = NewController(provisionedStore(), &fakeOracle{}, custom, zap.NewNop())
	if !c.Threshold().Equal(custom) {
		t.Fatalf("expected custom threshold, got %s", c.Threshold())
	}
}
