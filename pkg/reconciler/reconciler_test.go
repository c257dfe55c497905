package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"
)

type scriptedOracle struct {
	balances map[string]decimal.Decimal
	errs     map[string]error
}

func (o *scriptedOracle) Balance(_ context.Context, address string) (decimal.Decimal, error) {
	if err, ok := o.errs[address]; ok {
		return decimal.Zero, err
	}
	return o.balances[address], nil
}

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	store := walletstore.NewMemoryStore()

	for _, id := range []string{"u1", "u2"} {
		acct := wallet.New(id, "", "addr-"+id, "enc")
		if _, err := store.CreateIfAbsent(ctx, acct); err != nil {
			t.Fatalf("failed to create account: %v", err)
		}
	}

	o := &scriptedOracle{balances: map[string]decimal.Decimal{
		"addr-u1": decimal.RequireFromString("0.5"),
		"addr-u2": decimal.RequireFromString("2"),
	}}

	r := New(store, o, zap.NewNop())
	if err := r.ReconcileAll(ctx); err != nil {
		t.Fatalf("ReconcileAll() failed: %v", err)
	}

	u1, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if !u1.CachedBalance.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected u1 balance: %s", u1.CachedBalance)
	}

	u2, err := store.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if !u2.CachedBalance.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("unexpected u2 balance: %s", u2.CachedBalance)
	}
}

func TestReconcileAllSkipsFailedAccounts(t *testing.T) {
	ctx := context.Background()
	store := walletstore.NewMemoryStore()

	for _, id := range []string{"u1", "u2"} {
		acct := wallet.New(id, "", "addr-"+id, "enc")
		if _, err := store.CreateIfAbsent(ctx, acct); err != nil {
			t.Fatalf("failed to create account: %v", err)
		}
	}

	o := &scriptedOracle{
		balances: map[string]decimal.Decimal{
			"addr-u2": decimal.RequireFromString("1"),
		},
		errs: map[string]error{
			"addr-u1": errors.New("rpc timeout"),
		},
	}

	r := New(store, o, zap.NewNop())
	if err := r.ReconcileAll(ctx); err != nil {
		t.Fatalf("ReconcileAll() failed: %v", err)
	}

	// The failing account keeps its old cached balance.
	u1, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if !u1.CachedBalance.IsZero() {
		t.Fatalf("expected u1 balance untouched, got %s", u1.CachedBalance)
	}

	u2, err := store.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if !u2.CachedBalance.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("unexpected u2 balance: %s", u2.CachedBalance)
	}
}
