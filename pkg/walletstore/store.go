package walletstore

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

// ErrAccountNotFound is returned when an account lookup finds no matching
// record. It indicates a caller-ordering bug for balance operations:
// provisioning must have happened first.
var ErrAccountNotFound = errors.New("account not found")

// Store defines the interface for wallet account persistence. Both the
// postgres and the in-memory implementations satisfy it.
//
// Any other error returned by a Store method is a storage failure and is
// retriable by the caller; ErrAccountNotFound is a logic error.
type Store interface {
	// CreateIfAbsent atomically persists the account unless one already
	// exists for its user id. Returns created=false (and leaves the existing
	// row untouched) on conflict. This is the only concurrency-sensitive
	// operation: two simultaneous first contacts race on a single
	// insert-if-absent and exactly one wins.
	CreateIfAbsent(ctx context.Context, account *wallet.Account) (created bool, err error)

	// Get returns the account for a user id, or ErrAccountNotFound.
	Get(ctx context.Context, userID string) (*wallet.Account, error)

	// UpdateBalance overwrites the cached balance wholesale. The cache is
	// never incremented or decremented locally; it always reflects the last
	// successful oracle read. Returns ErrAccountNotFound if no row matched.
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error

	// UpdateDisplayName refreshes the best-effort display label.
	UpdateDisplayName(ctx context.Context, userID, displayName string) error

	// List returns all accounts. Used by the background balance refresher.
	List(ctx context.Context) ([]*wallet.Account, error)
}
