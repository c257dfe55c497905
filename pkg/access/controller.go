// Package access holds the unlock decision core. A gated action may only run
// when the account's balance, freshly read from the ledger, meets the unlock
// threshold. Verdicts are never issued from the cached balance alone.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/pkg/oracle"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"
)

// DefaultUnlockThreshold is the minimum confirmed balance, in SOL, required
// to execute gated actions.
var DefaultUnlockThreshold = decimal.RequireFromString("0.01")

// VerdictKind enumerates the possible results of an unlock evaluation.
type VerdictKind int

const (
	// VerdictUnlocked means the fresh balance met the threshold.
	VerdictUnlocked VerdictKind = iota
	// VerdictLocked means the fresh balance was below the threshold.
	VerdictLocked
	// VerdictUnverifiable means no fresh balance could be obtained or
	// recorded. It is a distinct state, not a denial; callers should ask
	// the user to retry.
	VerdictUnverifiable
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictUnlocked:
		return "unlocked"
	case VerdictLocked:
		return "locked"
	case VerdictUnverifiable:
		return "unverifiable"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of RefreshAndEvaluate. Balance carries the fresh
// reading for Unlocked and Locked verdicts and is zero for Unverifiable.
type Verdict struct {
	Kind    VerdictKind
	Balance decimal.Decimal
}

// Store is the slice of the account store the controller needs.
type Store interface {
	Get(ctx context.Context, userID string) (*wallet.Account, error)
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error
}

// Controller evaluates unlock state for provisioned accounts.
type Controller struct {
	store     Store
	oracle    oracle.Oracle
	threshold decimal.Decimal
	logger    *zap.Logger
}

// NewController creates a Controller with the given unlock threshold. A
// non-positive threshold falls back to DefaultUnlockThreshold.
func NewController(store Store, balanceOracle oracle.Oracle, threshold decimal.Decimal, logger *zap.Logger) *Controller {
	if threshold.LessThanOrEqual(decimal.Zero) {
		threshold = DefaultUnlockThreshold
	}
	return &Controller{
		store:     store,
		oracle:    balanceOracle,
		threshold: threshold,
		logger:    logger,
	}
}

// Threshold returns the configured unlock threshold in SOL.
func (c *Controller) Threshold() decimal.Decimal {
	return c.threshold
}

// RefreshAndEvaluate reads the account's live balance, persists it, and
// decides the unlock verdict. The account must already exist; a missing
// account is a caller error and is returned as such. Oracle or storage
// failures yield VerdictUnverifiable and leave the cached balance untouched.
func (c *Controller) RefreshAndEvaluate(ctx context.Context, userID string) (Verdict, error) {
	acct, err := c.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, walletstore.ErrAccountNotFound) {
			return Verdict{}, fmt.Errorf("account %s is not provisioned: %w", userID, err)
		}
		c.logger.Warn("account load failed during unlock evaluation",
			zap.String("user_id", userID),
			zap.Error(err))
		return Verdict{Kind: VerdictUnverifiable}, nil
	}

	balance, err := c.oracle.Balance(ctx, acct.PublicAddress)
	if err != nil {
		c.logger.Warn("balance oracle read failed",
			zap.String("user_id", userID),
			zap.String("public_address", acct.PublicAddress),
			zap.Error(err))
		return Verdict{Kind: VerdictUnverifiable}, nil
	}

	if err := c.store.UpdateBalance(ctx, userID, balance); err != nil {
		c.logger.Warn("balance cache update failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return Verdict{Kind: VerdictUnverifiable}, nil
	}

	if balance.GreaterThanOrEqual(c.threshold) {
		return Verdict{Kind: VerdictUnlocked, Balance: balance}, nil
	}
	return Verdict{Kind: VerdictLocked, Balance: balance}, nil
}
