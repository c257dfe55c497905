// Package oracle reads live balances from the ledger backing the custodial
// wallets. The rest of the system treats it as an opaque source of truth:
// callers only see SOL amounts and the two failure classes below.
package oracle

import (
	"context"
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

var (
	// ErrUnavailable indicates the ledger endpoint could not be reached or
	// did not answer in time. The condition is transient.
	ErrUnavailable = errors.New("balance oracle unavailable")

	// ErrProtocol indicates the endpoint answered but the response was not
	// usable, for example a malformed payload or an RPC-level error.
	ErrProtocol = errors.New("balance oracle protocol error")
)

// Oracle reports the current on-ledger balance of a public address in SOL.
type Oracle interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

// LamportsToSOL converts a raw lamport amount into SOL without losing
// precision.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}
