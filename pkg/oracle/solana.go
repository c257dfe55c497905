package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/shopspring/decimal"

	"github.com/vortexpump/wallet-middleware/internal/metrics"
)

// balanceClient is the slice of the Solana RPC client the oracle uses.
type balanceClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

type solanaOracle struct {
	client     balanceClient
	commitment rpc.CommitmentType
}

// NewSolanaOracle creates an Oracle backed by a Solana JSON-RPC endpoint.
// A non-positive requestTimeout leaves the transport without a deadline;
// callers are expected to bound reads with the request context.
func NewSolanaOracle(endpoint string, requestTimeout time.Duration) *solanaOracle {
	client := rpc.New(endpoint)
	if requestTimeout > 0 {
		client = rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: requestTimeout},
		}))
	}

	return &solanaOracle{
		client:     client,
		commitment: rpc.CommitmentConfirmed,
	}
}

func (o *solanaOracle) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		metrics.OracleRequests.WithLabelValues("protocol_error").Inc()
		return decimal.Zero, fmt.Errorf("%w: invalid address %q: %v", ErrProtocol, address, err)
	}

	start := time.Now()
	out, err := o.client.GetBalance(ctx, pubkey, o.commitment)
	metrics.OracleRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			metrics.OracleRequests.WithLabelValues("protocol_error").Inc()
			return decimal.Zero, fmt.Errorf("%w: rpc error %d: %s", ErrProtocol, rpcErr.Code, rpcErr.Message)
		}
		metrics.OracleRequests.WithLabelValues("unavailable").Inc()
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out == nil {
		metrics.OracleRequests.WithLabelValues("protocol_error").Inc()
		return decimal.Zero, fmt.Errorf("%w: empty balance response", ErrProtocol)
	}

	metrics.OracleRequests.WithLabelValues("ok").Inc()
	return LamportsToSOL(out.Value), nil
}
