// Package reconciler keeps cached display balances loosely in sync with the
// ledger. It only serves read paths like the wallet view; unlock decisions
// never rely on it, they always trigger their own fresh oracle read.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/internal/metrics"
	"github.com/vortexpump/wallet-middleware/pkg/oracle"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

// AccountStore provides the account listing and balance cache operations
// reconciliation needs.
type AccountStore interface {
	List(ctx context.Context) ([]*wallet.Account, error)
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error
}

// Reconciler periodically refreshes every account's cached balance from the
// ledger so wallet views stay reasonably current between gated requests.
type Reconciler struct {
	store  AccountStore
	oracle oracle.Oracle
	logger *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Reconciler
func New(store AccountStore, balanceOracle oracle.Oracle, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		oracle: balanceOracle,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// ReconcileAll reads the live balance for every account and overwrites the
// cache. Individual account failures are logged and skipped; the sweep keeps
// going so one bad address cannot stall the rest.
func (r *Reconciler) ReconcileAll(ctx context.Context) error {
	r.logger.Info("Starting balance reconciliation sweep")
	start := time.Now()

	accounts, err := r.store.List(ctx)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	var refreshed, failed int
	for _, acct := range accounts {
		balance, err := r.oracle.Balance(ctx, acct.PublicAddress)
		if err != nil {
			failed++
			r.logger.Warn("balance read failed during reconciliation",
				zap.String("user_id", acct.UserID),
				zap.String("public_address", acct.PublicAddress),
				zap.Error(err))
			continue
		}
		if err := r.store.UpdateBalance(ctx, acct.UserID, balance); err != nil {
			failed++
			r.logger.Warn("balance cache update failed during reconciliation",
				zap.String("user_id", acct.UserID),
				zap.Error(err))
			continue
		}
		refreshed++
	}

	metrics.ReconcileRuns.WithLabelValues("ok").Inc()
	r.logger.Info("Balance reconciliation sweep completed",
		zap.Int("accounts", len(accounts)),
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// StartPeriodicReconciliation starts a background goroutine that reconciles periodically
func (r *Reconciler) StartPeriodicReconciliation(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic reconciliation", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := r.ReconcileAll(ctx); err != nil {
					r.logger.Error("Periodic reconciliation failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic reconciliation")
				return
			}
		}
	}()
}

// Stop stops the periodic reconciliation
func (r *Reconciler) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
