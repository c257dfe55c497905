// Package gate dispatches inbound actions against the unlock decision core.
// It owns no policy of its own: provisioning state comes from the account
// store and unlock state from the access controller, and each request is a
// single evaluate-then-branch step with no session state in between.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/internal/metrics"
	"github.com/vortexpump/wallet-middleware/pkg/access"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"
)

// OutcomeKind enumerates the possible results of handling an action.
type OutcomeKind string

const (
	// OutcomeExecute authorizes the gated action to run.
	OutcomeExecute OutcomeKind = "execute"
	// OutcomeDeny refuses a gated action because the fresh balance is below
	// the threshold. Balance and Threshold carry the funding shortfall.
	OutcomeDeny OutcomeKind = "deny"
	// OutcomeRetryLater means the unlock state could not be verified. It is
	// not a denial; the user should simply try again.
	OutcomeRetryLater OutcomeKind = "retry_later"
	// OutcomeNeedProvision directs an unknown user to provision a wallet
	// before requesting actions.
	OutcomeNeedProvision OutcomeKind = "need_provision"
	// OutcomeWallet carries the account's address and cached balance for
	// the ungated wallet view.
	OutcomeWallet OutcomeKind = "wallet"
	// OutcomeFunding carries deposit instructions for the ungated
	// deposit view.
	OutcomeFunding OutcomeKind = "funding"
)

// Outcome is the plain-data result the transport renders for the user.
type Outcome struct {
	Kind          OutcomeKind
	Action        Action
	Balance       decimal.Decimal
	PublicAddress string
	Threshold     decimal.Decimal
}

// ActionRequest represents an inbound action event from the chat transport.
type ActionRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Action string `json:"action" validate:"required"`
}

// Store is the narrow account lookup interface the gate needs for
// ungated actions.
type Store interface {
	Get(ctx context.Context, userID string) (*wallet.Account, error)
}

// Evaluator issues fresh unlock verdicts for gated actions.
type Evaluator interface {
	RefreshAndEvaluate(ctx context.Context, userID string) (access.Verdict, error)
	Threshold() decimal.Decimal
}

// Service defines the interface for the action gate business logic
type Service interface {
	Handle(ctx context.Context, req *ActionRequest) (*Outcome, error)
}

type gateService struct {
	store     Store
	evaluator Evaluator
	logger    *zap.Logger
}

// NewService creates a new action gate service
func NewService(store Store, evaluator Evaluator, logger *zap.Logger) Service {
	return &gateService{
		store:     store,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Handle maps an inbound action onto an outcome. Unknown actions are a
// request error; everything else resolves to a renderable Outcome.
func (s *gateService) Handle(ctx context.Context, req *ActionRequest) (*Outcome, error) {
	action, err := ParseAction(req.Action)
	if err != nil {
		return nil, err
	}

	var outcome *Outcome
	if action.Gated() {
		outcome, err = s.handleGated(ctx, req.UserID, action)
	} else {
		outcome, err = s.handleUngated(ctx, req.UserID, action)
	}
	if err != nil {
		return nil, err
	}

	metrics.ActionsHandled.WithLabelValues(string(action), string(outcome.Kind)).Inc()
	return outcome, nil
}

func (s *gateService) handleGated(ctx context.Context, userID string, action Action) (*Outcome, error) {
	verdict, err := s.evaluator.RefreshAndEvaluate(ctx, userID)
	if err != nil {
		if errors.Is(err, walletstore.ErrAccountNotFound) {
			return &Outcome{Kind: OutcomeNeedProvision, Action: action}, nil
		}
		return nil, fmt.Errorf("unlock evaluation failed: %w", err)
	}

	metrics.Verdicts.WithLabelValues(verdict.Kind.String()).Inc()

	switch verdict.Kind {
	case access.VerdictUnlocked:
		return &Outcome{
			Kind:    OutcomeExecute,
			Action:  action,
			Balance: verdict.Balance,
		}, nil
	case access.VerdictLocked:
		return &Outcome{
			Kind:      OutcomeDeny,
			Action:    action,
			Balance:   verdict.Balance,
			Threshold: s.evaluator.Threshold(),
		}, nil
	case access.VerdictUnverifiable:
		return &Outcome{Kind: OutcomeRetryLater, Action: action}, nil
	default:
		return nil, fmt.Errorf("unexpected verdict %s", verdict.Kind)
	}
}

func (s *gateService) handleUngated(ctx context.Context, userID string, action Action) (*Outcome, error) {
	acct, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, walletstore.ErrAccountNotFound) {
			return &Outcome{Kind: OutcomeNeedProvision, Action: action}, nil
		}
		s.logger.Warn("account load failed for ungated action",
			zap.String("user_id", userID),
			zap.String("action", string(action)),
			zap.Error(err))
		return &Outcome{Kind: OutcomeRetryLater, Action: action}, nil
	}

	switch action {
	case ActionWallet:
		return &Outcome{
			Kind:          OutcomeWallet,
			Action:        action,
			Balance:       acct.CachedBalance,
			PublicAddress: acct.PublicAddress,
		}, nil
	case ActionDeposit:
		return &Outcome{
			Kind:          OutcomeFunding,
			Action:        action,
			PublicAddress: acct.PublicAddress,
			Threshold:     s.evaluator.Threshold(),
		}, nil
	default:
		return nil, fmt.Errorf("unexpected ungated action %s", action)
	}
}
