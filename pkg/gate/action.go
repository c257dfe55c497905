package gate

import (
	"errors"
	"fmt"
)

// ErrUnknownAction reports a request for an action outside the closed set.
var ErrUnknownAction = errors.New("unknown action")

// Action enumerates the closed set of inbound actions. Adding a feature
// means adding a variant here, not a new routing pattern.
type Action string

const (
	// Gated actions, unavailable until the unlock threshold is met.
	ActionRaid  Action = "raid"
	ActionShill Action = "shill"
	ActionToken Action = "token"
	ActionRefer Action = "refer"

	// Ungated actions, requiring only that the account exists.
	ActionWallet  Action = "wallet"
	ActionDeposit Action = "deposit"
)

// ParseAction maps a raw request string onto the closed action set.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionRaid, ActionShill, ActionToken, ActionRefer, ActionWallet, ActionDeposit:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// Gated reports whether the action requires an unlock verdict before it
// may execute.
func (a Action) Gated() bool {
	switch a {
	case ActionWallet, ActionDeposit:
		return false
	default:
		return true
	}
}
