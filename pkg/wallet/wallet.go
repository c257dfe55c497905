package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents the domain model for a provisioned custodial wallet.
// There is exactly one Account per chat-platform user id.
type Account struct {
	UserID           string
	DisplayName      string
	PublicAddress    string
	SecretEncrypted  string
	CachedBalance    decimal.Decimal
	BalanceUpdatedAt *time.Time
	CreatedAt        time.Time
}

// New creates an Account from the given parameters. The cached balance
// starts at zero and is only ever overwritten by a successful oracle read.
func New(userID, displayName, publicAddress, secretEncrypted string) *Account {
	return &Account{
		UserID:          userID,
		DisplayName:     displayName,
		PublicAddress:   publicAddress,
		SecretEncrypted: secretEncrypted,
		CachedBalance:   decimal.Zero,
	}
}

// ProvisionRequest represents an inbound provisioning request from the
// chat transport (the /start flow).
type ProvisionRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	DisplayName string `json:"display_name" validate:"max=255"`
}

// ProvisionResponse represents a provisioning response. The secret
// credential is never part of it; on first creation it is delivered once
// through the private courier channel instead.
type ProvisionResponse struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name,omitzero"`
	PublicAddress string `json:"public_address"`
	Balance       string `json:"balance"`
	Created       bool   `json:"created"`
}
