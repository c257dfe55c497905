package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/internal/metrics"
	"github.com/vortexpump/wallet-middleware/pkg/keys"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

var (
	// ErrSecretDeliveryFailed reports that a freshly created account's secret
	// could not be handed off through the private channel. The account itself
	// is persisted; the secret is not retrievable afterwards.
	ErrSecretDeliveryFailed = errors.New("secret credential delivery failed")
)

// Store is the narrow data-access interface for the provisioning service.
// Defined here to keep the service decoupled from walletstore implementation details.
type Store interface {
	CreateIfAbsent(ctx context.Context, acct *wallet.Account) (bool, error)
	Get(ctx context.Context, userID string) (*wallet.Account, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
}

// Generator produces fresh ledger keypairs for new accounts.
type Generator interface {
	Generate() (keys.Keypair, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() (keys.Keypair, error)

func (f GeneratorFunc) Generate() (keys.Keypair, error) { return f() }

// Courier delivers a new account's secret credential through a private,
// non-repeatable channel. It is invoked exactly once per created account.
type Courier interface {
	DeliverSecret(ctx context.Context, userID, publicAddress, secret string) error
}

// Service defines the interface for the wallet provisioning business logic
type Service interface {
	GetOrCreate(ctx context.Context, req *wallet.ProvisionRequest) (*wallet.ProvisionResponse, error)
}

type provisionService struct {
	store     Store
	generator Generator
	cipher    keys.KeyCipher
	courier   Courier
	logger    *zap.Logger
}

// NewService creates a new wallet provisioning service
func NewService(
	store Store,
	generator Generator,
	cipher keys.KeyCipher,
	courier Courier,
	logger *zap.Logger,
) Service {
	return &provisionService{
		store:     store,
		generator: generator,
		cipher:    cipher,
		courier:   courier,
		logger:    logger,
	}
}

// GetOrCreate provisions a wallet for the given user, or returns the existing
// one. Provisioning is idempotent: repeated calls for the same user id always
// yield the same public address, and exactly one account row exists afterwards.
//
// For a newly created account the plaintext secret is handed to the Courier
// exactly once and is never part of the response. A courier failure does not
// roll the account back; the secret is simply lost, which the caller surfaces
// to the user as a delivery failure.
func (s *provisionService) GetOrCreate(
	ctx context.Context,
	req *wallet.ProvisionRequest,
) (*wallet.ProvisionResponse, error) {
	keypair, err := s.generator.Generate()
	if err != nil {
		metrics.AccountsProvisioned.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("keypair generation failed: %w", err)
	}

	encryptedSecret, err := s.cipher.Encrypt([]byte(keypair.Secret))
	if err != nil {
		metrics.AccountsProvisioned.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	acct := wallet.New(req.UserID, req.DisplayName, keypair.PublicAddress, encryptedSecret)
	created, err := s.store.CreateIfAbsent(ctx, acct)
	if err != nil {
		metrics.AccountsProvisioned.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if !created {
		// Another wallet already exists for this user. The keypair generated
		// above is discarded without ever being persisted or delivered.
		existing, err := s.store.Get(ctx, req.UserID)
		if err != nil {
			metrics.AccountsProvisioned.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to load existing account: %w", err)
		}

		if req.DisplayName != "" && req.DisplayName != existing.DisplayName {
			// Display names are best-effort labels; a failed refresh is not
			// worth failing the request over.
			if err := s.store.UpdateDisplayName(ctx, req.UserID, req.DisplayName); err != nil {
				s.logger.Warn("display name refresh failed",
					zap.String("user_id", req.UserID),
					zap.Error(err))
			} else {
				existing.DisplayName = req.DisplayName
			}
		}

		metrics.AccountsProvisioned.WithLabelValues("existing").Inc()
		return provisionResponse(existing, false), nil
	}

	metrics.AccountsProvisioned.WithLabelValues("created").Inc()

	if err := s.courier.DeliverSecret(ctx, req.UserID, keypair.PublicAddress, keypair.Secret); err != nil {
		metrics.SecretDeliveries.WithLabelValues("failed").Inc()
		s.logger.Error("secret delivery failed for new account",
			zap.String("user_id", req.UserID),
			zap.String("public_address", keypair.PublicAddress),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSecretDeliveryFailed, err)
	}
	metrics.SecretDeliveries.WithLabelValues("delivered").Inc()

	return provisionResponse(acct, true), nil
}

func provisionResponse(acct *wallet.Account, created bool) *wallet.ProvisionResponse {
	return &wallet.ProvisionResponse{
		UserID:        acct.UserID,
		DisplayName:   acct.DisplayName,
		PublicAddress: acct.PublicAddress,
		Balance:       acct.CachedBalance.String(),
		Created:       created,
	}
}
