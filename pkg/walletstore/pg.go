package walletstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the account store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateIfAbsent(ctx context.Context, acct *wallet.Account) (bool, error) {
	dao := toAccountDao(acct)

	res, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create account: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return rows > 0, nil
}

func (s *pgStore) Get(ctx context.Context, userID string) (*wallet.Account, error) {
	dao := new(AccountDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	acct, err := toAccount(dao)
	if err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", userID, err)
	}
	return acct, nil
}

func (s *pgStore) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*AccountDao)(nil)).
		Set("cached_balance = ?", balance.String()).
		Set("balance_updated_at = NOW()").
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *pgStore) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	res, err := s.db.NewUpdate().
		Model((*AccountDao)(nil)).
		Set("display_name = ?", displayName).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *pgStore) List(ctx context.Context) ([]*wallet.Account, error) {
	var daos []AccountDao
	err := s.db.NewSelect().Model(&daos).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*wallet.Account, 0, len(daos))
	for i := range daos {
		acct, err := toAccount(&daos[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode account %s: %w", daos[i].UserID, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
