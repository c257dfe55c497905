package walletstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

// AccountDao is a data access object that maps directly to the 'accounts' table in PostgreSQL.
type AccountDao struct {
	bun.BaseModel    `bun:"table:accounts,alias:a"`
	ID               int64      `bun:"id,pk,autoincrement"`
	UserID           string     `bun:"user_id,unique,notnull,type:varchar(64)"`
	DisplayName      *string    `bun:"display_name,type:varchar(255)"`
	PublicAddress    string     `bun:"public_address,notnull,type:varchar(64)"`
	SecretEncrypted  string     `bun:"secret_encrypted,notnull,type:text"`
	CachedBalance    *string    `bun:"cached_balance,nullzero,type:numeric(20,9)"`
	BalanceUpdatedAt *time.Time `bun:"balance_updated_at"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

// toAccountDao converts a wallet.Account to AccountDao.
func toAccountDao(acct *wallet.Account) *AccountDao {
	dao := &AccountDao{
		UserID:          acct.UserID,
		PublicAddress:   acct.PublicAddress,
		SecretEncrypted: acct.SecretEncrypted,
	}

	if acct.DisplayName != "" {
		dao.DisplayName = &acct.DisplayName
	}
	if !acct.CachedBalance.IsZero() {
		s := acct.CachedBalance.String()
		dao.CachedBalance = &s
	}
	if acct.BalanceUpdatedAt != nil {
		dao.BalanceUpdatedAt = acct.BalanceUpdatedAt
	}

	return dao
}

// toAccount converts an AccountDao to wallet.Account.
func toAccount(dao *AccountDao) (*wallet.Account, error) {
	acct := &wallet.Account{
		UserID:          dao.UserID,
		PublicAddress:   dao.PublicAddress,
		SecretEncrypted: dao.SecretEncrypted,
		CachedBalance:   decimal.Zero,
		CreatedAt:       dao.CreatedAt,
	}

	if dao.DisplayName != nil {
		acct.DisplayName = *dao.DisplayName
	}
	if dao.CachedBalance != nil {
		bal, err := decimal.NewFromString(*dao.CachedBalance)
		if err != nil {
			return nil, err
		}
		acct.CachedBalance = bal
	}
	if dao.BalanceUpdatedAt != nil {
		acct.BalanceUpdatedAt = dao.BalanceUpdatedAt
	}

	return acct, nil
}
