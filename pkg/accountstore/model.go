package accountstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

// AccountDao is a data access object that maps directly to the 'accounts' table in PostgreSQL.
type AccountDao struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`
	ID            int64            `bun:"id,pk,autoincrement"`
	Principal     string           `bun:"principal,unique,notnull,type:varchar(255)"`
	UserID        string           `bun:"user_id,unique,notnull,type:varchar(64)"`
	UserType      string           `bun:"user_type,notnull,type:varchar(32)"`
	Email         *string          `bun:"email,type:varchar(255)"`
	EthAddress    *string          `bun:"eth_address,type:varchar(64)"`
	SolAddress    *string          `bun:"sol_address,type:varchar(64)"`
	BtcAddress    *string          `bun:"btc_address,type:varchar(64)"`
	TronAddress   *string          `bun:"tron_address,type:varchar(64)"`
	CardBalance   *decimal.Decimal `bun:"card_balance,nullzero,type:numeric(38,18)"`
	CreatedAt     time.Time        `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     *time.Time       `bun:"updated_at"`
}

// chainColumns maps supported chains onto their address columns.
var chainColumns = map[account.Chain]string{
	account.ChainEthereum: "eth_address",
	account.ChainSolana:   "sol_address",
	account.ChainBitcoin:  "btc_address",
	account.ChainTron:     "tron_address",
}

// toAccountDao converts an account.Record to AccountDao.
func toAccountDao(principal string, rec *account.Record) *AccountDao {
	dao := &AccountDao{
		Principal: principal,
		UserID:    rec.UserID,
		UserType:  rec.UserType,
		CreatedAt: rec.TimeCreated,
	}
	if rec.Email != "" {
		email := rec.Email
		dao.Email = &email
	}
	if !rec.CardBalance.IsZero() {
		balance := rec.CardBalance
		dao.CardBalance = &balance
	}
	if !rec.TimeUpdated.IsZero() {
		updated := rec.TimeUpdated
		dao.UpdatedAt = &updated
	}

	setAddr := func(dst **string, chain account.Chain) {
		if addr, ok := rec.Address(chain); ok {
			*dst = &addr
		}
	}
	setAddr(&dao.EthAddress, account.ChainEthereum)
	setAddr(&dao.SolAddress, account.ChainSolana)
	setAddr(&dao.BtcAddress, account.ChainBitcoin)
	setAddr(&dao.TronAddress, account.ChainTron)

	return dao
}

// toRecord converts an AccountDao to account.Record. IsNewUser is always
// false on a read; only the create path reports a new user.
func toRecord(dao *AccountDao) *account.Record {
	rec := &account.Record{
		UserID:          dao.UserID,
		UserType:        dao.UserType,
		WalletAddresses: make(map[account.Chain]string),
		TimeCreated:     dao.CreatedAt,
	}
	if dao.Email != nil {
		rec.Email = *dao.Email
	}
	if dao.CardBalance != nil {
		rec.CardBalance = *dao.CardBalance
	}
	if dao.UpdatedAt != nil {
		rec.TimeUpdated = *dao.UpdatedAt
	} else {
		rec.TimeUpdated = dao.CreatedAt
	}

	addAddr := func(src *string, chain account.Chain) {
		if src != nil && *src != "" {
			rec.WalletAddresses[chain] = *src
		}
	}
	addAddr(dao.EthAddress, account.ChainEthereum)
	addAddr(dao.SolAddress, account.ChainSolana)
	addAddr(dao.BtcAddress, account.ChainBitcoin)
	addAddr(dao.TronAddress, account.ChainTron)

	return rec
}
