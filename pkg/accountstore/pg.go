package accountstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the account store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) GetByPrincipal(ctx context.Context, principal string) (*account.Record, error) {
	dao := new(AccountDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("principal = ?", principal).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return toRecord(dao), nil
}

func (s *pgStore) Create(ctx context.Context, principal string, record *account.Record) error {
	dao := toAccountDao(principal, record)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		// Unique violations become ErrAccountExists so the service can
		// resolve the concurrent-create race.
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrAccountExists, err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (s *pgStore) UpdateWalletAddresses(ctx context.Context, principal string, addrs map[account.Chain]string) error {
	if len(addrs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	query := s.db.NewUpdate().
		Model((*AccountDao)(nil)).
		Set("updated_at = ?", now).
		Where("principal = ?", principal)

	for chain, addr := range addrs {
		col, ok := chainColumns[chain]
		if !ok || addr == "" {
			continue
		}
		query = query.Set("? = ?", bun.Ident(col), addr)
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update wallet addresses: %w", err)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
