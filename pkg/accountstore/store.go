// Package accountstore persists card account records in PostgreSQL.
package accountstore

import (
	"context"
	"errors"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

// ErrAccountNotFound is returned when a lookup finds no matching record.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned by Create when the principal already has an
// account, i.e. two syncs raced the first insert.
var ErrAccountExists = errors.New("account already exists")

// Store defines all account persistence operations used by the user service.
type Store interface {
	// GetByPrincipal returns the account owned by the given principal.
	GetByPrincipal(ctx context.Context, principal string) (*account.Record, error)

	// Create inserts a new account for the principal. A unique-constraint
	// violation surfaces as ErrAccountExists so callers can resolve the
	// create race.
	Create(ctx context.Context, principal string, record *account.Record) error

	// UpdateWalletAddresses records the provider-issued wallet addresses on
	// the principal's account. Chains absent from addrs are left untouched.
	UpdateWalletAddresses(ctx context.Context, principal string, addrs map[account.Chain]string) error
}
