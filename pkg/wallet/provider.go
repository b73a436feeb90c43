// Package wallet integrates with the custodial embedded-wallet provider.
// The provider owns all key material; this package only enumerates addresses
// and triggers delegation of signing authority to the card backend.
package wallet

import (
	"context"
	"errors"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

// ErrDelegationRejected is returned when the provider refuses to delegate a
// wallet. The failure is scoped to that single chain.
var ErrDelegationRejected = errors.New("wallet delegation rejected")

// Wallet is one embedded wallet the provider holds for the principal.
// At most one wallet per chain is treated as primary.
type Wallet struct {
	Chain   account.Chain
	Address string
}

// DelegateRequest asks the provider to hand signing authority for a wallet
// to the card backend without exposing private keys to the client.
type DelegateRequest struct {
	Address   string
	ChainType account.Chain
}

// Provider defines wallet enumeration and delegation.
//
// Implementations must scope each Delegate call to a single chain so
// failures on one chain never affect another.
type Provider interface {
	// Wallets returns the primary embedded wallet per chain for the
	// principal, in no particular order. A principal with no embedded
	// wallets yields an empty slice, not an error.
	Wallets(ctx context.Context) ([]Wallet, error)

	// Delegate hands signing authority for the given wallet to the backend.
	Delegate(ctx context.Context, req DelegateRequest) error
}
