// Package account holds the canonical domain model for card accounts and the
// standard response envelope shared by the user service and its clients.
package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chain identifies a blockchain network on which a wallet address and its
// delegation are scoped independently.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainBitcoin  Chain = "bitcoin"
	ChainTron     Chain = "tron"
)

// SupportedChains lists every chain the card product recognizes, in display order.
var SupportedChains = []Chain{ChainEthereum, ChainSolana, ChainBitcoin, ChainTron}

// Valid reports whether c is one of the supported chains.
func (c Chain) Valid() bool {
	switch c {
	case ChainEthereum, ChainSolana, ChainBitcoin, ChainTron:
		return true
	}
	return false
}

func (c Chain) String() string { return string(c) }

// Record is the canonical account state returned by the user service.
// UserID is stable once assigned; IsNewUser is true only on the sync call
// that created the backend record.
type Record struct {
	UserID          string
	UserType        string
	Email           string
	WalletAddresses map[Chain]string
	CardBalance     decimal.Decimal
	IsNewUser       bool
	TimeCreated     time.Time
	TimeUpdated     time.Time
}

// New creates a Record for a freshly created account.
func New(userID, userType, email string) *Record {
	now := time.Now().UTC()
	return &Record{
		UserID:          userID,
		UserType:        userType,
		Email:           email,
		WalletAddresses: make(map[Chain]string),
		IsNewUser:       true,
		TimeCreated:     now,
		TimeUpdated:     now,
	}
}

// Address returns the recorded address for the given chain, if any.
func (r *Record) Address(chain Chain) (string, bool) {
	addr, ok := r.WalletAddresses[chain]
	return addr, ok && addr != ""
}
