package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Envelope is the standard JSON wrapper around every user-service response:
// { success, statusCode, message, data }. Data is nil on failure.
type Envelope struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message,omitempty"`
	Data       *Payload `json:"data"`
}

// Payload is the wire form of a Record inside a successful envelope.
type Payload struct {
	UserID          string            `json:"userId"`
	UserType        string            `json:"userType"`
	Email           string            `json:"email"`
	WalletAddresses map[string]string `json:"walletAddresses"`
	CardBalance     string            `json:"cardBalance,omitempty"`
	IsNewUser       bool              `json:"isNewUser"`
	TimeCreated     string            `json:"timeCreated"`
	TimeUpdated     string            `json:"timeUpdated"`
}

// SyncRequest is the optional body of POST /users/me. Clients report the
// wallet addresses the custodial provider has issued so the backend can
// record them on the account.
type SyncRequest struct {
	Email           string            `json:"email,omitempty" validate:"omitempty,email"`
	WalletAddresses map[string]string `json:"walletAddresses,omitempty" validate:"omitempty,dive,keys,oneof=ethereum solana bitcoin tron,endkeys,required"`
}

// timeWire is the timestamp layout used on the wire.
const timeWire = "2006-01-02T15:04:05.000Z07:00"

// parseWireTime accepts the canonical layout plus plain RFC 3339, which older
// backend versions emitted.
func parseWireTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeWire, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ToPayload converts a Record to its wire form.
func ToPayload(r *Record) *Payload {
	addrs := make(map[string]string, len(r.WalletAddresses))
	for chain, addr := range r.WalletAddresses {
		if addr != "" {
			addrs[string(chain)] = addr
		}
	}
	p := &Payload{
		UserID:          r.UserID,
		UserType:        r.UserType,
		Email:           r.Email,
		WalletAddresses: addrs,
		IsNewUser:       r.IsNewUser,
		TimeCreated:     r.TimeCreated.Format(timeWire),
		TimeUpdated:     r.TimeUpdated.Format(timeWire),
	}
	if !r.CardBalance.IsZero() {
		p.CardBalance = r.CardBalance.String()
	}
	return p
}

// FromPayload converts a wire payload back to a Record. Unknown chain keys
// are dropped rather than rejected so older clients keep working when the
// backend adds chains.
func FromPayload(p *Payload) *Record {
	r := &Record{
		UserID:          p.UserID,
		UserType:        p.UserType,
		Email:           p.Email,
		WalletAddresses: make(map[Chain]string, len(p.WalletAddresses)),
		IsNewUser:       p.IsNewUser,
	}
	if p.CardBalance != "" {
		if balance, err := decimal.NewFromString(p.CardBalance); err == nil {
			r.CardBalance = balance
		}
	}
	for name, addr := range p.WalletAddresses {
		chain := Chain(name)
		if chain.Valid() && addr != "" {
			r.WalletAddresses[chain] = addr
		}
	}
	if t, err := parseWireTime(p.TimeCreated); err == nil {
		r.TimeCreated = t
	}
	if t, err := parseWireTime(p.TimeUpdated); err == nil {
		r.TimeUpdated = t
	}
	return r
}
