// Package session holds mutable per-user client state shared across the app:
// profile fields, card settings, and the activation snapshot surface reads.
// All access is safe for concurrent use.
package session

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Profile is the user-editable slice of session state. Updates are
// validated before they are applied.
type Profile struct {
	Username string `validate:"omitempty,min=3,max=32,alphanum"`
	Email    string `validate:"omitempty,email"`
}

// CardSettings holds card controls the user can change from the app.
type CardSettings struct {
	Activated     bool
	SpendingLimit decimal.Decimal
}

// State is the in-memory session container. A single State is created at
// startup and handed to the components that need it.
type State struct {
	mu       sync.RWMutex
	profile  Profile
	card     CardSettings
	validate *validator.Validate
}

// NewState creates an empty session state.
func NewState() *State {
	return &State{
		validate: validator.New(),
	}
}

// Profile returns a copy of the current profile.
func (s *State) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// UpdateProfile validates and applies profile changes. On validation
// failure the existing profile is kept.
func (s *State) UpdateProfile(p Profile) error {
	if err := s.validate.Struct(&p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

// Card returns a copy of the current card settings.
func (s *State) Card() CardSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.card
}

// SetCardActivated flips the card-activated flag.
func (s *State) SetCardActivated(activated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card.Activated = activated
}

// SetSpendingLimit applies a new spending limit. The limit must be
// positive; a zero limit means "no limit set" and is only reachable via
// Clear.
func (s *State) SetSpendingLimit(limit decimal.Decimal) error {
	if limit.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidSpendingLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.card.SpendingLimit = limit
	return nil
}

// Clear resets all session state. Called on sign-out alongside the
// activation workflow's reset.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{}
	s.card = CardSettings{}
}
