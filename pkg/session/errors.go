package session

import "errors"

// ErrInvalidSpendingLimit is returned when a spending limit update is not
// a positive amount.
var ErrInvalidSpendingLimit = errors.New("spending limit must be positive")
