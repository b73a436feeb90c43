package activation

import (
	"errors"
	"strings"

	"github.com/cardlink-labs/cardlink-middleware/pkg/backend"
	"github.com/cardlink-labs/cardlink-middleware/pkg/identity"
)

// ErrDelegationFailed is returned when at least one chain was attempted and
// none delegated successfully. The synced user record remains valid.
var ErrDelegationFailed = errors.New("no wallets could be delegated")

// FailureKind classifies why an activation attempt failed.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureTokenUnavailable FailureKind = "token_unavailable"
	FailureNetwork          FailureKind = "network_error"
	FailureInvalidResponse  FailureKind = "invalid_response"
	FailureDelegation       FailureKind = "delegation_failed"
	FailureUnknown          FailureKind = "unknown"
)

// Classify maps an error from either stage onto the failure taxonomy.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var netErr *backend.NetworkError
	switch {
	case errors.Is(err, identity.ErrTokenUnavailable):
		return FailureTokenUnavailable
	case errors.As(err, &netErr):
		return FailureNetwork
	case errors.Is(err, backend.ErrInvalidResponse):
		return FailureInvalidResponse
	case errors.Is(err, ErrDelegationFailed):
		return FailureDelegation
	}

	var envErr *backend.EnvelopeError
	if errors.As(err, &envErr) {
		// A semantically-failed envelope that wasn't the benign duplicate.
		return FailureInvalidResponse
	}
	return FailureUnknown
}

// duplicateKeyFragment is the backend's raw message text for a unique
// constraint violation during user creation.
const duplicateKeyFragment = "duplicate key value"

// isDuplicateUser reports whether the backend rejected the sync because the
// record already exists. This indicates a race between client-side new-user
// detection and server-side creation and is treated as sync success for an
// existing user.
//
// TODO: switch to a typed conflict code once deployed backends stop sending
// only the raw constraint message.
func isDuplicateUser(err error) bool {
	var envErr *backend.EnvelopeError
	if !errors.As(err, &envErr) {
		return false
	}
	return strings.Contains(strings.ToLower(envErr.Message), duplicateKeyFragment)
}
