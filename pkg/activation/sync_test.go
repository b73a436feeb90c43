package activation

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/backend"
	"github.com/cardlink-labs/cardlink-middleware/pkg/identity"
)

func TestSyncer_TokenUnavailable(t *testing.T) {
	ctx := context.Background()

	var syncCalled bool
	syncClient := &MockSyncClient{
		SyncUserFunc: func(_ context.Context, _ string, _ *account.SyncRequest) (*account.Record, error) {
			syncCalled = true
			return nil, nil
		},
	}

	s := NewSyncer(identity.StaticSource(""), syncClient, zap.NewNop())

	_, err := s.Run(ctx, nil)
	if !errors.Is(err, identity.ErrTokenUnavailable) {
		t.Fatalf("expected ErrTokenUnavailable, got %v", err)
	}
	if syncCalled {
		t.Fatal("expected no backend call without a token")
	}
}

func TestSyncer_PassesTokenAndRequest(t *testing.T) {
	ctx := context.Background()

	req := &account.SyncRequest{
		WalletAddresses: map[string]string{"ethereum": "0xabc"},
	}
	syncClient := &MockSyncClient{
		SyncUserFunc: func(_ context.Context, token string, got *account.SyncRequest) (*account.Record, error) {
			if token != "session-token" {
				t.Errorf("Expected token session-token, got %s", token)
			}
			if got != req {
				t.Errorf("Expected request passed through unchanged")
			}
			return account.New("user-1", "cardholder", ""), nil
		},
	}

	s := NewSyncer(identity.StaticSource("session-token"), syncClient, zap.NewNop())

	record, err := s.Run(ctx, req)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if record.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", record.UserID)
	}
}

func TestSyncer_BackendErrorPropagates(t *testing.T) {
	ctx := context.Background()

	backendErr := &backend.EnvelopeError{StatusCode: 400, Message: "invalid wallet address"}
	syncClient := &MockSyncClient{
		SyncUserFunc: func(_ context.Context, _ string, _ *account.SyncRequest) (*account.Record, error) {
			return nil, backendErr
		},
	}

	s := NewSyncer(identity.StaticSource("tok"), syncClient, zap.NewNop())

	_, err := s.Run(ctx, nil)
	var envErr *backend.EnvelopeError
	if !errors.As(err, &envErr) {
		t.Fatalf("expected EnvelopeError, got %v", err)
	}
}

func TestSyncer_DuplicateKeyIsBenign(t *testing.T) {
	ctx := context.Background()

	syncClient := &MockSyncClient{
		SyncUserFunc: func(_ context.Context, _ string, _ *account.SyncRequest) (*account.Record, error) {
			return nil, &backend.EnvelopeError{
				StatusCode: 500,
				Message:    `ERROR: duplicate key value violates unique constraint "accounts_principal_key"`,
			}
		},
	}

	s := NewSyncer(identity.StaticSource("tok"), syncClient, zap.NewNop())

	record, err := s.Run(ctx, nil)
	if err != nil {
		t.Fatalf("expected duplicate key to be benign, got %v", err)
	}
	if record.IsNewUser {
		t.Fatal("expected existing-user record")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"token", identity.ErrTokenUnavailable, FailureTokenUnavailable},
		{"network", &backend.NetworkError{Err: errors.New("refused")}, FailureNetwork},
		{"invalid response", backend.ErrInvalidResponse, FailureInvalidResponse},
		{"delegation", ErrDelegationFailed, FailureDelegation},
		{"envelope", &backend.EnvelopeError{StatusCode: 422, Message: "nope"}, FailureInvalidResponse},
		{"unknown", errors.New("boom"), FailureUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}
