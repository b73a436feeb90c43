package service

import (
	"context"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/auth"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetByPrincipalFunc        func(ctx context.Context, principal string) (*account.Record, error)
	CreateFunc                func(ctx context.Context, principal string, record *account.Record) error
	UpdateWalletAddressesFunc func(ctx context.Context, principal string, addrs map[account.Chain]string) error
}

func (m *MockStore) GetByPrincipal(ctx context.Context, principal string) (*account.Record, error) {
	if m.GetByPrincipalFunc != nil {
		return m.GetByPrincipalFunc(ctx, principal)
	}
	return nil, nil
}

func (m *MockStore) Create(ctx context.Context, principal string, record *account.Record) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, principal, record)
	}
	return nil
}

func (m *MockStore) UpdateWalletAddresses(
	ctx context.Context,
	principal string,
	addrs map[account.Chain]string,
) error {
	if m.UpdateWalletAddressesFunc != nil {
		return m.UpdateWalletAddressesFunc(ctx, principal, addrs)
	}
	return nil
}

// MockValidator is a mock implementation of TokenValidator
type MockValidator struct {
	ValidateTokenFunc func(tokenString string) (*auth.Principal, error)
}

func (m *MockValidator) ValidateToken(tokenString string) (*auth.Principal, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(tokenString)
	}
	return &auth.Principal{Subject: "sub-1", Email: "user@example.com"}, nil
}

// MockService is a mock implementation of Service
type MockService struct {
	SyncAccountFunc func(ctx context.Context, principal *auth.Principal, req *account.SyncRequest) (*account.Record, error)
}

func (m *MockService) SyncAccount(
	ctx context.Context,
	principal *auth.Principal,
	req *account.SyncRequest,
) (*account.Record, error) {
	if m.SyncAccountFunc != nil {
		return m.SyncAccountFunc(ctx, principal, req)
	}
	return account.New("user-1", "cardholder", principal.Email), nil
}
