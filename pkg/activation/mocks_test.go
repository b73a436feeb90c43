package activation

import (
	"context"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/wallet"
)

// MockTokenSource is a mock implementation of identity.Source
type MockTokenSource struct {
	TokenFunc func(ctx context.Context) (string, error)
}

func (m *MockTokenSource) Token(ctx context.Context) (string, error) {
	if m.TokenFunc != nil {
		return m.TokenFunc(ctx)
	}
	return "test-token", nil
}

// MockSyncClient is a mock implementation of SyncClient
type MockSyncClient struct {
	SyncUserFunc func(ctx context.Context, token string, req *account.SyncRequest) (*account.Record, error)
}

func (m *MockSyncClient) SyncUser(
	ctx context.Context,
	token string,
	req *account.SyncRequest,
) (*account.Record, error) {
	if m.SyncUserFunc != nil {
		return m.SyncUserFunc(ctx, token, req)
	}
	return account.New("user-1", "cardholder", "user@example.com"), nil
}

// MockProvider is a mock implementation of wallet.Provider
type MockProvider struct {
	WalletsFunc  func(ctx context.Context) ([]wallet.Wallet, error)
	DelegateFunc func(ctx context.Context, req wallet.DelegateRequest) error
}

func (m *MockProvider) Wallets(ctx context.Context) ([]wallet.Wallet, error) {
	if m.WalletsFunc != nil {
		return m.WalletsFunc(ctx)
	}
	return nil, nil
}

func (m *MockProvider) Delegate(ctx context.Context, req wallet.DelegateRequest) error {
	if m.DelegateFunc != nil {
		return m.DelegateFunc(ctx, req)
	}
	return nil
}

func twoChainWallets() []wallet.Wallet {
	return []wallet.Wallet{
		{Chain: account.ChainEthereum, Address: "0x1111111111111111111111111111111111111111"},
		{Chain: account.ChainSolana, Address: "So11111111111111111111111111111111111111112"},
	}
}
