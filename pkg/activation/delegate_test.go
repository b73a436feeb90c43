package activation

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/wallet"
)

func TestDelegator_DelegatesEveryChain(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[account.Chain]string{}
	provider := &MockProvider{
		DelegateFunc: func(_ context.Context, req wallet.DelegateRequest) error {
			mu.Lock()
			seen[req.ChainType] = req.Address
			mu.Unlock()
			return nil
		},
	}

	d := NewDelegator(provider, zap.NewNop())
	result := d.Run(ctx, twoChainWallets(), nil, nil)

	if !result.OK() {
		t.Fatal("expected result OK")
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected 2 successes, got %+v", result)
	}

	mu.Lock()
	defer mu.Unlock()
	if seen[account.ChainEthereum] != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("ethereum wallet not delegated: %v", seen)
	}
	if _, ok := seen[account.ChainSolana]; !ok {
		t.Fatalf("solana wallet not delegated: %v", seen)
	}
}

func TestDelegator_SkipsDelegatedAndEmptyAddresses(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var calls []account.Chain
	provider := &MockProvider{
		DelegateFunc: func(_ context.Context, req wallet.DelegateRequest) error {
			mu.Lock()
			calls = append(calls, req.ChainType)
			mu.Unlock()
			return nil
		},
	}

	wallets := append(twoChainWallets(), wallet.Wallet{Chain: account.ChainBitcoin, Address: ""})
	skip := map[account.Chain]bool{account.ChainEthereum: true}

	d := NewDelegator(provider, zap.NewNop())
	result := d.Run(ctx, wallets, skip, nil)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != account.ChainSolana {
		t.Fatalf("expected only solana delegated, got %v", calls)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("expected 1 success, got %+v", result)
	}
}

func TestDelegator_FailureIsolatedPerChain(t *testing.T) {
	ctx := context.Background()

	provider := &MockProvider{
		DelegateFunc: func(_ context.Context, req wallet.DelegateRequest) error {
			if req.ChainType == account.ChainEthereum {
				return wallet.ErrDelegationRejected
			}
			return nil
		},
	}

	d := NewDelegator(provider, zap.NewNop())
	result := d.Run(ctx, twoChainWallets(), nil, nil)

	if !result.OK() {
		t.Fatal("expected partial success to be OK")
	}
	if len(result.Succeeded) != 1 || result.Succeeded[0] != account.ChainSolana {
		t.Fatalf("expected solana to succeed, got %+v", result)
	}
	if len(result.Failed) != 1 || result.Failed[0] != account.ChainEthereum {
		t.Fatalf("expected ethereum to fail, got %+v", result)
	}
}

func TestDelegator_CallbackFiresBeforeReturn(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var notified []account.Chain

	d := NewDelegator(&MockProvider{}, zap.NewNop())
	result := d.Run(ctx, twoChainWallets(), nil, func(chain account.Chain) {
		mu.Lock()
		notified = append(notified, chain)
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != len(result.Succeeded) {
		t.Fatalf("expected a callback per success, got %v vs %+v", notified, result)
	}
}

func TestResult_OK(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		want   bool
	}{
		{"nothing attempted", Result{}, true},
		{"all succeeded", Result{Succeeded: []account.Chain{account.ChainEthereum}}, true},
		{"partial", Result{
			Succeeded: []account.Chain{account.ChainEthereum},
			Failed:    []account.Chain{account.ChainSolana},
		}, true},
		{"all failed", Result{Failed: []account.Chain{account.ChainEthereum}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.OK(); got != tc.want {
				t.Fatalf("OK() = %v, want %v", got, tc.want)
			}
		})
	}
}
