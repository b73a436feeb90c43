package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

func newTestProvider(t *testing.T, url string) *HTTPProvider {
	t.Helper()
	p, err := NewHTTPProvider(url, "api-key", zap.NewNop(), Options{})
	if err != nil {
		t.Fatalf("NewHTTPProvider() failed: %v", err)
	}
	return p
}

func TestHTTPProvider_Wallets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/wallets" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer api-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		_, _ = w.Write([]byte(`{
			"wallets": {
				"ethereum": [
					{"address": "0x52908400098527886E0F7030069857D2E4169EE7"},
					{"address": "0x8617E340B3D01FA5F11F306F4090FD50E238070D"}
				],
				"solana":   [{"address": "So11111111111111111111111111111111111111112"}],
				"bitcoin":  [],
				"dogecoin": [{"address": "DDogepartyxxxxxxxxxxxxxxxxxxw1dfzr"}]
			}
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	wallets, err := p.Wallets(context.Background())
	if err != nil {
		t.Fatalf("Wallets() failed: %v", err)
	}

	// Only the primary address per supported chain survives; unknown chains
	// and empty lists are dropped.
	if len(wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %+v", wallets)
	}
	byChain := map[account.Chain]string{}
	for _, w := range wallets {
		byChain[w.Chain] = w.Address
	}
	if byChain[account.ChainEthereum] != "0x52908400098527886E0F7030069857D2E4169EE7" {
		t.Errorf("expected primary ethereum address, got %q", byChain[account.ChainEthereum])
	}
	if byChain[account.ChainSolana] == "" {
		t.Error("expected solana wallet")
	}
}

func TestHTTPProvider_Wallets_DropsMalformedEthereumAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"wallets": {"ethereum": [{"address": "not-an-address"}]}}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	wallets, err := p.Wallets(context.Background())
	if err != nil {
		t.Fatalf("Wallets() failed: %v", err)
	}
	if len(wallets) != 0 {
		t.Fatalf("expected malformed address dropped, got %+v", wallets)
	}
}

func TestHTTPProvider_Wallets_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	if _, err := p.Wallets(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestHTTPProvider_Delegate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/wallets/delegate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["chainType"] != "solana" {
			t.Errorf("expected chainType solana, got %q", body["chainType"])
		}
		if body["address"] == "" {
			t.Error("expected address in body")
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	err := p.Delegate(context.Background(), DelegateRequest{
		Address:   "So11111111111111111111111111111111111111112",
		ChainType: account.ChainSolana,
	})
	if err != nil {
		t.Fatalf("Delegate() failed: %v", err)
	}
}

func TestHTTPProvider_Delegate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	err := p.Delegate(context.Background(), DelegateRequest{
		Address:   "0x52908400098527886E0F7030069857D2E4169EE7",
		ChainType: account.ChainEthereum,
	})
	if !errors.Is(err, ErrDelegationRejected) {
		t.Fatalf("expected ErrDelegationRejected, got %v", err)
	}
}

func TestHTTPProvider_Delegate_InvalidEthereumAddress(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	err := p.Delegate(context.Background(), DelegateRequest{
		Address:   "nope",
		ChainType: account.ChainEthereum,
	})
	if err == nil {
		t.Fatal("expected error for invalid ethereum address")
	}
	if called {
		t.Fatal("expected validation before the provider is called")
	}
}
