package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

const (
	walletsPath  = "/v1/wallets"
	delegatePath = "/v1/wallets/delegate"

	maxResponseBytes = 1 << 20
)

// Options configures the HTTP provider client. Zero values are filled from defaults.
type Options struct {
	RequestTimeout time.Duration `default:"30s"`
}

// HTTPProvider implements Provider against the custodial provider's REST API.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPProvider creates a provider client for the given base URL.
func NewHTTPProvider(baseURL, apiKey string, logger *zap.Logger, opts Options) (*HTTPProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("wallet provider base URL is required")
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("apply provider defaults: %w", err)
	}

	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: opts.RequestTimeout},
		logger:     logger,
	}, nil
}

// walletsResponse is the provider's enumeration shape: an address list per
// chain, first element primary.
type walletsResponse struct {
	Wallets map[string][]struct {
		Address string `json:"address"`
	} `json:"wallets"`
}

// Wallets implements Provider.
func (p *HTTPProvider) Wallets(ctx context.Context) ([]Wallet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+walletsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create wallets request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wallets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet provider returned %d", resp.StatusCode)
	}

	var parsed walletsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode wallets response: %w", err)
	}

	wallets := make([]Wallet, 0, len(parsed.Wallets))
	for name, entries := range parsed.Wallets {
		chain := account.Chain(name)
		if !chain.Valid() || len(entries) == 0 {
			continue
		}
		addr := entries[0].Address
		if addr == "" {
			continue
		}
		if chain == account.ChainEthereum && !common.IsHexAddress(addr) {
			p.logger.Warn("Dropping malformed ethereum wallet address",
				zap.String("address", addr))
			continue
		}
		wallets = append(wallets, Wallet{Chain: chain, Address: addr})
	}
	return wallets, nil
}

// Delegate implements Provider.
func (p *HTTPProvider) Delegate(ctx context.Context, dreq DelegateRequest) error {
	if dreq.ChainType == account.ChainEthereum && !common.IsHexAddress(dreq.Address) {
		return fmt.Errorf("invalid ethereum address %q", dreq.Address)
	}

	body, err := json.Marshal(map[string]string{
		"address":   dreq.Address,
		"chainType": string(dreq.ChainType),
	})
	if err != nil {
		return fmt.Errorf("marshal delegate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+delegatePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create delegate request: %w", err)
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delegate %s wallet: %w", dreq.ChainType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s wallet, provider returned %d",
			ErrDelegationRejected, dreq.ChainType, resp.StatusCode)
	}

	p.logger.Debug("Wallet delegated",
		zap.String("chain", dreq.ChainType.String()),
	)
	return nil
}

func (p *HTTPProvider) setHeaders(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}
