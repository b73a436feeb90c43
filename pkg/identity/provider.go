package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cardlink-labs/cardlink-middleware/pkg/config"
)

const (
	defaultExpiryLeeway = 60 * time.Second
	defaultHTTPTimeout  = 10 * time.Second

	// If the token endpoint doesn't give expires_in, use a conservative fallback.
	fallbackTokenTTL = 5 * time.Minute

	// Limit error-body reads so we don't accidentally slurp huge responses.
	maxErrBodyBytes = 4096
)

// EndpointSource implements Source against the identity provider's token
// endpoint, caching the token until shortly before expiry.
type EndpointSource struct {
	cfg        *config.TokenSourceConfig
	httpClient *http.Client
	leeway     time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewEndpointSource creates a new EndpointSource instance.
func NewEndpointSource(cfg *config.TokenSourceConfig, httpClient *http.Client) *EndpointSource {
	leeway := cfg.ExpiryLeeway
	if leeway == 0 {
		leeway = defaultExpiryLeeway
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &EndpointSource{
		cfg:        cfg,
		httpClient: httpClient,
		leeway:     leeway,
	}
}

// Token implements Source. A failure to reach the token endpoint or a
// malformed response is reported as ErrTokenUnavailable so callers can
// classify it uniformly.
func (s *EndpointSource) Token(ctx context.Context) (string, error) {
	if s.cfg.TokenURL == "" {
		return "", fmt.Errorf("%w: token endpoint not configured", ErrTokenUnavailable)
	}

	// Fast path: return cached token if still valid.
	s.mu.Lock()
	if s.token != "" && time.Now().Before(s.expiry) {
		tok := s.token
		s.mu.Unlock()
		return tok, nil
	}
	s.mu.Unlock()

	// Fetch without holding the mutex.
	token, expiry, err := s.fetchToken(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}

	s.mu.Lock()
	s.token = token
	s.expiry = expiry
	s.mu.Unlock()

	return token, nil
}

func (s *EndpointSource) fetchToken(ctx context.Context) (string, time.Time, error) {
	payload := map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"audience":      s.cfg.Audience,
		"grant_type":    "client_credentials",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", time.Time{}, err
		}
		return "", time.Time{}, fmt.Errorf("call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, readHTTPError(resp)
	}

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}

	return tr.AccessToken, computeRefreshBy(time.Now(), tr.ExpiresIn, s.leeway), nil
}

func readHTTPError(resp *http.Response) error {
	limited := io.LimitReader(resp.Body, maxErrBodyBytes)

	b, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("token endpoint returned %d and body read failed: %w", resp.StatusCode, err)
	}

	return fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(b))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func decodeTokenResponse(r io.Reader) (tokenResponse, error) {
	var tr tokenResponse

	dec := json.NewDecoder(r)
	if err := dec.Decode(&tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token response missing access_token")
	}

	return tr, nil
}

// computeRefreshBy returns a "refresh-by" timestamp, leeway-adjusted.
func computeRefreshBy(now time.Time, expiresInSeconds int, leeway time.Duration) time.Time {
	if expiresInSeconds <= 0 {
		return now.Add(fallbackTokenTTL)
	}

	exp := now.Add(time.Duration(expiresInSeconds) * time.Second)
	refreshBy := exp.Add(-leeway)

	// If leeway overshoots, fall back to a reasonable midpoint.
	if refreshBy.Before(now) {
		return now.Add(time.Duration(expiresInSeconds/2) * time.Second)
	}

	return refreshBy
}
