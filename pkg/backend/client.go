// Package backend implements the REST client for the card product's user
// service. The only operation the activation workflow needs is the
// create-or-sync call, POST /users/me.
package backend

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
	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
)

const (
	syncPath = "/users/me"

	// identityTokenHeader carries the caller's identity token; the backend
	// validates it against the identity provider's JWKS.
	identityTokenHeader = "x-identity-token"

	// maxResponseBytes bounds response reads; envelopes are small.
	maxResponseBytes = 1 << 20
)

// Options configures the client. Zero values are filled from defaults.
type Options struct {
	RequestTimeout time.Duration `default:"30s"`
	UserAgent      string        `default:"cardlink-middleware/1.0"`
}

// Client calls the user service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
	logger     *zap.Logger
}

// NewClient creates a user-service client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("apply client defaults: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.RequestTimeout},
		opts:       opts,
		logger:     logger,
	}, nil
}

// SyncUser issues the create-or-sync call for the principal asserted by the
// identity token, returning the canonical account record.
//
// Failure modes are kept distinct for the activation workflow:
//   - *NetworkError: the backend could not be reached at all
//   - *EnvelopeError: a well-formed envelope with success:false or no data
//   - ErrInvalidResponse (wrapped): the body was not a valid envelope
func (c *Client) SyncUser(ctx context.Context, token string, req *account.SyncRequest) (*account.Record, error) {
	var payload io.Reader
	if req != nil {
		body, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal sync request: %w", err)
		}
		payload = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+syncPath, payload)
	if err != nil {
		return nil, fmt.Errorf("create sync request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	httpReq.Header.Set(identityTokenHeader, token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	var envelope account.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Log the raw body for diagnosis; it is not an envelope.
		c.logger.Error("Malformed user-service response",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if !envelope.Success || envelope.Data == nil {
		statusCode := envelope.StatusCode
		if statusCode == 0 {
			statusCode = resp.StatusCode
		}
		return nil, &EnvelopeError{
			StatusCode: statusCode,
			Message:    envelope.Message,
		}
	}

	record := account.FromPayload(envelope.Data)
	c.logger.Debug("User sync succeeded",
		zap.String("user_id", record.UserID),
		zap.Bool("is_new_user", record.IsNewUser),
		zap.Int("wallets", len(record.WalletAddresses)),
	)
	return record, nil
}
