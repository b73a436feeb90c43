package activation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/internal/metrics"
	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/identity"
)

// SyncClient is the narrow backend interface the sync stage needs.
// Defined here to keep the workflow decoupled from the HTTP client.
type SyncClient interface {
	SyncUser(ctx context.Context, token string, req *account.SyncRequest) (*account.Record, error)
}

// Syncer runs the account sync stage: obtain an identity token, issue one
// create-or-sync call, normalize the result. It holds no mutable state and
// never retries internally; retries are the caller's decision.
type Syncer struct {
	tokens  identity.Source
	backend SyncClient
	logger  *zap.Logger
}

// NewSyncer creates the sync stage over the given collaborators.
func NewSyncer(tokens identity.Source, backend SyncClient, logger *zap.Logger) *Syncer {
	return &Syncer{
		tokens:  tokens,
		backend: backend,
		logger:  logger,
	}
}

// Run performs one sync call for the current principal. The request may
// carry wallet addresses already known from the provider so the backend can
// record them.
//
// A backend duplicate-key rejection is benign: the record already exists, so
// Run returns a minimal existing-user record instead of an error.
func (s *Syncer) Run(ctx context.Context, req *account.SyncRequest) (*account.Record, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain identity token: %w", err)
	}

	start := time.Now()
	record, err := s.backend.SyncUser(ctx, token, req)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if isDuplicateUser(err) {
			s.logger.Info("User already exists, continuing as existing user")
			return &account.Record{
				WalletAddresses: make(map[account.Chain]string),
				IsNewUser:       false,
			}, nil
		}
		return nil, err
	}

	s.logger.Info("User synced",
		zap.String("user_id", record.UserID),
		zap.Bool("is_new_user", record.IsNewUser),
	)
	return record, nil
}
