// Package service implements the user-service business logic behind
// POST /users/me: create-or-sync of the card account keyed by the
// authenticated principal.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/internal/metrics"
	apperrors "github.com/cardlink-labs/cardlink-middleware/pkg/app/errors"
	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/accountstore"
	"github.com/cardlink-labs/cardlink-middleware/pkg/auth"
)

// defaultUserType is assigned to accounts created through the card app.
const defaultUserType = "cardholder"

// Store is the narrow data-access interface for the user service.
// Defined here to keep the service decoupled from accountstore
// implementation details.
type Store interface {
	GetByPrincipal(ctx context.Context, principal string) (*account.Record, error)
	Create(ctx context.Context, principal string, record *account.Record) error
	UpdateWalletAddresses(ctx context.Context, principal string, addrs map[account.Chain]string) error
}

// Service defines the user-service business logic
type Service interface {
	// SyncAccount creates the principal's account if it does not exist and
	// returns the canonical record. IsNewUser is true only on the call that
	// created the record.
	SyncAccount(ctx context.Context, principal *auth.Principal, req *account.SyncRequest) (*account.Record, error)
}

type accountService struct {
	store    Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new user service
func NewService(store Store, logger *zap.Logger) Service {
	return &accountService{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *accountService) SyncAccount(
	ctx context.Context,
	principal *auth.Principal,
	req *account.SyncRequest,
) (*account.Record, error) {
	if principal == nil || principal.Subject == "" {
		return nil, apperrors.UnAuthorizedError(nil, "principal required")
	}
	if req != nil {
		if err := s.validate.Struct(req); err != nil {
			return nil, apperrors.BadRequestError(err, "invalid sync request")
		}
	}

	record, err := s.store.GetByPrincipal(ctx, principal.Subject)
	if err == nil {
		return s.syncExisting(ctx, principal, record, req)
	}
	if !errors.Is(err, accountstore.ErrAccountNotFound) {
		metrics.UserSyncs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	return s.createAccount(ctx, principal, req)
}

// syncExisting records newly reported wallet addresses and returns the
// existing account with IsNewUser false.
func (s *accountService) syncExisting(
	ctx context.Context,
	principal *auth.Principal,
	record *account.Record,
	req *account.SyncRequest,
) (*account.Record, error) {
	newAddrs := missingAddresses(record, req)
	if len(newAddrs) > 0 {
		if err := s.store.UpdateWalletAddresses(ctx, principal.Subject, newAddrs); err != nil {
			return nil, fmt.Errorf("failed to record wallet addresses: %w", err)
		}
		for chain, addr := range newAddrs {
			record.WalletAddresses[chain] = addr
		}
	}

	record.IsNewUser = false
	metrics.UserSyncs.WithLabelValues("existing").Inc()
	return record, nil
}

func (s *accountService) createAccount(
	ctx context.Context,
	principal *auth.Principal,
	req *account.SyncRequest,
) (*account.Record, error) {
	email := principal.Email
	if req != nil && req.Email != "" {
		email = req.Email
	}

	record := account.New(uuid.NewString(), defaultUserType, email)
	if req != nil {
		for name, addr := range req.WalletAddresses {
			chain := account.Chain(name)
			if chain.Valid() && addr != "" {
				record.WalletAddresses[chain] = addr
			}
		}
	}

	err := s.store.Create(ctx, principal.Subject, record)
	if err == nil {
		s.logger.Info("Account created",
			zap.String("user_id", record.UserID),
			zap.String("principal_fp", auth.FingerprintPrincipal(principal.Subject)),
		)
		metrics.UserSyncs.WithLabelValues("created").Inc()
		return record, nil
	}

	// Two clients raced the first sync for this principal; the insert lost
	// to a unique violation. The record exists, so serve it as an existing
	// account.
	if errors.Is(err, accountstore.ErrAccountExists) {
		existing, getErr := s.store.GetByPrincipal(ctx, principal.Subject)
		if getErr != nil {
			metrics.UserSyncs.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to resolve create race: %w", getErr)
		}
		existing.IsNewUser = false
		metrics.UserSyncs.WithLabelValues("existing").Inc()
		return existing, nil
	}

	metrics.UserSyncs.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("failed to create account: %w", err)
}

// missingAddresses returns the addresses in req that the record does not
// have yet. Recorded addresses are never overwritten by a sync.
func missingAddresses(record *account.Record, req *account.SyncRequest) map[account.Chain]string {
	if req == nil || len(req.WalletAddresses) == 0 {
		return nil
	}

	missing := make(map[account.Chain]string)
	for name, addr := range req.WalletAddresses {
		chain := account.Chain(name)
		if !chain.Valid() || addr == "" {
			continue
		}
		if _, ok := record.Address(chain); !ok {
			missing[chain] = addr
		}
	}
	return missing
}
