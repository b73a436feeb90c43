package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/auth"
)

const serviceName = "UserService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the user Service.
// It logs method entry/exit, duration, errors, and sanitized request data.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// SyncAccount wraps the service method with logging
func (ls *logService) SyncAccount(
	ctx context.Context,
	principal *auth.Principal,
	req *account.SyncRequest,
) (record *account.Record, err error) {
	start := time.Now()

	fp := ""
	if principal != nil {
		fp = auth.FingerprintPrincipal(principal.Subject)
	}

	ls.logger.Info("SyncAccount started",
		zap.String("service", serviceName),
		zap.String("method", "SyncAccount"),
		zap.String("principal_fp", fp),
		zap.Int("reported_addresses", reportedAddressCount(req)),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("SyncAccount failed",
				zap.String("service", serviceName),
				zap.String("method", "SyncAccount"),
				zap.String("principal_fp", fp),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("SyncAccount completed",
				zap.String("service", serviceName),
				zap.String("method", "SyncAccount"),
				zap.String("principal_fp", fp),
				zap.String("user_id", record.UserID),
				zap.Bool("is_new_user", record.IsNewUser),
				zap.Int("wallet_addresses", len(record.WalletAddresses)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.SyncAccount(ctx, principal, req)
}

// reportedAddressCount counts the addresses in a sync request without
// logging the addresses themselves.
func reportedAddressCount(req *account.SyncRequest) int {
	if req == nil {
		return 0
	}
	return len(req.WalletAddresses)
}
