package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	apperrors "github.com/cardlink-labs/cardlink-middleware/pkg/app/errors"
	apphttp "github.com/cardlink-labs/cardlink-middleware/pkg/app/http"
	"github.com/cardlink-labs/cardlink-middleware/pkg/auth"
)

// identityHeader carries the identity token issued by the wallet provider.
const identityHeader = "x-identity-token"

// TokenValidator verifies identity tokens and extracts the principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Principal, error)
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service   Service
	validator TokenValidator
	logger    *zap.Logger
}

// RegisterRoutes registers user-service endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, validator TokenValidator, logger *zap.Logger) {
	h := &HTTP{
		service:   service,
		validator: validator,
		logger:    logger,
	}

	r.Post("/users/me", apphttp.HandleError(h.syncMe))
}

// syncMe handles POST /users/me: authenticate the identity token, then
// create-or-sync the caller's account.
func (h *HTTP) syncMe(w http.ResponseWriter, r *http.Request) error {
	tokenString := r.Header.Get(identityHeader)
	if tokenString == "" {
		return apperrors.UnAuthorizedError(nil, "identity token required")
	}

	principal, err := h.validator.ValidateToken(tokenString)
	if err != nil {
		return apperrors.UnAuthorizedError(err, "invalid identity token")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	// The body is optional; clients that have no addresses yet send none.
	var req *account.SyncRequest
	if len(body) > 0 {
		req = &account.SyncRequest{}
		if err := json.Unmarshal(body, req); err != nil {
			return apperrors.BadRequestError(err, "invalid JSON")
		}
	}

	record, err := h.service.SyncAccount(auth.WithPrincipal(r.Context(), principal), principal, req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &account.Envelope{
		Success:    true,
		StatusCode: http.StatusOK,
		Data:       account.ToPayload(record),
	})
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
