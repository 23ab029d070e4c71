package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brique/internal/identity/models"
	"brique/internal/platform/middleware"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/httputil"
)

// Service defines the identity operations the handler exposes.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Verify(ctx context.Context, caller, wallet id.Address) error
	Revoke(ctx context.Context, caller, wallet id.Address) error
	IsVerified(ctx context.Context, wallet id.Address) (bool, error)
	Get(ctx context.Context, wallet id.Address) (*models.VerificationRecord, error)
	VerifiedCount(ctx context.Context) (int, error)
}

type Handler struct {
	service Service
	owner   id.Address
	logger  *slog.Logger
}

// New builds the handler. Admin-authenticated routes act as the platform
// owner, whose address is fixed at deploy time.
func New(service Service, owner id.Address, logger *slog.Logger) *Handler {
	return &Handler{service: service, owner: owner, logger: logger}
}

// RegisterAdmin mounts the owner-only mutations. The router group must carry
// the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/identity/verify", h.HandleVerify)
	r.Post("/identity/revoke", h.HandleRevoke)
}

// RegisterPublic mounts the unrestricted reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/identity/count", h.HandleCount)
	r.Get("/identity/{wallet}", h.HandleGet)
	r.Get("/identity/{wallet}/verified", h.HandleIsVerified)
}

// HandleVerify whitelists a wallet.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[WalletRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	if err := h.service.Verify(ctx, h.owner, wallet); err != nil {
		h.logger.ErrorContext(ctx, "verify wallet failed", "error", err, "request_id", requestID, "wallet", wallet.Hex())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &VerificationResponse{Wallet: wallet.Hex(), Verified: true})
}

// HandleRevoke removes a wallet from the whitelist.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[WalletRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	if err := h.service.Revoke(ctx, h.owner, wallet); err != nil {
		h.logger.ErrorContext(ctx, "revoke wallet failed", "error", err, "request_id", requestID, "wallet", wallet.Hex())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &VerificationResponse{Wallet: wallet.Hex(), Verified: false})
}

// HandleGet returns the full verification record.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	rec, err := h.service.Get(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleIsVerified returns the bare verification flag. Unknown wallets read
// as unverified rather than 404, matching the registry's lookup semantics.
func (h *Handler) HandleIsVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	verified, err := h.service.IsVerified(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &VerificationResponse{Wallet: wallet.Hex(), Verified: verified})
}

// HandleCount returns the number of verified wallets.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.VerifiedCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &CountResponse{Verified: n})
}
