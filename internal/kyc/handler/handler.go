package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brique/internal/kyc/models"
	"brique/internal/platform/middleware"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/httputil"
)

// Service defines the KYC operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, wallet id.Address, fingerprint id.Fingerprint) (*models.Request, error)
	Approve(ctx context.Context, caller, wallet id.Address) error
	Reject(ctx context.Context, caller, wallet id.Address) error
	Get(ctx context.Context, wallet id.Address) (*models.Request, error)
	PendingCount(ctx context.Context) (int, error)
}

type Handler struct {
	service Service
	owner   id.Address
	logger  *slog.Logger
}

func New(service Service, owner id.Address, logger *slog.Logger) *Handler {
	return &Handler{service: service, owner: owner, logger: logger}
}

// RegisterWallet mounts the caller-wallet routes; the router group must
// carry the wallet JWT middleware.
func (h *Handler) RegisterWallet(r chi.Router) {
	r.Post("/kyc/requests", h.HandleSubmit)
}

// RegisterAdmin mounts the owner-only decisions.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/kyc/requests/{wallet}/approve", h.HandleApprove)
	r.Post("/kyc/requests/{wallet}/reject", h.HandleReject)
}

// RegisterPublic mounts the unrestricted reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/kyc/requests/pending/count", h.HandlePendingCount)
	r.Get("/kyc/requests/{wallet}", h.HandleGet)
}

// HandleSubmit records a fingerprint for the authenticated wallet.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	fp, err := id.ParseFingerprint(req.Fingerprint)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid fingerprint"))
		return
	}

	created, err := h.service.Submit(ctx, caller, fp)
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc submit failed", "error", err, "request_id", requestID, "wallet", caller.Hex())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

// HandleApprove transitions a request to APPROVED.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve, "kyc approve failed")
}

// HandleReject transitions a request to REJECTED.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject, "kyc reject failed")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Address, id.Address) error, failMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	if err := op(ctx, h.owner, wallet); err != nil {
		h.logger.ErrorContext(ctx, failMsg, "error", err, "request_id", requestID, "wallet", wallet.Hex())
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Get(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

// HandleGet returns the request for a wallet.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	req, err := h.service.Get(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

// HandlePendingCount returns the number of undecided requests.
func (h *Handler) HandlePendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.PendingCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &PendingCountResponse{Pending: n})
}
