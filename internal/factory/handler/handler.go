package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	assetmodels "brique/internal/asset/models"
	"brique/internal/factory/models"
	"brique/internal/platform/middleware"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/httputil"
)

// Service defines the factory operations the handler exposes.
type Service interface {
	CreateAsset(ctx context.Context, caller id.Address, name, symbol string, maxSupply uint64, issuer id.Address) (*assetmodels.Asset, error)
	Activate(ctx context.Context, caller id.Address, assetID id.AssetID) error
	Deactivate(ctx context.Context, caller id.Address, assetID id.AssetID) error
	Count(ctx context.Context) (int, error)
	ByIndex(ctx context.Context, position int) (*models.Entry, error)
	ByIssuer(ctx context.Context, issuer id.Address) ([]models.Entry, error)
	List(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, assetID id.AssetID) (*models.Entry, error)
}

type Handler struct {
	service Service
	owner   id.Address
	logger  *slog.Logger
}

func New(service Service, owner id.Address, logger *slog.Logger) *Handler {
	return &Handler{service: service, owner: owner, logger: logger}
}

// RegisterAdmin mounts the owner-only mutations.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/factory/assets", h.HandleCreateAsset)
	r.Post("/factory/assets/{id}/activate", h.HandleActivate)
	r.Post("/factory/assets/{id}/deactivate", h.HandleDeactivate)
}

// RegisterPublic mounts the unrestricted reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/factory/assets", h.HandleList)
	r.Get("/factory/assets/{id}", h.HandleGet)
	r.Get("/factory/index/{position}", h.HandleByIndex)
	r.Get("/factory/issuers/{wallet}/assets", h.HandleByIssuer)
}

// HandleCreateAsset deploys and indexes a fresh asset ledger.
func (h *Handler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateAssetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid issuer address"))
		return
	}

	asset, err := h.service.CreateAsset(ctx, h.owner, req.Name, req.Symbol, req.MaxSupply, issuer)
	if err != nil {
		h.logger.ErrorContext(ctx, "create asset failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCreatedResponse(asset))
}

// HandleActivate restores an asset's visibility flag.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Activate, "activate asset failed")
}

// HandleDeactivate soft-deletes an asset from the catalog.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Deactivate, "deactivate asset failed")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Address, id.AssetID) error, failMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	assetID, err := id.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(ctx, h.owner, assetID); err != nil {
		h.logger.ErrorContext(ctx, failMsg, "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Get(ctx, assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// HandleList returns the full index with its count.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(entries))
}

// HandleGet returns one index entry.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID, err := id.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Get(ctx, assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// HandleByIndex returns the entry at an append position.
func (h *Handler) HandleByIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid index position"))
		return
	}

	entry, err := h.service.ByIndex(ctx, position)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// HandleByIssuer returns every entry an issuer owns.
func (h *Handler) HandleByIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuer, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	entries, err := h.service.ByIssuer(ctx, issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(entries))
}
