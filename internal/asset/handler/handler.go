package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brique/internal/asset/models"
	"brique/internal/platform/middleware"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/httputil"
)

// Service defines the asset-ledger operations the handler exposes.
type Service interface {
	Mint(ctx context.Context, caller id.Address, assetID id.AssetID, to id.Address, amount uint64) error
	Transfer(ctx context.Context, from id.Address, assetID id.AssetID, to id.Address, amount uint64) error
	Burn(ctx context.Context, caller id.Address, assetID id.AssetID, from id.Address, amount uint64) error
	Pause(ctx context.Context, caller id.Address, assetID id.AssetID) error
	Unpause(ctx context.Context, caller id.Address, assetID id.AssetID) error
	SetSaleContract(ctx context.Context, caller id.Address, assetID id.AssetID, saleID id.SaleID) error
	Get(ctx context.Context, assetID id.AssetID) (*models.Asset, error)
	Balance(ctx context.Context, assetID id.AssetID, wallet id.Address) (uint64, error)
	Holders(ctx context.Context, assetID id.AssetID) ([]models.Holding, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterWallet mounts the caller-wallet mutations; the router group must
// carry the wallet JWT middleware. Role checks live in the service.
func (h *Handler) RegisterWallet(r chi.Router) {
	r.Post("/assets/{id}/mint", h.HandleMint)
	r.Post("/assets/{id}/transfer", h.HandleTransfer)
	r.Post("/assets/{id}/burn", h.HandleBurn)
	r.Post("/assets/{id}/pause", h.HandlePause)
	r.Post("/assets/{id}/unpause", h.HandleUnpause)
	r.Post("/assets/{id}/sale", h.HandleSetSale)
}

// RegisterPublic mounts the unrestricted reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/assets/{id}", h.HandleGet)
	r.Get("/assets/{id}/holders", h.HandleHolders)
	r.Get("/assets/{id}/balances/{wallet}", h.HandleBalance)
}

// HandleMint issues shares to a wallet.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.Mint, "mint failed")
}

// HandleBurn removes shares from a wallet.
func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.Burn, "burn failed")
}

// move handles the shared shape of mint and burn: caller, asset, counterparty
// wallet and amount.
func (h *Handler) move(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Address, id.AssetID, id.Address, uint64) error, failMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MoveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	if err := op(ctx, caller, assetID, wallet, req.Amount); err != nil {
		h.logger.ErrorContext(ctx, failMsg, "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	h.writeAsset(w, ctx, assetID)
}

// HandleTransfer moves shares from the authenticated wallet.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MoveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	to, err := id.ParseAddress(req.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	if err := h.service.Transfer(ctx, caller, assetID, to, req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "transfer failed", "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	balance, err := h.service.Balance(ctx, assetID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &BalanceResponse{
		AssetID: assetID.String(),
		Wallet:  caller.Hex(),
		Balance: balance,
	})
}

// HandlePause halts transfers on the ledger.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Pause, "pause failed")
}

// HandleUnpause resumes transfers.
func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Unpause, "unpause failed")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Address, id.AssetID) error, failMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	if err := op(ctx, caller, assetID); err != nil {
		h.logger.ErrorContext(ctx, failMsg, "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	h.writeAsset(w, ctx, assetID)
}

// HandleSetSale links the primary sale allowed to mint against this ledger.
func (h *Handler) HandleSetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetSaleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	saleID, err := id.ParseSaleID(req.SaleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetSaleContract(ctx, caller, assetID, saleID); err != nil {
		h.logger.ErrorContext(ctx, "set sale failed", "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	h.writeAsset(w, ctx, assetID)
}

// HandleGet returns the asset ledger.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	h.writeAsset(w, r.Context(), assetID)
}

// HandleBalance returns a wallet's position; unknown wallets hold zero.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	balance, err := h.service.Balance(ctx, assetID, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &BalanceResponse{
		AssetID: assetID.String(),
		Wallet:  wallet.Hex(),
		Balance: balance,
	})
}

// HandleHolders returns all non-zero positions, largest first.
func (h *Handler) HandleHolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID, ok := h.assetID(w, r)
	if !ok {
		return
	}

	holders, err := h.service.Holders(ctx, assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toHoldersResponse(assetID, holders))
}

func (h *Handler) assetID(w http.ResponseWriter, r *http.Request) (id.AssetID, bool) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.AssetID{}, false
	}
	return assetID, true
}

func (h *Handler) writeAsset(w http.ResponseWriter, ctx context.Context, assetID id.AssetID) {
	asset, err := h.service.Get(ctx, assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssetResponse(asset))
}
