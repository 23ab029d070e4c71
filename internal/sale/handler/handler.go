package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brique/internal/platform/middleware"
	"brique/internal/sale/models"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/httputil"
)

// Service defines the sale operations the handler exposes.
type Service interface {
	Create(ctx context.Context, caller id.Address, assetID id.AssetID, beneficiary id.Address, pricePerUnit, minPurchase uint64) (*models.Sale, error)
	Activate(ctx context.Context, caller id.Address, saleID id.SaleID) error
	Deactivate(ctx context.Context, caller id.Address, saleID id.SaleID) error
	Buy(ctx context.Context, buyer id.Address, saleID id.SaleID, value uint64) (*models.Purchase, error)
	Withdraw(ctx context.Context, caller id.Address, saleID id.SaleID, to id.Address, amount uint64) error
	Get(ctx context.Context, saleID id.SaleID) (*models.Sale, error)
	Contribution(ctx context.Context, saleID id.SaleID, wallet id.Address) (uint64, error)
	InvestorStats(ctx context.Context, saleID id.SaleID, wallet id.Address) (*models.InvestorStats, error)
}

type Handler struct {
	service Service
	owner   id.Address
	logger  *slog.Logger
}

func New(service Service, owner id.Address, logger *slog.Logger) *Handler {
	return &Handler{service: service, owner: owner, logger: logger}
}

// RegisterAdmin mounts the owner-only sale creation.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/sales", h.HandleCreate)
}

// RegisterWallet mounts the caller-wallet routes; the router group must
// carry the wallet JWT middleware.
func (h *Handler) RegisterWallet(r chi.Router) {
	r.Post("/sales/{id}/activate", h.HandleActivate)
	r.Post("/sales/{id}/deactivate", h.HandleDeactivate)
	r.Post("/sales/{id}/buy", h.HandleBuy)
	r.Post("/sales/{id}/withdraw", h.HandleWithdraw)
}

// RegisterPublic mounts the unrestricted reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/sales/{id}", h.HandleGet)
	r.Get("/sales/{id}/contributions/{wallet}", h.HandleContribution)
	r.Get("/sales/{id}/investors/{wallet}", h.HandleInvestorStats)
}

// HandleCreate opens a sale for an existing asset.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSaleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	assetID, err := id.ParseAssetID(req.AssetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	beneficiary, err := id.ParseAddress(req.Beneficiary)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid beneficiary address"))
		return
	}

	sale, err := h.service.Create(ctx, h.owner, assetID, beneficiary, req.PricePerUnit, req.MinPurchase)
	if err != nil {
		h.logger.ErrorContext(ctx, "create sale failed", "error", err, "request_id", requestID, "asset_id", assetID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toSaleResponse(sale))
}

// HandleActivate opens the sale for purchases.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Activate, "activate sale failed")
}

// HandleDeactivate closes the sale.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.Deactivate, "deactivate sale failed")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.Address, id.SaleID) error, failMsg string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	if err := op(ctx, caller, saleID); err != nil {
		h.logger.ErrorContext(ctx, failMsg, "error", err, "request_id", requestID, "sale_id", saleID)
		httputil.WriteError(w, err)
		return
	}

	h.writeSale(w, ctx, saleID)
}

// HandleBuy settles a purchase for the authenticated wallet.
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	buyer := middleware.GetWallet(ctx)

	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BuyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	purchase, err := h.service.Buy(ctx, buyer, saleID, req.Value)
	if err != nil {
		h.logger.ErrorContext(ctx, "buy failed", "error", err, "request_id", requestID, "sale_id", saleID, "wallet", buyer.Hex())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &PurchaseResponse{
		SaleID:   saleID.String(),
		Wallet:   buyer.Hex(),
		Quantity: purchase.Quantity,
		Cost:     purchase.Cost,
		Change:   purchase.Change,
	})
}

// HandleWithdraw moves raised currency to the given address.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	caller := middleware.GetWallet(ctx)

	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	to, err := id.ParseAddress(req.To)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid withdrawal address"))
		return
	}

	if err := h.service.Withdraw(ctx, caller, saleID, to, req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "withdraw failed", "error", err, "request_id", requestID, "sale_id", saleID)
		httputil.WriteError(w, err)
		return
	}

	h.writeSale(w, ctx, saleID)
}

// HandleGet returns the sale.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	h.writeSale(w, r.Context(), saleID)
}

// HandleContribution returns the currency a wallet has contributed.
func (h *Handler) HandleContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	contributed, err := h.service.Contribution(ctx, saleID, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ContributionResponse{
		SaleID:      saleID.String(),
		Wallet:      wallet.Hex(),
		Contributed: contributed,
	})
}

// HandleInvestorStats returns contribution plus token position.
func (h *Handler) HandleInvestorStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	wallet, err := id.ParseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	stats, err := h.service.InvestorStats(ctx, saleID, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &InvestorStatsResponse{
		SaleID:       saleID.String(),
		Wallet:       wallet.Hex(),
		Contributed:  stats.Contributed,
		TokenBalance: stats.TokenBalance,
	})
}

func (h *Handler) saleID(w http.ResponseWriter, r *http.Request) (id.SaleID, bool) {
	saleID, err := id.ParseSaleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SaleID{}, false
	}
	return saleID, true
}

func (h *Handler) writeSale(w http.ResponseWriter, ctx context.Context, saleID id.SaleID) {
	sale, err := h.service.Get(ctx, saleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSaleResponse(sale))
}
