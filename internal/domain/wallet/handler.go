package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/errorhandler"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
	"github.com/learnhub/learnhub-api/internal/pkg/validator"
)

// Handler handles wallet HTTP requests
type Handler struct {
	svc *Service
}

type depositRequest struct {
	UserID      uuid.UUID       `json:"userId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Provider    string          `json:"provider" validate:"max=40"`
	ReferenceID string          `json:"referenceId" validate:"max=120"`
}

type purchaseRequest struct {
	CourseID uuid.UUID `json:"courseId" validate:"required"`
}

type redeemRequest struct {
	VoucherURL string `json:"voucherUrl" validate:"required,max=2048"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balance handles GET /wallet/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetBalance(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, map[string]interface{}{"balance": balance})
}

// Deposit handles POST /wallet/deposit (admin top-up of any user's wallet)
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.Deposit(r.Context(), req.UserID, DepositInput{
		Amount:      req.Amount,
		Provider:    req.Provider,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, result)
}

// Purchase handles POST /wallet/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.PurchaseCourse(r.Context(), middleware.GetUserID(r.Context()), req.CourseID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, result)
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)
	items, total, err := h.svc.Transactions(r.Context(), middleware.GetUserID(r.Context()), page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, items, response.NewMeta(page, limit, total))
}

// RedeemVoucher handles POST /wallet/vouchers/redeem
func (h *Handler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.RedeemVoucher(r.Context(), middleware.GetUserID(r.Context()), req.VoucherURL)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, result)
}

// ReconcileVouchers handles POST /wallet/vouchers/reconcile (admin)
func (h *Handler) ReconcileVouchers(w http.ResponseWriter, r *http.Request) {
	credited, err := h.svc.ReconcileVouchers(r.Context())
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, map[string]interface{}{"credited": credited})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)
	r.With(middleware.RequireAdmin()).Post("/deposit", h.Deposit)
	r.Post("/purchase", h.Purchase)
	r.Post("/vouchers/redeem", h.RedeemVoucher)
	r.With(middleware.RequireAdmin()).Post("/vouchers/reconcile", h.ReconcileVouchers)

	return r
}
