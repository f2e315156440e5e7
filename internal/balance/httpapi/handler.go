package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/balance/domain"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
)

// BalanceService is the application surface the wire layer maps onto.
type BalanceService interface {
	GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (domain.Balance, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

// Handler exposes the wire contract:
//
//	GET  /balance/{userId}  -> 200 {"amount": <decimal>} | 500
//	POST /payment/{userId}  -> 200 | 402 | 404 | 500
type Handler struct {
	svc BalanceService
	log *slog.Logger
	m   *metrics.ServerMetrics
}

func NewHandler(svc BalanceService, log *slog.Logger, m *metrics.ServerMetrics) *Handler {
	return &Handler{svc: svc, log: log, m: m}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /balance/{userId}", h.getBalance)
	mux.HandleFunc("POST /payment/{userId}", h.postPayment)
}

type balanceResponse struct {
	Amount json.Number `json:"amount"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.fail(w, "get_balance", start, err)
		return
	}

	b, err := h.svc.GetOrCreateBalance(r.Context(), userID)
	if err != nil {
		h.fail(w, "get_balance", start, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(balanceResponse{Amount: json.Number(b.Amount.String())})
	h.m.Observe("get_balance", http.StatusOK, start)
}

func (h *Handler) postPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.fail(w, "post_payment", start, err)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "post_payment", start, err)
		return
	}

	err = h.svc.Withdraw(r.Context(), userID, req.Amount)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
		h.m.Observe("post_payment", http.StatusOK, start)
	case errors.Is(err, domain.ErrInsufficientFunds):
		w.WriteHeader(http.StatusPaymentRequired)
		h.m.Observe("post_payment", http.StatusPaymentRequired, start)
	case errors.Is(err, domain.ErrAccountNotFound):
		w.WriteHeader(http.StatusNotFound)
		h.m.Observe("post_payment", http.StatusNotFound, start)
	default:
		h.fail(w, "post_payment", start, err)
	}
}

// fail collapses every remaining failure to the contract's generic 500.
func (h *Handler) fail(w http.ResponseWriter, handler string, start time.Time, err error) {
	h.log.Error("request failed", slog.String("handler", handler), slog.Any("err", err))
	w.WriteHeader(http.StatusInternalServerError)
	h.m.Observe(handler, http.StatusInternalServerError, start)
}
