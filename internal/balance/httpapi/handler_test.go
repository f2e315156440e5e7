package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/balance/domain"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
)

type stubService struct {
	balance     decimal.Decimal
	balanceErr  error
	withdrawErr error
}

func (s *stubService) GetOrCreateBalance(_ context.Context, userID uuid.UUID) (domain.Balance, error) {
	if s.balanceErr != nil {
		return domain.Balance{}, s.balanceErr
	}
	return domain.Balance{UserID: userID, Amount: s.balance}, nil
}

func (s *stubService) Withdraw(context.Context, uuid.UUID, decimal.Decimal) error {
	return s.withdrawErr
}

var testMetrics = metrics.NewServerMetrics("balance_test")

func newTestMux(svc *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewHandler(svc, log, testMetrics).Register(mux)
	return mux
}

func TestGetBalance(t *testing.T) {
	t.Run("success -> 200 with amount", func(t *testing.T) {
		mux := newTestMux(&stubService{balance: decimal.RequireFromString("1000.00")})

		req := httptest.NewRequest(http.MethodGet, "/balance/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d", rec.Code)
		}
		var body struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Amount.Equal(decimal.RequireFromString("1000.00")) {
			t.Fatalf("got amount %s", body.Amount)
		}
	})

	t.Run("storage failure -> 500", func(t *testing.T) {
		mux := newTestMux(&stubService{balanceErr: errors.New("db down")})

		req := httptest.NewRequest(http.MethodGet, "/balance/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d", rec.Code)
		}
	})

	t.Run("bad user id -> 500", func(t *testing.T) {
		mux := newTestMux(&stubService{})

		req := httptest.NewRequest(http.MethodGet, "/balance/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d", rec.Code)
		}
	})
}

func TestPostPayment(t *testing.T) {
	post := func(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/payment/"+uuid.NewString(), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("success -> 200 empty body", func(t *testing.T) {
		rec := post(newTestMux(&stubService{}), `{"amount": 35.00}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty body, got %q", rec.Body.String())
		}
	})

	t.Run("insufficient funds -> 402", func(t *testing.T) {
		rec := post(newTestMux(&stubService{withdrawErr: domain.ErrInsufficientFunds}), `{"amount": 35.00}`)
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("got status %d", rec.Code)
		}
	})

	t.Run("unknown account -> 404", func(t *testing.T) {
		rec := post(newTestMux(&stubService{withdrawErr: domain.ErrAccountNotFound}), `{"amount": 35.00}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("got status %d", rec.Code)
		}
	})

	t.Run("other failure -> 500", func(t *testing.T) {
		rec := post(newTestMux(&stubService{withdrawErr: errors.New("db down")}), `{"amount": 35.00}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d", rec.Code)
		}
	})

	t.Run("invalid json -> 500", func(t *testing.T) {
		rec := post(newTestMux(&stubService{}), `{`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d", rec.Code)
		}
	})
}
