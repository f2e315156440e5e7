package payhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
)

// Client speaks the balance service's wire contract:
//
//	GET  /balance/{userId}  -> 200 {"amount": <decimal>} | 500
//	POST /payment/{userId}  -> 200 | 402 | 404 | 500
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// paymentRequest carries the amount as a bare JSON number; the decimal
// type's own marshaling would quote it.
type paymentRequest struct {
	Amount json.Number `json:"amount"`
}

type balanceResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

// Withdraw performs a single request/response exchange. The status code
// maps one-to-one onto the tagged outcome; transport failures,
// timeouts included, come back as the error.
func (c *Client) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (checkoutapp.WithdrawResult, error) {
	body, err := json.Marshal(paymentRequest{Amount: json.Number(amount.String())})
	if err != nil {
		return checkoutapp.WithdrawResult{}, err
	}

	url := fmt.Sprintf("%s/payment/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return checkoutapp.WithdrawResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return checkoutapp.WithdrawResult{}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res := checkoutapp.WithdrawResult{StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusOK:
		res.Outcome = checkoutapp.WithdrawOK
	case http.StatusPaymentRequired:
		res.Outcome = checkoutapp.WithdrawInsufficientFunds
	case http.StatusNotFound:
		res.Outcome = checkoutapp.WithdrawAccountNotFound
	default:
		res.Outcome = checkoutapp.WithdrawOther
	}
	return res, nil
}

// Balance reads the user's current balance, which the balance service
// auto-creates on first contact.
func (c *Client) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/balance/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("balance read: unexpected status %d", resp.StatusCode)
	}

	var out balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("balance read: %w", err)
	}
	return out.Amount, nil
}
