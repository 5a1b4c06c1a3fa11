// Package gateway talks to a Midtrans-style payment gateway: Snap checkout
// tokens, transaction status polling and notification signatures.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/config"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"

	"github.com/shopspring/decimal"
)

var ErrUnavailable = apperr.Unavailable("Payment gateway is unavailable, please try again later")

type Customer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// SnapRequest initiates a payment for one order.
type SnapRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Customer Customer
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Status is the gateway's view of an order. It carries the same fields as
// a notification so both go through one mapping.
type Status struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

type Client struct {
	serverKey string
	snapURL   string
	apiURL    string
	http      *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		serverKey: cfg.ServerKey,
		snapURL:   strings.TrimRight(cfg.SnapURL, "/"),
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

// CreateTransaction asks Snap for a payment token.
func (c *Client) CreateTransaction(ctx context.Context, req SnapRequest) (*SnapResponse, error) {
	body := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     req.OrderID,
			"gross_amount": req.Amount.Round(0).IntPart(),
		},
		"customer_details": req.Customer,
	}

	var out SnapResponse
	status, err := c.do(ctx, http.MethodPost, c.snapURL+"/transactions", body, &out)
	if err != nil {
		metrics.RecordGatewayError("create_transaction")
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		metrics.RecordGatewayError("create_transaction")
		return nil, fmt.Errorf("%w: snap returned %d", ErrUnavailable, status)
	}
	if out.Token == "" {
		metrics.RecordGatewayError("create_transaction")
		return nil, fmt.Errorf("%w: snap returned no token", ErrUnavailable)
	}
	return &out, nil
}

// Status polls the gateway for orderID. An order the gateway has never
// seen comes back with an empty TransactionStatus.
func (c *Client) Status(ctx context.Context, orderID string) (*Status, error) {
	var out Status
	status, err := c.do(ctx, http.MethodGet, c.apiURL+"/v2/"+orderID+"/status", nil, &out)
	if err != nil {
		metrics.RecordGatewayError("status")
		return nil, err
	}
	if status == http.StatusNotFound || out.StatusCode == "404" {
		return &Status{OrderID: orderID, StatusCode: "404"}, nil
	}
	if status >= 300 {
		metrics.RecordGatewayError("status")
		return nil, fmt.Errorf("%w: status endpoint returned %d", ErrUnavailable, status)
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, url string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.serverKey, "")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return res.StatusCode, fmt.Errorf("%w: gateway returned %d", ErrUnavailable, res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if len(raw) > 0 && out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return res.StatusCode, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return res.StatusCode, nil
}
