// Package gateway wraps the external payment provider. Both the payment
// lifecycle and wallet top-ups settle through it.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

// Order is the gateway-side order a client completes checkout against.
// Amounts are whole rupees on this side of the boundary.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Callback carries the three fields the gateway posts back after checkout.
type Callback struct {
	OrderID   string `json:"gateway_order_id" binding:"required"`
	PaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature string `json:"gateway_signature" binding:"required"`
}

// Gateway abstracts the provider so services can be tested against a stub.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error)
	Refund(ctx context.Context, gatewayPaymentID string, amount int64, reason string) (string, error)
}

// VerifySignature checks the HMAC-SHA256 callback signature over
// "orderID|paymentID" in constant time.
func VerifySignature(cb Callback, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(cb.OrderID + "|" + cb.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(cb.Signature))
}

// Razorpay talks to the Razorpay REST API. Amounts cross the wire in paise,
// so rupee amounts are multiplied by 100 on the way out.
type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   "https://api.razorpay.com/v1",
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	payload := map[string]interface{}{
		"amount":   amount * 100,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := g.post(ctx, "/orders", payload, &out); err != nil {
		return nil, err
	}
	return &Order{ID: out.ID, Amount: out.Amount / 100, Currency: out.Currency}, nil
}

func (g *Razorpay) Refund(ctx context.Context, gatewayPaymentID string, amount int64, reason string) (string, error) {
	payload := map[string]interface{}{
		"amount": amount * 100,
		"notes":  map[string]string{"reason": reason},
	}
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/payments/%s/refund", gatewayPaymentID)
	if err := g.post(ctx, path, payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (g *Razorpay) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
