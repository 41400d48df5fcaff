package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"campusticketing/internal/domain"
)

// DefaultBaseURL is the Razorpay REST API root.
const DefaultBaseURL = "https://api.razorpay.com"

// RazorpayConfig holds gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

type razorpayGateway struct {
	client  *http.Client
	keyID   string
	secret  []byte
	baseURL string
}

// NewRazorpayGateway returns a PaymentGateway backed by the Razorpay Orders API.
func NewRazorpayGateway(cfg RazorpayConfig, client *http.Client) domain.PaymentGateway {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &razorpayGateway{
		client:  client,
		keyID:   cfg.KeyID,
		secret:  []byte(cfg.KeySecret),
		baseURL: base,
	}
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	body, err := json.Marshal(orderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(g.keyID, string(g.secret))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay api returned status %d: %s", resp.StatusCode, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("razorpay api returned status: %d", resp.StatusCode)
	}

	var data orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode razorpay response: %w", err)
	}
	if data.ID == "" {
		return nil, fmt.Errorf("razorpay response missing order id")
	}
	return &domain.GatewayOrder{
		ID:       data.ID,
		Amount:   data.Amount,
		Currency: data.Currency,
		Receipt:  data.Receipt,
	}, nil
}

// VerifySignature checks signature against the lowercase hex HMAC-SHA256 of
// "orderID|paymentID" under the key secret. The supplied string must match exactly and is
// compared in constant time.
func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	expected := hex.EncodeToString(Sign(g.secret, orderID, paymentID))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the raw callback signature for orderID and paymentID.
func Sign(secret []byte, orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}
