package domain

import (
	"context"
	"time"
)

// PaymentStatus is the settlement state of a gateway order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment is one payment-gateway order attempt.
// swagger:model Payment
type Payment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	EventID   string        `json:"event_id"`
	OrderID   string        `json:"order_id"`
	PaymentID *string       `json:"payment_id"`
	Signature *string       `json:"signature"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	QRCode    string        `json:"qr_code"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewPendingPayment returns a PENDING payment mirroring a freshly created gateway order.
func NewPendingPayment(userID, eventID, orderID string, amount int64, currency string, createdAt time.Time) *Payment {
	return &Payment{
		UserID:    userID,
		EventID:   eventID,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Status:    PaymentPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// PaymentDetail is a payment joined with its user and event for admin listings.
type PaymentDetail struct {
	Payment *Payment      `json:"payment"`
	User    *UserSummary  `json:"user"`
	Event   *EventSummary `json:"event"`
}

// GatewayOrder is an order created on the remote payment gateway.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// PaymentGateway is the remote payment provider.
type PaymentGateway interface {
	// KeyID is the public key handed to the client-side checkout.
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)
	// VerifySignature reports whether signature authenticates "{orderID}|{paymentID}".
	VerifySignature(orderID, paymentID, signature string) bool
}

// PaymentRepository defines storage for payment orders.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	// MarkSuccess settles a PENDING payment. updated is false if it was not PENDING.
	MarkSuccess(ctx context.Context, orderID, paymentID, signature string) (updated bool, err error)
	AttachTicket(ctx context.Context, orderID, qrCode string) error
	ListAll(ctx context.Context, params PaginationParams) ([]*PaymentDetail, int, error)
}

// CheckoutOrder is returned to the client to start the gateway checkout UI.
type CheckoutOrder struct {
	Key      string `json:"key"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentVerification is the input of a gateway callback.
type PaymentVerification struct {
	OrderID   string
	PaymentID string
	Signature string
	EventID   string
}

// VerifiedPayment is the outcome of a verified callback.
type VerifiedPayment struct {
	AlreadyVerified bool          `json:"already_verified"`
	Registration    *Registration `json:"registration"`
}

// PaymentService handles order creation and callback settlement.
type PaymentService interface {
	CreateOrder(ctx context.Context, userID, eventID string) (*CheckoutOrder, error)
	VerifyPayment(ctx context.Context, userID string, v PaymentVerification) (*VerifiedPayment, error)
	ListAll(ctx context.Context, params PaginationParams) ([]*PaymentDetail, int, error)
}
