package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TicketClaims is the payload encoded into a ticket's QR code.
type TicketClaims struct {
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	Time      int64  `json:"time"`
	PaymentID string `json:"paymentId,omitempty"`
}

// NewTicketClaims binds a user and event at issuedAt. paymentID may be empty.
func NewTicketClaims(userID, eventID, paymentID string, issuedAt time.Time) TicketClaims {
	return TicketClaims{
		UserID:    userID,
		EventID:   eventID,
		Time:      issuedAt.UnixMilli(),
		PaymentID: paymentID,
	}
}

// Encode serializes the claims into the canonical ticket token.
func (c TicketClaims) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode ticket claims: %w", err)
	}
	return string(b), nil
}

// ParseTicketToken decodes a ticket token produced by TicketClaims.Encode.
func ParseTicketToken(token string) (TicketClaims, error) {
	var c TicketClaims
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, "{") {
		return c, ErrInvalidTicket
	}
	if err := json.Unmarshal([]byte(token), &c); err != nil {
		return c, ErrInvalidTicket
	}
	if c.UserID == "" || c.EventID == "" {
		return c, ErrInvalidTicket
	}
	return c, nil
}

// Ticket is an issued ticket: the token plus its rendered QR image.
type Ticket struct {
	Token   string
	Image   []byte
	DataURL string
}

// TicketIssuer renders tickets as scannable codes.
type TicketIssuer interface {
	Issue(claims TicketClaims) (*Ticket, error)
}
