package domain

import (
	"context"
	"time"
)

// CheckInStatus is the arrival state of a registration. PENDING is initial, ARRIVED is terminal.
type CheckInStatus string

const (
	CheckInPending CheckInStatus = "PENDING"
	CheckInArrived CheckInStatus = "ARRIVED"
)

// Registration represents one user's enrollment in one event.
// swagger:model Registration
type Registration struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	EventID       string        `json:"event_id"`
	PaymentID     *string       `json:"payment_id"`
	TicketToken   string        `json:"ticket_token"`
	QRCode        string        `json:"qr_code"`
	CheckInStatus CheckInStatus `json:"check_in_status"`
	CheckInTime   *time.Time    `json:"check_in_time"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewRegistration creates a pending Registration holding the issued ticket.
// ID is typically set by the repository on create.
func NewRegistration(userID, eventID string, paymentID *string, ticket *Ticket, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		UserID:        userID,
		EventID:       eventID,
		PaymentID:     paymentID,
		TicketToken:   ticket.Token,
		QRCode:        ticket.DataURL,
		CheckInStatus: CheckInPending,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// Arrived reports whether the registration has been checked in.
func (r *Registration) Arrived() bool {
	return r.CheckInStatus == CheckInArrived
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *EventSummary `json:"event"`
}

// RegistrationDetail is a registration joined with its user and event for admin listings.
// Event is nil when the event has since been deleted.
type RegistrationDetail struct {
	Registration *Registration `json:"registration"`
	User         *UserSummary  `json:"user"`
	Event        *EventSummary `json:"event"`
}

// TicketView is what a registered user sees for their ticket.
type TicketView struct {
	TicketID  string    `json:"ticket_id"`
	QRCode    string    `json:"qr_code"`
	Token     string    `json:"ticket_token"`
	EventName string    `json:"event_name"`
	Venue     string    `json:"venue"`
	Date      time.Time `json:"date"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

// CheckInResult is returned by a check-in scan.
type CheckInResult struct {
	AlreadyCheckedIn bool          `json:"already"`
	User             *UserSummary  `json:"user"`
	Event            *EventSummary `json:"event"`
	Time             time.Time     `json:"time"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// CreateWithSeat inserts reg and increments the event's registration counter in one
	// transaction. The increment is conditional on the counter being below capacity.
	// Returns ErrEventFull, ErrAlreadyRegistered or ErrEventNotFound.
	CreateWithSeat(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error)
	ListAll(ctx context.Context, params PaginationParams) ([]*RegistrationDetail, int, error)
	// Delete removes the registration and decrements its event's counter in one transaction.
	Delete(ctx context.Context, id string) (*Registration, error)
	// MarkArrived moves a PENDING registration to ARRIVED. updated is false when the
	// registration was already ARRIVED.
	MarkArrived(ctx context.Context, id string, at time.Time) (updated bool, err error)
}

// RegistrationService defines registration, cancellation and ticket lookups.
type RegistrationService interface {
	RegisterFree(ctx context.Context, userID, eventID string) (*Registration, error)
	// CompletePaidRegistration materializes the registration for a settled payment.
	// An existing registration for (user, event) is returned unchanged with created=false.
	CompletePaidRegistration(ctx context.Context, userID, eventID, paymentID string) (reg *Registration, created bool, err error)
	Cancel(ctx context.Context, registrationID string) error
	ListMine(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListAll(ctx context.Context, params PaginationParams) ([]*RegistrationDetail, int, error)
	GetTicket(ctx context.Context, userID, eventID string) (*TicketView, error)
}

// CheckInService flips a scanned registration from PENDING to ARRIVED.
type CheckInService interface {
	CheckIn(ctx context.Context, ticketRef string) (*CheckInResult, error)
}
