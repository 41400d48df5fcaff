package domain

import "context"

// RegistrationNotification describes a completed registration for out-of-band delivery.
type RegistrationNotification struct {
	RegistrationID string `json:"registration_id"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`
	Venue          string `json:"venue"`
	EventDate      string `json:"event_date"`
	TicketToken    string `json:"ticket_token"`
	// QRCode is the ticket image as a PNG data URL.
	QRCode string `json:"qr_code"`
}

// Notifier accepts notifications without blocking the caller. Delivery failures never
// surface to the request that produced the notification.
type Notifier interface {
	NotifyRegistration(n RegistrationNotification)
}

// NotificationSink delivers one notification (email, queue publish).
type NotificationSink interface {
	Deliver(ctx context.Context, n RegistrationNotification) error
}
