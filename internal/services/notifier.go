package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"campusticketing/internal/domain"
)

const (
	ticketQRContentID = "ticket-qr"

	defaultNotifyBuffer  = 256
	defaultDeliveryLimit = 30 * time.Second
)

// AsyncNotifier hands notifications to a sink on a background worker.
type AsyncNotifier struct {
	sink    domain.NotificationSink
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.RegistrationNotification
	done   chan struct{}
}

// NewAsyncNotifier starts a worker draining a queue of the given size into sink.
func NewAsyncNotifier(sink domain.NotificationSink, buffer int, logger *slog.Logger) *AsyncNotifier {
	if buffer <= 0 {
		buffer = defaultNotifyBuffer
	}
	n := &AsyncNotifier{
		sink:    sink,
		logger:  orDefault(logger),
		timeout: defaultDeliveryLimit,
		queue:   make(chan domain.RegistrationNotification, buffer),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

// NotifyRegistration enqueues n. It never blocks; when the queue is full or the notifier
// is closed the notification is dropped.
func (n *AsyncNotifier) NotifyRegistration(msg domain.RegistrationNotification) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Warn("notifier closed, dropping notification", "registration_id", msg.RegistrationID)
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.logger.Warn("notification queue full, dropping notification", "registration_id", msg.RegistrationID)
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.sink.Deliver(ctx, msg); err != nil {
			n.logger.Error("notification delivery failed", "registration_id", msg.RegistrationID, "error", err)
		}
		cancel()
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type emailNotificationSink struct {
	emails domain.EmailService
}

// NewEmailNotificationSink delivers notifications as confirmation emails.
func NewEmailNotificationSink(emails domain.EmailService) domain.NotificationSink {
	return &emailNotificationSink{emails: emails}
}

func (s *emailNotificationSink) Deliver(ctx context.Context, n domain.RegistrationNotification) error {
	if n.Email == "" {
		return fmt.Errorf("notification %s has no recipient", n.RegistrationID)
	}
	data := &domain.RegistrationEmailData{
		Email:      n.Email,
		Name:       n.Name,
		EventTitle: n.EventTitle,
		Venue:      n.Venue,
		Date:       n.EventDate,
		TicketID:   n.RegistrationID,
	}
	if img, err := decodePNGDataURL(n.QRCode); err == nil {
		data.QRImage = img
		data.QRContentID = ticketQRContentID
	}
	return s.emails.SendRegistrationConfirmation(ctx, data)
}

func decodePNGDataURL(s string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("not a png data url")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(s, prefix))
}
