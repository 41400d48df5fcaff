package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusticketing/internal/domain"
)

type paymentService struct {
	paymentRepo      domain.PaymentRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	registrations    domain.RegistrationService
	gateway          domain.PaymentGateway
	currency         string
	contextTimeout   time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewPaymentService creates a PaymentService. Settled payments are turned into
// registrations through registrations.
func NewPaymentService(paymentRepo domain.PaymentRepository, eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, registrations domain.RegistrationService, gateway domain.PaymentGateway, currency string, timeout time.Duration, logger *slog.Logger) domain.PaymentService {
	if currency == "" {
		currency = "INR"
	}
	return &paymentService{
		paymentRepo:      paymentRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		registrations:    registrations,
		gateway:          gateway,
		currency:         currency,
		contextTimeout:   timeout,
		logger:           orDefault(logger),
		now:              time.Now,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, userID, eventID string) (*domain.CheckoutOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.IsFree() {
		return nil, domain.ErrFreeEvent
	}
	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if event.IsFull() {
		return nil, domain.ErrEventFull
	}

	now := s.now()
	receipt := fmt.Sprintf("rcpt_%d", now.UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, event.AmountMinor(), s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := domain.NewPendingPayment(userID, eventID, order.ID, order.Amount, order.Currency, now)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	s.logger.InfoContext(ctx, "payment order created", "order_id", order.ID, "event_id", eventID, "amount", order.Amount)

	return &domain.CheckoutOrder{
		Key:      s.gateway.KeyID(),
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

// VerifyPayment authenticates a gateway callback and settles the order. A replayed
// callback for a settled order succeeds without creating anything new. userID must be the
// order's owner. The signature is checked exactly as supplied.
func (s *paymentService) VerifyPayment(ctx context.Context, userID string, v domain.PaymentVerification) (*domain.VerifiedPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.OrderID = strings.TrimSpace(v.OrderID)
	v.PaymentID = strings.TrimSpace(v.PaymentID)
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return nil, domain.InvalidInput("order_id, payment_id and signature are required")
	}
	if !s.gateway.VerifySignature(v.OrderID, v.PaymentID, v.Signature) {
		s.logger.WarnContext(ctx, "payment signature rejected", "order_id", v.OrderID)
		return nil, domain.ErrInvalidSignature
	}

	payment, err := s.paymentRepo.GetByOrderID(ctx, v.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if v.EventID != "" && v.EventID != payment.EventID {
		return nil, domain.ErrEventMismatch
	}
	if userID != payment.UserID {
		return nil, domain.ErrForbidden
	}

	if payment.Status == domain.PaymentSuccess {
		return s.alreadyVerified(ctx, payment, v.PaymentID)
	}
	updated, err := s.paymentRepo.MarkSuccess(ctx, v.OrderID, v.PaymentID, v.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}
	if !updated {
		return s.alreadyVerified(ctx, payment, v.PaymentID)
	}
	return s.complete(ctx, payment, v.PaymentID, false)
}

// alreadyVerified answers a replayed callback. A settled order whose registration is
// missing is completed again.
func (s *paymentService) alreadyVerified(ctx context.Context, payment *domain.Payment, paymentID string) (*domain.VerifiedPayment, error) {
	reg, err := s.registrationRepo.GetByEventAndUser(ctx, payment.EventID, payment.UserID)
	if err == nil {
		return &domain.VerifiedPayment{AlreadyVerified: true, Registration: reg}, nil
	}
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if payment.PaymentID != nil && *payment.PaymentID != "" {
		paymentID = *payment.PaymentID
	}
	return s.complete(ctx, payment, paymentID, true)
}

func (s *paymentService) complete(ctx context.Context, payment *domain.Payment, paymentID string, already bool) (*domain.VerifiedPayment, error) {
	reg, _, err := s.registrations.CompletePaidRegistration(ctx, payment.UserID, payment.EventID, paymentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "paid registration failed", "order_id", payment.OrderID, "error", err)
		return nil, err
	}
	if err := s.paymentRepo.AttachTicket(ctx, payment.OrderID, reg.QRCode); err != nil {
		s.logger.WarnContext(ctx, "attach ticket to payment failed", "order_id", payment.OrderID, "error", err)
	}
	s.logger.InfoContext(ctx, "payment verified", "order_id", payment.OrderID, "registration_id", reg.ID)
	return &domain.VerifiedPayment{AlreadyVerified: already, Registration: reg}, nil
}

func (s *paymentService) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.PaymentDetail, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.paymentRepo.ListAll(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return items, total, nil
}
