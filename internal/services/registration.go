package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"campusticketing/internal/domain"
)

const notificationDateLayout = "Mon, 02 Jan 2006 15:04 MST"

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	issuer           domain.TicketIssuer
	notifier         domain.Notifier
	contextTimeout   time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewRegistrationService creates a RegistrationService. notifier may be nil.
func NewRegistrationService(registrationRepo domain.RegistrationRepository, eventRepo domain.EventRepository, userRepo domain.UserRepository, issuer domain.TicketIssuer, notifier domain.Notifier, timeout time.Duration, logger *slog.Logger) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		issuer:           issuer,
		notifier:         notifier,
		contextTimeout:   timeout,
		logger:           orDefault(logger),
		now:              time.Now,
	}
}

func (s *registrationService) RegisterFree(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if !event.IsFree() {
		return nil, domain.ErrPaymentRequired
	}
	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	if event.IsFull() {
		return nil, domain.ErrEventFull
	}

	reg, err := s.create(ctx, userID, eventID, nil)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, reg, event)
	return reg, nil
}

func (s *registrationService) CompletePaidRegistration(ctx context.Context, userID, eventID, paymentID string) (*domain.Registration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to get event: %w", err)
	}
	existing, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		return nil, false, fmt.Errorf("failed to look up registration: %w", err)
	}
	if event.IsFull() {
		return nil, false, domain.ErrEventFull
	}

	reg, err := s.create(ctx, userID, eventID, &paymentID)
	if errors.Is(err, domain.ErrAlreadyRegistered) {
		existing, getErr := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to load concurrent registration: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.notify(ctx, reg, event)
	return reg, true, nil
}

// create issues a ticket and persists the registration together with the seat increment.
// Nothing is written if the ticket cannot be rendered.
func (s *registrationService) create(ctx context.Context, userID, eventID string, paymentID *string) (*domain.Registration, error) {
	now := s.now()
	pid := ""
	if paymentID != nil {
		pid = *paymentID
	}
	ticket, err := s.issuer.Issue(domain.NewTicketClaims(userID, eventID, pid, now))
	if err != nil {
		if errors.Is(err, domain.ErrTicketRender) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTicketRender, err)
	}

	reg := domain.NewRegistration(userID, eventID, paymentID, ticket, now, now)
	if err := s.registrationRepo.CreateWithSeat(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrEventFull),
			errors.Is(err, domain.ErrAlreadyRegistered),
			errors.Is(err, domain.ErrEventNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) notify(ctx context.Context, reg *domain.Registration, event *domain.Event) {
	if s.notifier == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "registration notification skipped", "registration_id", reg.ID, "error", err)
		return
	}
	s.notifier.NotifyRegistration(domain.RegistrationNotification{
		RegistrationID: reg.ID,
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		EventID:        event.ID,
		EventTitle:     event.Title,
		Venue:          event.Venue,
		EventDate:      event.Date.Format(notificationDateLayout),
		TicketToken:    reg.TicketToken,
		QRCode:         reg.QRCode,
	})
}

func (s *registrationService) Cancel(ctx context.Context, registrationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.Delete(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			return err
		}
		return fmt.Errorf("failed to cancel registration: %w", err)
	}
	s.logger.InfoContext(ctx, "registration cancelled", "registration_id", reg.ID, "event_id", reg.EventID)
	return nil
}

// ListMine returns the user's registrations newest first. Registrations whose event has
// been deleted are skipped.
func (s *registrationService) ListMine(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })

	out := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		event, err := s.eventRepo.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get event: %w", err)
		}
		out = append(out, &domain.RegistrationWithEvent{Registration: reg, Event: event.Summary()})
	}
	return out, nil
}

func (s *registrationService) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.RegistrationDetail, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.registrationRepo.ListAll(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
	}
	return items, total, nil
}

func (s *registrationService) GetTicket(ctx context.Context, userID, eventID string) (*domain.TicketView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &domain.TicketView{
		TicketID:  reg.ID,
		QRCode:    reg.QRCode,
		Token:     reg.TicketToken,
		EventName: event.Title,
		Venue:     event.Venue,
		Date:      event.Date,
		UserName:  user.Name,
		UserEmail: user.Email,
	}, nil
}
