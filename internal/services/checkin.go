package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusticketing/internal/domain"
)

type checkInService struct {
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewCheckInService(registrationRepo domain.RegistrationRepository, userRepo domain.UserRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.CheckInService {
	return &checkInService{
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// CheckIn accepts either a registration id or a full ticket token. Scanning an arrived
// ticket again reports the original arrival time.
func (s *checkInService) CheckIn(ctx context.Context, ticketRef string) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticketRef = strings.TrimSpace(ticketRef)
	if ticketRef == "" {
		return nil, domain.ErrInvalidTicket
	}
	reg, err := s.resolve(ctx, ticketRef)
	if err != nil {
		return nil, err
	}

	already := reg.Arrived()
	if !already {
		at := s.now()
		updated, err := s.registrationRepo.MarkArrived(ctx, reg.ID, at)
		if err != nil {
			return nil, fmt.Errorf("failed to check in: %w", err)
		}
		if updated {
			reg.CheckInStatus = domain.CheckInArrived
			reg.CheckInTime = &at
		} else {
			// Another scanner won the race; report its time.
			if reg, err = s.registrationRepo.GetByID(ctx, reg.ID); err != nil {
				return nil, fmt.Errorf("failed to reload registration: %w", err)
			}
			already = true
		}
	}

	result := &domain.CheckInResult{AlreadyCheckedIn: already}
	if reg.CheckInTime != nil {
		result.Time = *reg.CheckInTime
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		result.User = user.Summary()
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event != nil {
		result.Event = event.Summary()
	}
	return result, nil
}

func (s *checkInService) resolve(ctx context.Context, ref string) (*domain.Registration, error) {
	var (
		reg *domain.Registration
		err error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		reg, err = s.registrationRepo.GetByID(ctx, ref)
	} else {
		claims, parseErr := domain.ParseTicketToken(ref)
		if parseErr != nil {
			return nil, domain.ErrTicketNotFound
		}
		reg, err = s.registrationRepo.GetByEventAndUser(ctx, claims.EventID, claims.UserID)
		// only the token that was issued for this registration admits
		if err == nil && reg.TicketToken != ref {
			return nil, domain.ErrTicketNotFound
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}
