package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusticketing/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
}

func NewEventService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatedBy == "" {
		return fmt.Errorf("event creator is required")
	}
	event.Title = strings.TrimSpace(event.Title)
	event.Venue = strings.TrimSpace(event.Venue)
	event.Description = strings.TrimSpace(event.Description)
	if event.Category == "" {
		event.Category = domain.CategoryOther
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	now := time.Now()
	event.Status = domain.EventUpcoming
	event.TotalRegistrations = 0
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func validateEvent(e *domain.Event) error {
	switch {
	case e.Title == "":
		return domain.InvalidInput("title is required")
	case e.Venue == "":
		return domain.InvalidInput("venue is required")
	case e.Date.IsZero():
		return domain.InvalidInput("date is required")
	case e.Capacity < 1:
		return domain.InvalidInput("capacity must be at least 1")
	case e.Price < 0:
		return domain.InvalidInput("price cannot be negative")
	case !e.Category.Valid():
		return domain.InvalidInput("invalid category %q", e.Category)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents returns a page of events. When viewerID is set each item reports whether
// the viewer holds a registration for it.
func (s *eventService) ListEvents(ctx context.Context, viewerID string, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventListItem, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, domain.InvalidInput("invalid category %q", filter.Category)
	}
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	registered := map[string]bool{}
	if viewerID != "" && len(events) > 0 {
		ids, err := s.registrationRepo.ListEventIDsByUserID(ctx, viewerID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
		}
		for _, id := range ids {
			registered[id] = true
		}
	}

	items := make([]*domain.EventListItem, 0, len(events))
	for _, e := range events {
		items = append(items, &domain.EventListItem{Event: e, IsRegistered: registered[e.ID]})
	}
	return items, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, update *domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if update.Title != nil {
		t := strings.TrimSpace(*update.Title)
		if t == "" {
			return nil, domain.InvalidInput("title cannot be empty")
		}
		update.Title = &t
	}
	if update.Venue != nil {
		v := strings.TrimSpace(*update.Venue)
		if v == "" {
			return nil, domain.InvalidInput("venue cannot be empty")
		}
		update.Venue = &v
	}
	if update.Capacity != nil && *update.Capacity < 1 {
		return nil, domain.InvalidInput("capacity must be at least 1")
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, domain.InvalidInput("price cannot be negative")
	}
	if update.Category != nil && !update.Category.Valid() {
		return nil, domain.InvalidInput("invalid category %q", *update.Category)
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.InvalidInput("invalid status %q", *update.Status)
	}
	if update.Date != nil && update.Date.IsZero() {
		return nil, domain.InvalidInput("date cannot be empty")
	}

	event, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		if errors.Is(err, domain.ErrCapacityBelowRegistrations) {
			return nil, domain.InvalidInput("%s", err.Error())
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes the event row. Its registrations and payments are kept.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
