package domain

import (
	"context"
	"time"
)

// EventCategory is the closed set of event categories.
type EventCategory string

const (
	CategoryTechnical EventCategory = "technical"
	CategoryCultural  EventCategory = "cultural"
	CategorySports    EventCategory = "sports"
	CategoryWorkshop  EventCategory = "workshop"
	CategorySeminar   EventCategory = "seminar"
	CategoryOther     EventCategory = "other"
)

// Valid reports whether c is one of the known categories.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryCultural, CategorySports, CategoryWorkshop, CategorySeminar, CategoryOther:
		return true
	}
	return false
}

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	return s == EventUpcoming || s == EventCompleted || s == EventCancelled
}

// Event represents a campus event that students can register for.
// swagger:model Event
type Event struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Date               time.Time     `json:"date"`
	Venue              string        `json:"venue"`
	Capacity           int           `json:"capacity"`
	Price              int64         `json:"price"`
	Category           EventCategory `json:"category"`
	BannerURL          string        `json:"banner_url"`
	CreatedBy          string        `json:"created_by"`
	TotalRegistrations int           `json:"total_registrations"`
	Status             EventStatus   `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewEvent returns a new upcoming Event. ID is typically set by the repository on create.
func NewEvent(title, description, venue string, date time.Time, capacity int, price int64, category EventCategory, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Venue:       venue,
		Capacity:    capacity,
		Price:       price,
		Category:    category,
		CreatedBy:   createdBy,
		Status:      EventUpcoming,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsFree reports whether the event costs nothing.
func (e *Event) IsFree() bool {
	return e.Price == 0
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.TotalRegistrations >= e.Capacity
}

// AmountMinor returns the price in minor currency units (paise, cents).
func (e *Event) AmountMinor() int64 {
	return e.Price * 100
}

// EventSummary is the public subset of an event embedded in tickets and listings.
type EventSummary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Date      time.Time     `json:"date"`
	Venue     string        `json:"venue"`
	Price     int64         `json:"price"`
	Category  EventCategory `json:"category"`
	BannerURL string        `json:"banner_url"`
}

// Summary returns the public subset of e.
func (e *Event) Summary() *EventSummary {
	return &EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date,
		Venue:     e.Venue,
		Price:     e.Price,
		Category:  e.Category,
		BannerURL: e.BannerURL,
	}
}

// EventUpdate carries the optional fields of an event edit. Nil means unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Venue       *string
	Capacity    *int
	Price       *int64
	Category    *EventCategory
	BannerURL   *string
	Status      *EventStatus
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category EventCategory
}

// EventListItem is an event as seen in listings, flagged if the viewer is registered.
type EventListItem struct {
	*Event
	IsRegistered bool `json:"is_registered"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, eventID string, update *EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event management and browsing operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, viewerID string, filter EventFilter, params PaginationParams) ([]*EventListItem, int, error)
	UpdateEvent(ctx context.Context, eventID string, update *EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
