package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusticketing/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, description, date, venue, capacity, price, category, banner_url, created_by,
		total_registrations, status, created_at, updated_at`

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var createdBy sql.NullString
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.Capacity, &e.Price, &e.Category,
		&e.BannerURL, &createdBy, &e.TotalRegistrations, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	e.CreatedBy = createdBy.String
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, venue, capacity, price, category, banner_url, created_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, e.Title, e.Description, e.Date, e.Venue, e.Capacity, e.Price,
		e.Category, e.BannerURL, e.CreatedBy, e.Status, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

// List returns one page of events ordered by date ascending, plus the total matching count.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := ""
	args := []any{}
	if filter.Category != "" {
		where = "WHERE category = $1"
		args = append(args, filter.Category)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s
		FROM events
		%s
		ORDER BY date ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, n+1, n+2)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Update applies the non-nil fields of u. A capacity change is conditional on the current
// registration count; when the row exists but the condition fails,
// ErrCapacityBelowRegistrations is returned.
func (r *eventRepository) Update(ctx context.Context, eventID string, u *domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, v)
		n++
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Date != nil {
		add("date", *u.Date)
	}
	if u.Venue != nil {
		add("venue", *u.Venue)
	}
	if u.Capacity != nil {
		add("capacity", *u.Capacity)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.BannerURL != nil {
		add("banner_url", *u.BannerURL)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}

	where := fmt.Sprintf("id = $%d", n)
	args = append(args, eventID)
	if u.Capacity != nil {
		where += fmt.Sprintf(" AND total_registrations <= $%d", n+1)
		args = append(args, *u.Capacity)
	}
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, domain.ErrEventNotFound) && u.Capacity != nil {
		if _, getErr := r.GetByID(ctx, eventID); getErr == nil {
			return nil, domain.ErrCapacityBelowRegistrations
		}
	}
	return e, err
}
