package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusticketing/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, user_id, event_id, payment_id, ticket_token, qr_code, check_in_status, check_in_time, created_at, updated_at`

func scanRegistration(s rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var paymentID sql.NullString
	var checkInTime sql.NullTime
	err := s.Scan(&reg.ID, &reg.UserID, &reg.EventID, &paymentID, &reg.TicketToken, &reg.QRCode,
		&reg.CheckInStatus, &checkInTime, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	if paymentID.Valid {
		reg.PaymentID = &paymentID.String
	}
	if checkInTime.Valid {
		t := checkInTime.Time
		reg.CheckInTime = &t
	}
	return reg, nil
}

// CreateWithSeat takes a seat and inserts the registration in one transaction.
// The seat is taken only while total_registrations < capacity.
func (r *registrationRepository) CreateWithSeat(ctx context.Context, reg *domain.Registration) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE events
		SET total_registrations = total_registrations + 1, updated_at = NOW()
		WHERE id = $1 AND total_registrations < capacity
	`, reg.EventID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, reg.EventID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return domain.ErrEventFull
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (user_id, event_id, payment_id, ticket_token, qr_code, check_in_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, reg.UserID, reg.EventID, reg.PaymentID, reg.TicketToken, reg.QRCode, reg.CheckInStatus, reg.CreatedAt, reg.UpdatedAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return tx.Commit()
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT event_id FROM registrations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListAll pages through every registration, newest first. Orphaned registrations
// (event deleted) come back with a nil Event.
func (r *registrationRepository) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.RegistrationDetail, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.user_id, r.event_id, r.payment_id, r.ticket_token, r.qr_code, r.check_in_status,
			r.check_in_time, r.created_at, r.updated_at,
			u.name, u.email,
			e.id, e.title, e.date, e.venue, e.price, e.category, e.banner_url
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		LEFT JOIN events e ON e.id = r.event_id
		ORDER BY r.created_at DESC, r.id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*domain.RegistrationDetail{}
	for rows.Next() {
		reg := &domain.Registration{}
		user := &domain.UserSummary{}
		var paymentID sql.NullString
		var checkInTime sql.NullTime
		var ev nullableEventSummary
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &paymentID, &reg.TicketToken, &reg.QRCode,
			&reg.CheckInStatus, &checkInTime, &reg.CreatedAt, &reg.UpdatedAt,
			&user.Name, &user.Email,
			&ev.ID, &ev.Title, &ev.Date, &ev.Venue, &ev.Price, &ev.Category, &ev.BannerURL); err != nil {
			return nil, 0, err
		}
		if paymentID.Valid {
			reg.PaymentID = &paymentID.String
		}
		if checkInTime.Valid {
			t := checkInTime.Time
			reg.CheckInTime = &t
		}
		user.ID = reg.UserID
		out = append(out, &domain.RegistrationDetail{Registration: reg, User: user, Event: ev.summary()})
	}
	return out, total, rows.Err()
}

// Delete removes the registration and releases its seat in one transaction.
func (r *registrationRepository) Delete(ctx context.Context, id string) (_ *domain.Registration, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	reg, err := scanRegistration(tx.QueryRowContext(ctx, `
		DELETE FROM registrations
		WHERE id = $1
		RETURNING `+registrationColumns, id))
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `
		UPDATE events
		SET total_registrations = GREATEST(total_registrations - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, reg.EventID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE registrations
		SET check_in_status = $1, check_in_time = $2, updated_at = $2
		WHERE id = $3 AND check_in_status = $4
	`, domain.CheckInArrived, at, id, domain.CheckInPending)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

// nullableEventSummary scans the LEFT JOINed event columns.
type nullableEventSummary struct {
	ID        sql.NullString
	Title     sql.NullString
	Date      sql.NullTime
	Venue     sql.NullString
	Price     sql.NullInt64
	Category  sql.NullString
	BannerURL sql.NullString
}

func (n nullableEventSummary) summary() *domain.EventSummary {
	if !n.ID.Valid {
		return nil
	}
	return &domain.EventSummary{
		ID:        n.ID.String,
		Title:     n.Title.String,
		Date:      n.Date.Time,
		Venue:     n.Venue.String,
		Price:     n.Price.Int64,
		Category:  domain.EventCategory(n.Category.String),
		BannerURL: n.BannerURL.String,
	}
}
