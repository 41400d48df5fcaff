package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusticketing/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password_hash, salt, role, name, phone, college, student_id, course, section,
		city, department, year, emergency_contact, is_active, created_at, updated_at`

func scanUser(s rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var year sql.NullInt64
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Role, &u.Name, &u.Phone, &u.College,
		&u.StudentID, &u.Course, &u.Section, &u.City, &u.Department, &year, &u.EmergencyContact,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		u.Year = &y
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, role, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Salt, u.Role, u.Name, u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

// Update writes every mutable column of u. Role is not mutable here.
func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, salt = $4, phone = $5, college = $6, student_id = $7,
			course = $8, section = $9, city = $10, department = $11, year = $12, emergency_contact = $13,
			updated_at = $14
		WHERE id = $15
	`
	var year sql.NullInt64
	if u.Year != nil {
		year = sql.NullInt64{Int64: int64(*u.Year), Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Salt, u.Phone, u.College,
		u.StudentID, u.Course, u.Section, u.City, u.Department, year, u.EmergencyContact, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListWithStats pages through users newest first. Paid and free counts only include
// registrations whose event still exists.
func (r *userRepository) ListWithStats(ctx context.Context, params domain.PaginationParams) ([]*domain.UserStats, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.name, u.email, u.role, u.is_active, u.created_at,
			COUNT(reg.id) AS events_registered,
			COUNT(e.id) FILTER (WHERE e.price > 0) AS paid_events,
			COUNT(e.id) FILTER (WHERE e.price = 0) AS free_events
		FROM users u
		LEFT JOIN registrations reg ON reg.user_id = u.id
		LEFT JOIN events e ON e.id = reg.event_id
		GROUP BY u.id
		ORDER BY u.created_at DESC, u.id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*domain.UserStats{}
	for rows.Next() {
		u := &domain.UserStats{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt,
			&u.EventsRegistered, &u.PaidEvents, &u.FreeEvents); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}
