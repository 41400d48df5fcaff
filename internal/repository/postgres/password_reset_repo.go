package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusticketing/internal/domain"
)

type passwordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) domain.PasswordResetRepository {
	return &passwordResetRepository{DB: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		WITH cleared AS (
			DELETE FROM password_reset_codes WHERE LOWER(email) = LOWER($1)
		)
		INSERT INTO password_reset_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt)
	return err
}

func (r *passwordResetRepository) Check(ctx context.Context, email, codeHash string) (bool, error) {
	query := `
		SELECT id FROM password_reset_codes
		WHERE LOWER(email) = LOWER($1) AND code_hash = $2 AND expires_at > NOW()
		LIMIT 1
	`
	var id string
	err := r.DB.QueryRowContext(ctx, query, email, codeHash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Consume deletes the matching row in one statement so a code cannot be used twice.
func (r *passwordResetRepository) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	query := `
		DELETE FROM password_reset_codes
		WHERE LOWER(email) = LOWER($1) AND code_hash = $2 AND expires_at > NOW()
		RETURNING id
	`
	var id string
	err := r.DB.QueryRowContext(ctx, query, email, codeHash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
