package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResetCode covers unknown, mismatched and expired reset codes alike.
var ErrInvalidResetCode = errors.New("invalid or expired reset code")

const (
	// ResetCodeDigits is the length of an emailed password reset code.
	ResetCodeDigits = 6
	// ResetCodeTTL bounds how long a reset code stays usable.
	ResetCodeTTL = 10 * time.Minute
)

// PasswordResetRepository stores hashed one-time reset codes keyed by email.
type PasswordResetRepository interface {
	// Create stores a code and replaces any earlier code for the same email.
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	// Check reports whether an unexpired code matches without using it up.
	Check(ctx context.Context, email, codeHash string) (bool, error)
	// Consume deletes a matching unexpired code and reports whether one existed.
	Consume(ctx context.Context, email, codeHash string) (bool, error)
}

// PasswordResetEmailData holds data for the password reset code email.
type PasswordResetEmailData struct {
	Email            string
	Name             string
	Code             string
	ExpiresInMinutes int
}
