package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User represents a registered account (student or admin).
// swagger:model User
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Salt             string    `json:"-"`
	Role             Role      `json:"role"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	College          string    `json:"college"`
	StudentID        string    `json:"student_id"`
	Course           string    `json:"course"`
	Section          string    `json:"section"`
	City             string    `json:"city"`
	Department       string    `json:"department"`
	Year             *int      `json:"year"`
	EmergencyContact string    `json:"emergency_contact"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewUser returns a new active User. ID is typically set by the repository on create.
func NewUser(email, name string, role Role, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		Salt:         salt,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UserSummary is the public subset of a user embedded in tickets, check-in results and
// admin listings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public subset of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserStats is one row of the admin user listing.
type UserStats struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"is_active"`
	EventsRegistered int       `json:"events_registered"`
	PaidEvents       int       `json:"paid_events"`
	FreeEvents       int       `json:"free_events"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means unchanged.
type ProfileUpdate struct {
	Name             *string
	Email            *string
	Password         *string
	Phone            *string
	College          *string
	StudentID        *string
	Course           *string
	Section          *string
	City             *string
	Department       *string
	Year             *int
	EmergencyContact *string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenClaims is the identity carried by a verified bearer token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   Role
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	ListWithStats(ctx context.Context, params PaginationParams) ([]*UserStats, int, error)
}

// UserService defines the business logic for accounts and profiles.
type UserService interface {
	SignUp(ctx context.Context, email, password, name string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, update *ProfileUpdate) (*User, error)
	ListUsers(ctx context.Context, params PaginationParams) ([]*UserStats, int, error)

	// RequestPasswordReset emails a one-time code to the account holder.
	RequestPasswordReset(ctx context.Context, email string) error
	// VerifyPasswordReset checks a code without using it up.
	VerifyPasswordReset(ctx context.Context, email, code string) error
	// ResetPassword consumes the code and sets newPassword.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}
