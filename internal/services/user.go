package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"campusticketing/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AdminPolicy decides which new accounts are created as admins.
type AdminPolicy func(email string) bool

type userService struct {
	userRepo     domain.UserRepository
	resetCodes   domain.PasswordResetRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
	emailService domain.EmailService
	isAdmin      AdminPolicy
	logger       *slog.Logger
}

// NewUserService creates a UserService with the given repositories and auth ports.
// isAdmin may be nil. Password resets need both resetCodes and emailService.
func NewUserService(userRepo domain.UserRepository, resetCodes domain.PasswordResetRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, isAdmin AdminPolicy, logger *slog.Logger) domain.UserService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &userService{
		userRepo:     userRepo,
		resetCodes:   resetCodes,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		isAdmin:      isAdmin,
		logger:       orDefault(logger),
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *userService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.InvalidInput("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, domain.InvalidInput("password must be at least %d characters", minPasswordLen)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleStudent
	if s.isAdmin(email) {
		role = domain.RoleAdmin
	}
	now := time.Now()
	user := domain.NewUser(email, name, role, hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrForbidden
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update. The role is never changed here.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update *domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.InvalidInput("name cannot be empty")
		}
		user.Name = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if !emailRegexp.MatchString(email) {
			return nil, domain.InvalidInput("invalid email format")
		}
		user.Email = email
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLen {
			return nil, domain.InvalidInput("password must be at least %d characters", minPasswordLen)
		}
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(salt, *update.Password)
		if err != nil {
			return nil, err
		}
		user.Salt, user.PasswordHash = salt, hash
	}
	if update.Year != nil && (*update.Year < 1 || *update.Year > 10) {
		return nil, domain.InvalidInput("year must be between 1 and 10")
	}
	setTrimmed(&user.Phone, update.Phone)
	setTrimmed(&user.College, update.College)
	setTrimmed(&user.StudentID, update.StudentID)
	setTrimmed(&user.Course, update.Course)
	setTrimmed(&user.Section, update.Section)
	setTrimmed(&user.City, update.City)
	setTrimmed(&user.Department, update.Department)
	setTrimmed(&user.EmergencyContact, update.EmergencyContact)
	if update.Year != nil {
		y := *update.Year
		user.Year = &y
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ListUsers pages through accounts with their registration counts.
func (s *userService) ListUsers(ctx context.Context, params domain.PaginationParams) ([]*domain.UserStats, int, error) {
	users, total, err := s.userRepo.ListWithStats(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// RequestPasswordReset mails a fresh code and replaces any earlier one. Unknown
// addresses succeed without sending anything.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resetCodes == nil || s.emailService == nil {
		return errors.New("password reset is not configured")
	}
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return domain.InvalidInput("invalid email format")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := generateResetCode(domain.ResetCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	expiresAt := time.Now().Add(domain.ResetCodeTTL)
	if err := s.resetCodes.Create(ctx, user.Email, hashResetCode(user.Email, code), expiresAt); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	data := &domain.PasswordResetEmailData{
		Email:            user.Email,
		Name:             user.Name,
		Code:             code,
		ExpiresInMinutes: int(domain.ResetCodeTTL / time.Minute),
	}
	if err := s.emailService.SendPasswordReset(ctx, data); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

func (s *userService) VerifyPasswordReset(ctx context.Context, email, code string) error {
	email, code, err := s.resetInput(email, code)
	if err != nil {
		return err
	}
	ok, err := s.resetCodes.Check(ctx, email, hashResetCode(email, code))
	if err != nil {
		return fmt.Errorf("failed to check reset code: %w", err)
	}
	if !ok {
		return domain.ErrInvalidResetCode
	}
	return nil
}

// ResetPassword uses up the code, so a second call with the same code fails.
func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, code, err := s.resetInput(email, code)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLen {
		return domain.InvalidInput("password must be at least %d characters", minPasswordLen)
	}
	ok, err := s.resetCodes.Consume(ctx, email, hashResetCode(email, code))
	if err != nil {
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	if !ok {
		return domain.ErrInvalidResetCode
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetCode
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(salt, newPassword)
	if err != nil {
		return err
	}
	user.Salt, user.PasswordHash = salt, hash
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *userService) resetInput(email, code string) (string, string, error) {
	if s.resetCodes == nil {
		return "", "", errors.New("password reset is not configured")
	}
	code = strings.TrimSpace(code)
	if len(code) != domain.ResetCodeDigits || strings.Trim(code, "0123456789") != "" {
		return "", "", domain.ErrInvalidResetCode
	}
	return normalizeEmail(email), code, nil
}

// generateResetCode draws digits from crypto/rand, skipping bytes that would bias the result.
func generateResetCode(digits int) (string, error) {
	const digitspace = "0123456789"
	const limit = 250 // largest multiple of 10 that fits in a byte
	out := make([]byte, 0, digits)
	buf := make([]byte, digits)
	for len(out) < digits {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b < limit && len(out) < digits {
				out = append(out, digitspace[int(b)%len(digitspace)])
			}
		}
	}
	return string(out), nil
}

func hashResetCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
