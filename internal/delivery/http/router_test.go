package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusticketing/internal/delivery/http/controllers"
	"campusticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenTable map[string]*domain.TokenClaims

func (t tokenTable) Verify(token string) (*domain.TokenClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type denyAll struct{ calls int }

func (d *denyAll) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	d.calls++
	return false, 30 * time.Second, nil
}

type emptyEvents struct{ domain.EventService }

func (emptyEvents) ListEvents(ctx context.Context, viewerID string, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventListItem, int, error) {
	return nil, 0, nil
}

func newTestRouter(limiter *denyAll) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := RouterConfig{
		Users:         controllers.NewUserController(logger, nil),
		Events:        controllers.NewEventController(logger, emptyEvents{}),
		Registrations: controllers.NewRegistrationController(logger, nil),
		Payments:      controllers.NewPaymentController(logger, nil),
		CheckIn:       controllers.NewCheckInController(logger, nil),
		Admin:         controllers.NewAdminController(logger, nil, nil, nil),
		Verifier: tokenTable{
			"student-token": {UserID: "u1", Role: domain.RoleStudent},
			"admin-token":   {UserID: "u2", Role: domain.RoleAdmin},
		},
		Logger: logger,
	}
	if limiter != nil {
		cfg.Limiter = limiter
	}
	return NewRouter(cfg)
}

func TestRouter_Guards(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"public listing", http.MethodGet, "/events", "", http.StatusOK},
		{"listing with bad token stays public", http.MethodGet, "/events", "garbage", http.StatusOK},
		{"profile needs token", http.MethodGet, "/users/me", "", http.StatusUnauthorized},
		{"create event anonymous", http.MethodPost, "/events", "", http.StatusUnauthorized},
		{"create event as student", http.MethodPost, "/events", "student-token", http.StatusForbidden},
		{"delete event as student", http.MethodDelete, "/events/0e9d8c7b-6a5f-4e3d-8c2b-1a0f9e8d7c6b", "student-token", http.StatusForbidden},
		{"cancel as student", http.MethodDelete, "/registrations/3a4b5c6d-7e8f-4a0b-9c1d-2e3f4a5b6c7d", "student-token", http.StatusForbidden},
		{"checkin as student", http.MethodPost, "/checkin", "student-token", http.StatusForbidden},
		{"admin registrations as student", http.MethodGet, "/admin/registrations", "student-token", http.StatusForbidden},
		{"admin users as student", http.MethodGet, "/admin/users", "student-token", http.StatusForbidden},
		{"admin users anonymous", http.MethodGet, "/admin/users", "", http.StatusUnauthorized},
		{"admin payments anonymous", http.MethodGet, "/admin/payments", "", http.StatusUnauthorized},
		{"ticket needs token", http.MethodGet, "/events/0e9d8c7b-6a5f-4e3d-8c2b-1a0f9e8d7c6b/ticket", "", http.StatusUnauthorized},
		{"order needs token", http.MethodPost, "/payments/orders", "", http.StatusUnauthorized},
		{"wrong method", http.MethodPut, "/events", "", http.StatusMethodNotAllowed},
	}

	router := newTestRouter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRouter_RateLimitedRoutes(t *testing.T) {
	limiter := &denyAll{}
	router := newTestRouter(limiter)

	paths := []string{"/payments/orders", "/payments/verify", "/checkin",
		"/auth/password-reset/request", "/auth/password-reset/verify", "/auth/password-reset/confirm"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusTooManyRequests, rr.Code, path)
		assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	}
	assert.Equal(t, len(paths), limiter.calls)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, len(paths), limiter.calls)
}
