package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistrationID = "3a4b5c6d-7e8f-4a0b-9c1d-2e3f4a5b6c7d"

type fakeRegistrationService struct {
	err        error
	reg        *domain.Registration
	mine       []*domain.RegistrationWithEvent
	details    []*domain.RegistrationDetail
	total      int
	ticket     *domain.TicketView
	lastUserID string
	lastID     string
	lastParams domain.PaginationParams
}

func (f *fakeRegistrationService) RegisterFree(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	f.lastUserID, f.lastID = userID, eventID
	return f.reg, f.err
}

func (f *fakeRegistrationService) CompletePaidRegistration(ctx context.Context, userID, eventID, paymentID string) (*domain.Registration, bool, error) {
	return f.reg, true, f.err
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, registrationID string) error {
	f.lastID = registrationID
	return f.err
}

func (f *fakeRegistrationService) ListMine(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.lastUserID = userID
	return f.mine, f.err
}

func (f *fakeRegistrationService) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.RegistrationDetail, int, error) {
	f.lastParams = params
	return f.details, f.total, f.err
}

func (f *fakeRegistrationService) GetTicket(ctx context.Context, userID, eventID string) (*domain.TicketView, error) {
	f.lastUserID, f.lastID = userID, eventID
	return f.ticket, f.err
}

func sampleRegistration() *domain.Registration {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Registration{
		ID:            testRegistrationID,
		UserID:        testUserID,
		EventID:       testEventID,
		TicketToken:   `{"userId":"u","eventId":"e","time":1}`,
		QRCode:        "data:image/png;base64,cG5n",
		CheckInStatus: domain.CheckInPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRegistrationController_RegisterFree(t *testing.T) {
	tests := []struct {
		name         string
		claims       *domain.TokenClaims
		eventID      string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{name: "success", claims: student(testUserID), eventID: testEventID, wantStatus: http.StatusCreated},
		{name: "no identity", eventID: testEventID, wantStatus: http.StatusUnauthorized, wantBodyCode: helpers.ErrCodeUnauthorized},
		{name: "bad event id", claims: student(testUserID), eventID: "nope", wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
		{name: "paid event", claims: student(testUserID), eventID: testEventID, fakeErr: domain.ErrPaymentRequired, wantStatus: http.StatusPaymentRequired, wantBodyCode: helpers.ErrCodePaymentRequired},
		{name: "already registered", claims: student(testUserID), eventID: testEventID, fakeErr: domain.ErrAlreadyRegistered, wantStatus: http.StatusConflict, wantBodyCode: helpers.ErrCodeConflict},
		{name: "full", claims: student(testUserID), eventID: testEventID, fakeErr: domain.ErrEventFull, wantStatus: http.StatusConflict, wantBodyCode: helpers.ErrCodeConflict},
		{name: "missing event", claims: student(testUserID), eventID: testEventID, fakeErr: domain.ErrEventNotFound, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{reg: sampleRegistration(), err: tt.fakeErr}
			rr := httptest.NewRecorder()

			NewRegistrationController(testLogger, fake).RegisterFree(rr, newRequest(http.MethodPost, "/registrations/events/"+tt.eventID, "", tt.claims, map[string]string{"eventID": tt.eventID}))

			require.Equal(t, tt.wantStatus, rr.Code)
			var reg domain.Registration
			envelope := decodeEnvelope(t, rr, &reg)
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
				return
			}
			assert.Equal(t, testRegistrationID, reg.ID)
			assert.Equal(t, domain.CheckInPending, reg.CheckInStatus)
			assert.Equal(t, testUserID, fake.lastUserID)
			assert.Equal(t, testEventID, fake.lastID)
		})
	}
}

func TestRegistrationController_ListMine(t *testing.T) {
	fake := &fakeRegistrationService{}
	rr := httptest.NewRecorder()

	NewRegistrationController(testLogger, fake).ListMine(rr, newRequest(http.MethodGet, "/registrations/me", "", student(testUserID), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	assert.Equal(t, testUserID, fake.lastUserID)

	fake.mine = []*domain.RegistrationWithEvent{{Registration: sampleRegistration(), Event: &domain.EventSummary{ID: testEventID, Title: "Hack Night"}}}
	rr = httptest.NewRecorder()
	NewRegistrationController(testLogger, fake).ListMine(rr, newRequest(http.MethodGet, "/registrations/me", "", student(testUserID), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out []domain.RegistrationWithEvent
	decodeEnvelope(t, rr, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "Hack Night", out[0].Event.Title)
}

func TestRegistrationController_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		fakeErr    error
		wantStatus int
	}{
		{"success", testRegistrationID, nil, http.StatusNoContent},
		{"bad id", "x", nil, http.StatusBadRequest},
		{"missing", testRegistrationID, domain.ErrRegistrationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{err: tt.fakeErr}
			rr := httptest.NewRecorder()

			NewRegistrationController(testLogger, fake).Cancel(rr, newRequest(http.MethodDelete, "/registrations/"+tt.id, "", admin(testUserID), map[string]string{"registrationID": tt.id}))

			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRegistrationController_GetTicket(t *testing.T) {
	view := &domain.TicketView{TicketID: testRegistrationID, QRCode: "data:image/png;base64,cG5n", EventName: "Hack Night", Venue: "Lab 1", UserName: "Asha", UserEmail: "asha@example.com"}

	fake := &fakeRegistrationService{ticket: view}
	rr := httptest.NewRecorder()
	NewRegistrationController(testLogger, fake).GetTicket(rr, newRequest(http.MethodGet, "/events/"+testEventID+"/ticket", "", student(testUserID), map[string]string{"eventID": testEventID}))

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.TicketView
	decodeEnvelope(t, rr, &got)
	assert.Equal(t, testRegistrationID, got.TicketID)
	assert.Equal(t, "Hack Night", got.EventName)

	fake = &fakeRegistrationService{err: domain.ErrNotRegistered}
	rr = httptest.NewRecorder()
	NewRegistrationController(testLogger, fake).GetTicket(rr, newRequest(http.MethodGet, "/events/"+testEventID+"/ticket", "", student(testUserID), map[string]string{"eventID": testEventID}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
