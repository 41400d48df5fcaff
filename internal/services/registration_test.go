package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	store    *memStore
	issuer   *fakeIssuer
	notifier *recordingNotifier
	svc      domain.RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	store := newMemStore()
	issuer := &fakeIssuer{}
	notifier := &recordingNotifier{}
	svc := NewRegistrationService(fakeRegistrationRepo{store}, fakeEventRepo{store}, fakeUserRepo{store}, issuer, notifier, time.Second, nil)
	return &registrationFixture{store: store, issuer: issuer, notifier: notifier, svc: svc}
}

func TestRegistrationService_RegisterFree(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	user := f.store.addUser("Alice", "alice@example.com", domain.RoleStudent)
	event := f.store.addEvent("Intro to Go", 10, 0)

	reg, err := f.svc.RegisterFree(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, domain.CheckInPending, reg.CheckInStatus)
	assert.Nil(t, reg.PaymentID)
	assert.Equal(t, 1, f.store.event(event.ID).TotalRegistrations)

	claims, err := domain.ParseTicketToken(reg.TicketToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, event.ID, claims.EventID)
	assert.Empty(t, claims.PaymentID)

	require.Equal(t, 1, f.notifier.count())
	sent := f.notifier.sent[0]
	assert.Equal(t, "alice@example.com", sent.Email)
	assert.Equal(t, reg.ID, sent.RegistrationID)
	assert.Equal(t, "Intro to Go", sent.EventTitle)
	assert.Equal(t, reg.QRCode, sent.QRCode)
}

func TestRegistrationService_RegisterFree_Preconditions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(f *registrationFixture) (userID, eventID string)
		wantErr error
	}{
		{
			name: "event not found",
			setup: func(f *registrationFixture) (string, string) {
				return f.store.addUser("A", "a@example.com", domain.RoleStudent).ID, "missing"
			},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name: "paid event",
			setup: func(f *registrationFixture) (string, string) {
				return f.store.addUser("A", "a@example.com", domain.RoleStudent).ID, f.store.addEvent("Paid", 10, 500).ID
			},
			wantErr: domain.ErrPaymentRequired,
		},
		{
			name: "paid and full reports payment required first",
			setup: func(f *registrationFixture) (string, string) {
				e := f.store.addEvent("Paid", 1, 500)
				f.store.events[e.ID].TotalRegistrations = 1
				return f.store.addUser("A", "a@example.com", domain.RoleStudent).ID, e.ID
			},
			wantErr: domain.ErrPaymentRequired,
		},
		{
			name: "already registered on a full event reports already registered",
			setup: func(f *registrationFixture) (string, string) {
				u := f.store.addUser("A", "a@example.com", domain.RoleStudent)
				e := f.store.addEvent("Free", 1, 0)
				_, err := f.svc.RegisterFree(ctx, u.ID, e.ID)
				require.NoError(t, err)
				return u.ID, e.ID
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "full",
			setup: func(f *registrationFixture) (string, string) {
				e := f.store.addEvent("Free", 1, 0)
				f.store.events[e.ID].TotalRegistrations = 1
				return f.store.addUser("A", "a@example.com", domain.RoleStudent).ID, e.ID
			},
			wantErr: domain.ErrEventFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			userID, eventID := tt.setup(f)
			before := f.store.regCount()

			reg, err := f.svc.RegisterFree(ctx, userID, eventID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, reg)
			assert.Equal(t, before, f.store.regCount())
		})
	}
}

func TestRegistrationService_RegisterFree_TicketFailurePersistsNothing(t *testing.T) {
	f := newRegistrationFixture()
	f.issuer.err = errors.New("encoder exploded")
	user := f.store.addUser("A", "a@example.com", domain.RoleStudent)
	event := f.store.addEvent("Free", 5, 0)

	_, err := f.svc.RegisterFree(context.Background(), user.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrTicketRender)
	assert.Zero(t, f.store.regCount())
	assert.Zero(t, f.store.event(event.ID).TotalRegistrations)
	assert.Zero(t, f.notifier.count())
}

func TestRegistrationService_RegisterFree_LastSeatRace(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	event := f.store.addEvent("Tiny", 1, 0)
	users := make([]*domain.User, 8)
	for i := range users {
		users[i] = f.store.addUser("U", "u"+string(rune('a'+i))+"@example.com", domain.RoleStudent)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.svc.RegisterFree(ctx, userID, event.ID)
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrEventFull)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, f.store.event(event.ID).TotalRegistrations)
	assert.Equal(t, 1, f.store.regCount())
}

func TestRegistrationService_CompletePaidRegistration(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	user := f.store.addUser("A", "a@example.com", domain.RoleStudent)
	event := f.store.addEvent("Concert", 10, 500)

	reg, created, err := f.svc.CompletePaidRegistration(ctx, user.ID, event.ID, "pay_1")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, reg.PaymentID)
	assert.Equal(t, "pay_1", *reg.PaymentID)
	assert.Equal(t, "pay_1", f.issuer.issued[0].PaymentID)

	again, created, err := f.svc.CompletePaidRegistration(ctx, user.ID, event.ID, "pay_2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, reg.ID, again.ID)
	assert.Equal(t, 1, f.store.event(event.ID).TotalRegistrations)
	assert.Equal(t, 1, f.notifier.count())
}

func TestRegistrationService_CompletePaidRegistration_Full(t *testing.T) {
	f := newRegistrationFixture()
	user := f.store.addUser("A", "a@example.com", domain.RoleStudent)
	event := f.store.addEvent("Concert", 1, 500)
	f.store.events[event.ID].TotalRegistrations = 1

	_, _, err := f.svc.CompletePaidRegistration(context.Background(), user.ID, event.ID, "pay_1")
	assert.ErrorIs(t, err, domain.ErrEventFull)
}

func TestRegistrationService_CancelReleasesSeat(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	alice := f.store.addUser("Alice", "alice@example.com", domain.RoleStudent)
	bob := f.store.addUser("Bob", "bob@example.com", domain.RoleStudent)
	event := f.store.addEvent("Tiny", 1, 0)

	reg, err := f.svc.RegisterFree(ctx, alice.ID, event.ID)
	require.NoError(t, err)
	_, err = f.svc.RegisterFree(ctx, bob.ID, event.ID)
	require.ErrorIs(t, err, domain.ErrEventFull)

	require.NoError(t, f.svc.Cancel(ctx, reg.ID))
	assert.Zero(t, f.store.event(event.ID).TotalRegistrations)
	assert.ErrorIs(t, f.svc.Cancel(ctx, reg.ID), domain.ErrRegistrationNotFound)

	_, err = f.svc.RegisterFree(ctx, bob.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.event(event.ID).TotalRegistrations)
}

func TestRegistrationService_ListMine(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	user := f.store.addUser("A", "a@example.com", domain.RoleStudent)
	older := f.store.addEvent("Older", 5, 0)
	newer := f.store.addEvent("Newer", 5, 0)
	gone := f.store.addEvent("Gone", 5, 0)

	clock := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	f.svc.(*registrationService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	for _, e := range []*domain.Event{older, newer, gone} {
		_, err := f.svc.RegisterFree(ctx, user.ID, e.ID)
		require.NoError(t, err)
	}
	delete(f.store.events, gone.ID)

	list, err := f.svc.ListMine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Event.Title)
	assert.Equal(t, "Older", list[1].Event.Title)
}

func TestRegistrationService_GetTicket(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture()
	user := f.store.addUser("Alice", "alice@example.com", domain.RoleStudent)
	event := f.store.addEvent("Expo", 5, 0)

	_, err := f.svc.GetTicket(ctx, user.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	reg, err := f.svc.RegisterFree(ctx, user.ID, event.ID)
	require.NoError(t, err)

	view, err := f.svc.GetTicket(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, view.TicketID)
	assert.Equal(t, reg.QRCode, view.QRCode)
	assert.Equal(t, "Expo", view.EventName)
	assert.Equal(t, "Main Hall", view.Venue)
	assert.Equal(t, "Alice", view.UserName)
	assert.Equal(t, "alice@example.com", view.UserEmail)
}
