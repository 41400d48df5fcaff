package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"campusticketing/internal/domain"
)

// memStore is an in-memory database shared by the fake repositories. It enforces the
// same capacity and uniqueness rules as the Postgres schema.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*domain.User
	events   map[string]*domain.Event
	regs     map[string]*domain.Registration
	payments map[string]*domain.Payment
	resets   map[string]fakeResetCode

	// failCreate makes CreateWithSeat return the error once it is set.
	failCreate error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*domain.User),
		events:   make(map[string]*domain.Event),
		regs:     make(map[string]*domain.Registration),
		payments: make(map[string]*domain.Payment),
		resets:   make(map[string]fakeResetCode),
	}
}

// nextID returns a fresh uuid-shaped id.
func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
}

func (m *memStore) addUser(name, email string, role domain.Role) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := domain.NewUser(email, name, role, "hash", "salt", time.Now(), time.Now())
	u.ID = m.nextID()
	m.users[u.ID] = u
	return u
}

func (m *memStore) addEvent(title string, capacity int, price int64) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := domain.NewEvent(title, "", "Main Hall", time.Date(2026, 11, 20, 10, 0, 0, 0, time.UTC), capacity, price, domain.CategoryTechnical, "", time.Now(), time.Now())
	e.ID = m.nextID()
	m.events[e.ID] = e
	return e
}

func (m *memStore) event(id string) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := *m.events[id]
	return &e
}

func (m *memStore) regCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regs)
}

type fakeUserRepo struct{ *memStore }

func (f fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range f.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f fakeUserRepo) ListWithStats(ctx context.Context, params domain.PaginationParams) ([]*domain.UserStats, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.UserStats{}
	for _, u := range f.users {
		st := &domain.UserStats{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
		for _, r := range f.regs {
			if r.UserID != u.ID {
				continue
			}
			st.EventsRegistered++
			if e, ok := f.events[r.EventID]; ok {
				if e.Price > 0 {
					st.PaidEvents++
				} else {
					st.FreeEvents++
				}
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return out[start:end], total, nil
}

type fakeResetCode struct {
	hash      string
	expiresAt time.Time
}

// fakeResetRepo keeps one code per lowercased email, like the Postgres table.
type fakeResetRepo struct{ *memStore }

func (f fakeResetRepo) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[strings.ToLower(email)] = fakeResetCode{hash: codeHash, expiresAt: expiresAt}
	return nil
}

func (f fakeResetRepo) Check(ctx context.Context, email, codeHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.resets[strings.ToLower(email)]
	return ok && c.hash == codeHash && time.Now().Before(c.expiresAt), nil
}

func (f fakeResetRepo) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(email)
	c, ok := f.resets[key]
	if !ok || c.hash != codeHash || !time.Now().Before(c.expiresAt) {
		return false, nil
	}
	delete(f.resets, key)
	return true, nil
}

// expireResets moves every stored reset code into the past.
func (m *memStore) expireResets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, c := range m.resets {
		c.expiresAt = time.Now().Add(-time.Second)
		m.resets[k] = c
	}
}

type fakeEventRepo struct{ *memStore }

func (f fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = f.nextID()
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.Event
	for _, e := range f.events {
		if filter.Category == "" || e.Category == filter.Category {
			cp := *e
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID < all[j].ID
		}
		return all[i].Date.Before(all[j].Date)
	})
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return all[start:end], total, nil
}

func (f fakeEventRepo) Update(ctx context.Context, eventID string, update *domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if update.Capacity != nil && *update.Capacity < e.TotalRegistrations {
		return nil, domain.ErrCapacityBelowRegistrations
	}
	if update.Title != nil {
		e.Title = *update.Title
	}
	if update.Venue != nil {
		e.Venue = *update.Venue
	}
	if update.Capacity != nil {
		e.Capacity = *update.Capacity
	}
	if update.Price != nil {
		e.Price = *update.Price
	}
	if update.Status != nil {
		e.Status = *update.Status
	}
	cp := *e
	return &cp, nil
}

func (f fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeRegistrationRepo struct{ *memStore }

func (f fakeRegistrationRepo) CreateWithSeat(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	e, ok := f.events[reg.EventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.TotalRegistrations >= e.Capacity {
		return domain.ErrEventFull
	}
	for _, r := range f.regs {
		if r.UserID == reg.UserID && r.EventID == reg.EventID {
			return domain.ErrAlreadyRegistered
		}
	}
	e.TotalRegistrations++
	reg.ID = f.nextID()
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRegistrationNotFound
}

func (f fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeRegistrationRepo) ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	regs, err := f.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.EventID)
	}
	return ids, nil
}

func (f fakeRegistrationRepo) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.RegistrationDetail, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RegistrationDetail
	for _, r := range f.regs {
		cp := *r
		d := &domain.RegistrationDetail{Registration: &cp}
		if u, ok := f.users[r.UserID]; ok {
			d.User = u.Summary()
		}
		if e, ok := f.events[r.EventID]; ok {
			d.Event = e.Summary()
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (f fakeRegistrationRepo) Delete(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	delete(f.regs, id)
	if e, ok := f.events[r.EventID]; ok && e.TotalRegistrations > 0 {
		e.TotalRegistrations--
	}
	return r, nil
}

func (f fakeRegistrationRepo) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.CheckInStatus != domain.CheckInPending {
		return false, nil
	}
	r.CheckInStatus = domain.CheckInArrived
	r.CheckInTime = &at
	return true, nil
}

type fakePaymentRepo struct{ *memStore }

func (f fakePaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[p.OrderID]; ok {
		return errors.New("duplicate order id")
	}
	p.ID = f.nextID()
	cp := *p
	f.payments[p.OrderID] = &cp
	return nil
}

func (f fakePaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[orderID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakePaymentRepo) MarkSuccess(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[orderID]
	if !ok || p.Status != domain.PaymentPending {
		return false, nil
	}
	p.Status = domain.PaymentSuccess
	p.PaymentID = &paymentID
	p.Signature = &signature
	return true, nil
}

func (f fakePaymentRepo) AttachTicket(ctx context.Context, orderID, qrCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[orderID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.QRCode = qrCode
	return nil
}

func (f fakePaymentRepo) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.PaymentDetail, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.PaymentDetail
	for _, p := range f.payments {
		cp := *p
		out = append(out, &domain.PaymentDetail{Payment: &cp})
	}
	return out, len(out), nil
}

// fakeIssuer renders tickets as the token bytes.
type fakeIssuer struct {
	mu     sync.Mutex
	err    error
	issued []domain.TicketClaims
}

func (f *fakeIssuer) Issue(claims domain.TicketClaims) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.issued = append(f.issued, claims)
	token, err := claims.Encode()
	if err != nil {
		return nil, err
	}
	return &domain.Ticket{Token: token, Image: []byte("png"), DataURL: "data:image/png;base64,cG5n"}, nil
}

// recordingNotifier captures notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.RegistrationNotification
}

func (r *recordingNotifier) NotifyRegistration(n domain.RegistrationNotification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// fakeGateway signs with a fixed rule: signature = "sig:" + orderID + "|" + paymentID.
type fakeGateway struct {
	mu        sync.Mutex
	orders    int
	createErr error
	lastOrder domain.GatewayOrder
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders++
	g.lastOrder = domain.GatewayOrder{ID: fmt.Sprintf("order_%d", g.orders), Amount: amount, Currency: currency, Receipt: receipt}
	o := g.lastOrder
	return &o, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "sig:"+orderID+"|"+paymentID
}

func gatewaySig(orderID, paymentID string) string {
	return "sig:" + orderID + "|" + paymentID
}
