package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusticketing/internal/delivery/http/controllers"
	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/delivery/http/middleware"
	"campusticketing/internal/domain"
)

// RouterConfig holds the controllers and the request guards the routes are built from.
// Limiter may be nil, in which case rate-limited routes are unthrottled.
type RouterConfig struct {
	Users         *controllers.UserController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Payments      *controllers.PaymentController
	CheckIn       *controllers.CheckInController
	Admin         *controllers.AdminController

	Verifier domain.TokenVerifier
	Limiter  middleware.Limiter
	Logger   *slog.Logger
}

type wrapper = func(http.HandlerFunc) http.HandlerFunc

// chain applies wrappers so that the first one runs first.
func chain(h http.HandlerFunc, wrappers ...wrapper) http.HandlerFunc {
	for i := len(wrappers) - 1; i >= 0; i-- {
		h = wrappers[i](h)
	}
	return h
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	optional := middleware.OptionalAuth(cfg.Verifier)
	limited := middleware.RateLimit(cfg.Limiter, cfg.Logger)
	can := middleware.RequirePermission

	// Auth
	mux.HandleFunc("POST /auth/signup", cfg.Users.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Users.Login)
	mux.HandleFunc("POST /auth/password-reset/request", chain(cfg.Users.RequestPasswordReset, limited))
	mux.HandleFunc("POST /auth/password-reset/verify", chain(cfg.Users.VerifyPasswordReset, limited))
	mux.HandleFunc("POST /auth/password-reset/confirm", chain(cfg.Users.ConfirmPasswordReset, limited))

	// Profile
	mux.HandleFunc("GET /users/me", chain(cfg.Users.GetMe, auth))
	mux.HandleFunc("PATCH /users/me", chain(cfg.Users.UpdateMe, auth))

	// Events
	mux.HandleFunc("GET /events", chain(cfg.Events.ListEvents, optional))
	mux.HandleFunc("GET /events/{eventID}", cfg.Events.GetEvent)
	mux.HandleFunc("POST /events", chain(cfg.Events.CreateEvent, auth, can(domain.PermManageEvents)))
	mux.HandleFunc("PATCH /events/{eventID}", chain(cfg.Events.UpdateEvent, auth, can(domain.PermManageEvents)))
	mux.HandleFunc("DELETE /events/{eventID}", chain(cfg.Events.DeleteEvent, auth, can(domain.PermManageEvents)))
	mux.HandleFunc("GET /events/{eventID}/ticket", chain(cfg.Registrations.GetTicket, auth))

	// Registrations
	mux.HandleFunc("POST /registrations/events/{eventID}", chain(cfg.Registrations.RegisterFree, auth))
	mux.HandleFunc("GET /registrations/me", chain(cfg.Registrations.ListMine, auth))
	mux.HandleFunc("DELETE /registrations/{registrationID}", chain(cfg.Registrations.Cancel, auth, can(domain.PermCancelRegistrations)))

	// Payments
	mux.HandleFunc("POST /payments/orders", chain(cfg.Payments.CreateOrder, limited, auth))
	mux.HandleFunc("POST /payments/verify", chain(cfg.Payments.VerifyPayment, limited, auth))

	// Check-in
	mux.HandleFunc("POST /checkin", chain(cfg.CheckIn.CheckIn, limited, auth, can(domain.PermCheckIn)))

	// Admin
	mux.HandleFunc("GET /admin/users", chain(cfg.Admin.ListUsers, auth, can(domain.PermViewUsers)))
	mux.HandleFunc("GET /admin/registrations", chain(cfg.Admin.ListRegistrations, auth, can(domain.PermViewAllRegistrations)))
	mux.HandleFunc("GET /admin/payments", chain(cfg.Admin.ListPayments, auth, can(domain.PermViewPayments)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
