package controllers

import (
	"log/slog"
	"net/http"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/domain"
)

// RegistrationListSuccessResponse is the success response envelope for GET /admin/registrations (200).
type RegistrationListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.RegistrationDetail] `json:"data"`
	Error *helpers.APIError                                `json:"error"`
}

// PaymentListSuccessResponse is the success response envelope for GET /admin/payments (200).
type PaymentListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.PaymentDetail] `json:"data"`
	Error *helpers.APIError                           `json:"error"`
}

// UserListSuccessResponse is the success response envelope for GET /admin/users (200).
type UserListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.UserStats] `json:"data"`
	Error *helpers.APIError                       `json:"error"`
}

// AdminController serves the organizer listings.
type AdminController struct {
	Logger        *slog.Logger
	Users         domain.UserService
	Registrations domain.RegistrationService
	Payments      domain.PaymentService
}

func NewAdminController(logger *slog.Logger, users domain.UserService, registrations domain.RegistrationService, payments domain.PaymentService) *AdminController {
	return &AdminController{
		Logger:        logger,
		Users:         users,
		Registrations: registrations,
		Payments:      payments,
	}
}

// ListUsers godoc
// @Summary List all users
// @Description Newest first, with how many events each user registered for split into paid and free.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.UserListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Users.ListUsers(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(items, params, total))
}

// ListRegistrations godoc
// @Summary List all registrations
// @Description Newest first, with user and event summaries. Event is null when the event was deleted.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Registrations.ListAll(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(items, params, total))
}

// ListPayments godoc
// @Summary List all payments
// @Description Newest first, with user and event summaries.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PaymentListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/payments [get]
func (c *AdminController) ListPayments(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Payments.ListAll(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(items, params, total))
}
