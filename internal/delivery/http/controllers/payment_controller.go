package controllers

import (
	"log/slog"
	"net/http"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/domain"
)

// CreateOrderRequest is the request body for POST /payments/orders.
type CreateOrderRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

// VerifyPaymentRequest is the request body for POST /payments/verify, carrying the values
// the gateway checkout hands back to the client.
type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	EventID   string `json:"event_id" validate:"required,uuid"`
}

// CheckoutOrderSuccessResponse is the success response envelope for POST /payments/orders (201).
type CheckoutOrderSuccessResponse struct {
	Data  *domain.CheckoutOrder `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// VerifyPaymentSuccessResponse is the success response envelope for POST /payments/verify (200).
type VerifyPaymentSuccessResponse struct {
	Data  *domain.VerifiedPayment `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// PaymentController serves the paid registration flow.
type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateOrder godoc
// @Summary Create a payment order
// @Description Opens a gateway order for a paid event and returns what the checkout widget needs.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body CreateOrderRequest true "Event to pay for"
// @Success 201 {object} controllers.CheckoutOrderSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/orders [post]
func (c *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	order, err := c.Service.CreateOrder(r.Context(), claims.UserID, req.EventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, order)
}

// VerifyPayment godoc
// @Summary Verify a payment callback
// @Description Checks the gateway signature, settles the order and completes the registration. Repeating a verified callback is a no-op.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body VerifyPaymentRequest true "Gateway callback"
// @Success 200 {object} controllers.VerifyPaymentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/verify [post]
func (c *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req VerifyPaymentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	out, err := c.Service.VerifyPayment(r.Context(), claims.UserID, domain.PaymentVerification{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		EventID:   req.EventID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}
