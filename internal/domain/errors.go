package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and repositories. The message of each error is the
// human-readable text returned to API clients.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEventNotFound = errors.New("event not found")
	ErrEventMismatch = errors.New("event does not match payment order")
)

// ErrCapacityBelowRegistrations is returned when an update would set capacity below the
// number of registrations already taken.
var ErrCapacityBelowRegistrations = errors.New("capacity cannot be lower than current registrations")

// Registration and payment flow errors.
var (
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrEventFull            = errors.New("event is full")
	ErrPaymentRequired      = errors.New("this event requires payment")
	ErrFreeEvent            = errors.New("this event is free")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrPaymentNotFound      = errors.New("payment order missing")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotRegistered        = errors.New("not registered for this event")
)

// Ticket and check-in errors.
var (
	ErrInvalidTicket  = errors.New("invalid code")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketRender   = errors.New("ticket rendering failed")
)

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidInput returns an error that matches ErrInvalidInput and carries msg as its text.
func InvalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}
