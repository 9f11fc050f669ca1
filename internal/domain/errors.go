package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInventoryExhausted = errors.New("inventory exhausted")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrSeatTaken          = errors.New("seat already taken")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError is a caller fault tied to one input field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type ExhaustedError struct {
	FlightID int64
	Class    SeatClass
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no %s seats left on flight %d", e.Class, e.FlightID)
}

func (e *ExhaustedError) Unwrap() error { return ErrInventoryExhausted }

type TransitionError struct {
	OrderID uuid.UUID
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type SeatTakenError struct {
	FlightID   int64
	SeatNumber string
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %s is already taken on flight %d", e.SeatNumber, e.FlightID)
}

func (e *SeatTakenError) Unwrap() error { return ErrSeatTaken }
