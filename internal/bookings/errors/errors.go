package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSlotUnavailable = errors.New("slot is already booked")

	ErrSchedulingConflict = errors.New("booking is too close to another booking")

	ErrInvalidReference = errors.New("invalid booking reference")

	ErrDuplicateBooking = errors.New("booking already exists")

	ErrInvalidBooking = errors.New("booking is inconsistent with its event")
)

// SlotUnavailableError means a confirmed booking already holds the teacher
// at that start instant.
type SlotUnavailableError struct {
	TeacherID string
	StartTime time.Time
	BookingID string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("%s: teacher %s at %s", ErrSlotUnavailable, e.TeacherID, e.StartTime.Format(time.RFC3339))
}

func (e *SlotUnavailableError) Unwrap() error { return ErrSlotUnavailable }

// SchedulingConflictError means the parent already has a confirmed booking
// starting less than RequiredGap away from the proposed start.
type SchedulingConflictError struct {
	RequiredGap          time.Duration
	ActualGap            time.Duration
	ConflictingBookingID string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("%s: %s requires at least %d minutes, found %d",
		ErrSchedulingConflict, e.ConflictingBookingID, e.RequiredMinutes(), e.ActualMinutes())
}

func (e *SchedulingConflictError) Unwrap() error { return ErrSchedulingConflict }

func (e *SchedulingConflictError) RequiredMinutes() int { return int(e.RequiredGap / time.Minute) }

func (e *SchedulingConflictError) ActualMinutes() int { return int(e.ActualGap / time.Minute) }

// InvalidReferenceError names the reference that did not resolve.
type InvalidReferenceError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %q %s", ErrInvalidReference, e.Field, e.Value, e.Reason)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

func InvalidReference(field, value, reason string) error {
	return &InvalidReferenceError{Field: field, Value: value, Reason: reason}
}
