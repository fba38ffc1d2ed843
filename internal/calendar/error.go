package calendar

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidPatch        = errors.New("invalid rate patch")
	ErrInvalidSuggestion   = errors.New("invalid pricing suggestion")

	// Matched by *BookingError through errors.Is.
	ErrStopSale     = errors.New("stop sale active for selected dates")
	ErrRoomOccupied = errors.New("room already booked for these dates")
	ErrRestriction  = errors.New("stay violates rate restrictions")
)

type InvalidRangeError struct {
	From Date
	To   Date
}

func IsInvalidRangeError(err error) *InvalidRangeError {
	var rangeErr *InvalidRangeError

	if errors.As(err, &rangeErr) {
		return rangeErr
	}

	return nil
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %s..%s: end must be after start", e.From, e.To)
}

type BookingErrorKind string

const (
	KindStopSale     BookingErrorKind = "stop-sale"
	KindRoomOccupied BookingErrorKind = "room-occupied"
	KindRestriction  BookingErrorKind = "restriction"
)

type RestrictionKind string

const (
	RestrictionMinStay         RestrictionKind = "min-stay"
	RestrictionClosedArrival   RestrictionKind = "closed-arrival"
	RestrictionClosedDeparture RestrictionKind = "closed-departure"
)

type RestrictionViolation struct {
	Kind RestrictionKind `json:"kind"`
	Date Date            `json:"date"`
	// MinStay and Nights are set for RestrictionMinStay only.
	MinStay int `json:"minStay,omitempty"`
	Nights  int `json:"nights,omitempty"`
}

func (v *RestrictionViolation) String() string {
	switch v.Kind {
	case RestrictionMinStay:
		return fmt.Sprintf("minimum stay of %d nights from %s, requested %d", v.MinStay, v.Date, v.Nights)
	case RestrictionClosedArrival:
		return fmt.Sprintf("closed for arrival on %s", v.Date)
	case RestrictionClosedDeparture:
		return fmt.Sprintf("closed for departure on %s", v.Date)
	}

	return string(v.Kind)
}

// BookingError is a routine business-rule rejection of a booking or a move.
type BookingError struct {
	Kind      BookingErrorKind
	RoomID    string
	Violation *RestrictionViolation
}

func IsBookingError(err error) *BookingError {
	var bookingErr *BookingError

	if errors.As(err, &bookingErr) {
		return bookingErr
	}

	return nil
}

func (e *BookingError) Error() string {
	switch e.Kind {
	case KindStopSale:
		return fmt.Sprintf("room %s: %v", e.RoomID, ErrStopSale)
	case KindRoomOccupied:
		return fmt.Sprintf("room %s: %v", e.RoomID, ErrRoomOccupied)
	case KindRestriction:
		return fmt.Sprintf("room %s: %v: %s", e.RoomID, ErrRestriction, e.Violation)
	}

	return fmt.Sprintf("room %s: booking rejected (%s)", e.RoomID, e.Kind)
}

func (e *BookingError) Is(target error) bool {
	switch target {
	case ErrStopSale:
		return e.Kind == KindStopSale
	case ErrRoomOccupied:
		return e.Kind == KindRoomOccupied
	case ErrRestriction:
		return e.Kind == KindRestriction
	}

	return false
}

// EmptySelectionError means a range and weekday mask matched no dates.
type EmptySelectionError struct {
	From Date
	To   Date
	Days DayMask
}

func IsEmptySelectionError(err error) *EmptySelectionError {
	var selectionErr *EmptySelectionError

	if errors.As(err, &selectionErr) {
		return selectionErr
	}

	return nil
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no dates selected in %s..%s with day mask %07b", e.From, e.To, e.Days)
}

type InvalidTransitionError struct {
	ReservationID string
	From          Status
	To            Status
}

func IsInvalidTransitionError(err error) *InvalidTransitionError {
	var transitionErr *InvalidTransitionError

	if errors.As(err, &transitionErr) {
		return transitionErr
	}

	return nil
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation %s cannot move from %s to %s", e.ReservationID, e.From, e.To)
}
