package calendar

import "slices"

var transitions = map[Status][]Status{
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusRefunded},
	StatusCheckedIn: {StatusCheckedOut, StatusRefunded},
}

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusRefunded:
		return true
	}

	return false
}

// Terminal statuses accept no further transition.
func (s Status) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled || s == StatusRefunded
}

// Transition moves res to status to. Refunds also clear the paid flag.
// Room availability is not consulted.
func Transition(res Reservation, to Status) (Reservation, error) {
	if !slices.Contains(transitions[res.Status], to) {
		return Reservation{}, &InvalidTransitionError{ReservationID: res.ID, From: res.Status, To: to}
	}

	out := res.Clone()
	out.Status = to

	if to == StatusRefunded {
		out.Paid = false
	}

	return out, nil
}
