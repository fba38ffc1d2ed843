package calendar

import (
	"fmt"
	"slices"
)

type RelocateInput struct {
	ReservationID string
	RoomID        string
	CheckIn       Date
}

// Relocate moves a reservation to another room and/or arrival date keeping its
// length of stay. The moved reservation is validated against every other
// reservation; on failure the input is left as it was.
func (e *Engine) Relocate(rooms []Room, reservations []Reservation, in RelocateInput) (Reservation, error) {
	idx := slices.IndexFunc(reservations, func(r Reservation) bool { return r.ID == in.ReservationID })
	if idx < 0 {
		return Reservation{}, fmt.Errorf("reservation %q: %w", in.ReservationID, ErrReservationNotFound)
	}

	original := reservations[idx]

	moved := original.Clone()
	moved.RoomID = in.RoomID
	moved.CheckIn = in.CheckIn
	moved.CheckOut = in.CheckIn.AddDays(original.Nights())

	if err := e.ValidateBooking(rooms, reservations, moved); err != nil {
		return Reservation{}, err
	}

	return moved, nil
}
