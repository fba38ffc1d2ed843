package calendar

import "fmt"

// HasConflict reports whether a non-cancelled reservation of roomID other than
// excludeID overlaps [checkIn, checkOut). Back-to-back stays do not overlap.
func HasConflict(reservations []Reservation, roomID string, checkIn, checkOut Date, excludeID string) bool {
	for _, other := range reservations {
		if other.RoomID != roomID || other.Status == StatusCancelled {
			continue
		}

		if excludeID != "" && other.ID == excludeID {
			continue
		}

		if checkIn.Before(other.CheckOut) && checkOut.After(other.CheckIn) {
			return true
		}
	}

	return false
}

func (e *Engine) HasStopSale(room Room, checkIn, checkOut Date) bool {
	for _, d := range stayDates(checkIn, checkOut) {
		if e.ResolveRate(room, d).StopSale {
			return true
		}
	}

	return false
}

// ViolatesRestrictions returns the first broken arrival, departure or length of
// stay rule, or nil.
func (e *Engine) ViolatesRestrictions(room Room, checkIn, checkOut Date) *RestrictionViolation {
	arrival := e.ResolveRate(room, checkIn)
	nights := Nights(checkIn, checkOut)

	if arrival.MinStay > nights {
		return &RestrictionViolation{
			Kind:    RestrictionMinStay,
			Date:    checkIn,
			MinStay: arrival.MinStay,
			Nights:  nights,
		}
	}

	if arrival.ClosedForArrival {
		return &RestrictionViolation{Kind: RestrictionClosedArrival, Date: checkIn} //nolint:exhaustruct
	}

	lastNight := checkOut.AddDays(-1)
	if e.ResolveRate(room, lastNight).ClosedForDeparture {
		return &RestrictionViolation{Kind: RestrictionClosedDeparture, Date: lastNight} //nolint:exhaustruct
	}

	return nil
}

// ValidateBooking checks candidate against the room's rates and the other
// reservations. It must pass before a reservation is created or moved.
func (e *Engine) ValidateBooking(rooms []Room, reservations []Reservation, candidate Reservation) error {
	if !candidate.CheckIn.Before(candidate.CheckOut) {
		return &InvalidRangeError{From: candidate.CheckIn, To: candidate.CheckOut}
	}

	room, ok := findRoom(rooms, candidate.RoomID)
	if !ok {
		return fmt.Errorf("room %q: %w", candidate.RoomID, ErrRoomNotFound)
	}

	if e.HasStopSale(room, candidate.CheckIn, candidate.CheckOut) {
		return &BookingError{Kind: KindStopSale, RoomID: room.ID} //nolint:exhaustruct
	}

	if HasConflict(reservations, room.ID, candidate.CheckIn, candidate.CheckOut, candidate.ID) {
		return &BookingError{Kind: KindRoomOccupied, RoomID: room.ID} //nolint:exhaustruct
	}

	if violation := e.ViolatesRestrictions(room, candidate.CheckIn, candidate.CheckOut); violation != nil {
		return &BookingError{Kind: KindRestriction, RoomID: room.ID, Violation: violation}
	}

	return nil
}
