package web

import (
	"errors"
	"net/http"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/boost"
	"github.com/avstrong/ratecal/internal/calendar"
)

type errorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	// Violation details a rejected stay restriction.
	Violation *calendar.RestrictionViolation `json:"violation,omitempty"`
}

func bookingMessage(e *calendar.BookingError) string {
	switch e.Kind {
	case calendar.KindStopSale:
		return "Stop Sale active for selected dates"
	case calendar.KindRoomOccupied:
		return "Room already booked for these dates"
	case calendar.KindRestriction:
		if e.Violation != nil {
			switch e.Violation.Kind {
			case calendar.RestrictionMinStay:
				return "Minimum stay not met: " + e.Violation.String()
			case calendar.RestrictionClosedArrival:
				return "Arrival not allowed: " + e.Violation.String()
			case calendar.RestrictionClosedDeparture:
				return "Departure not allowed: " + e.Violation.String()
			}
		}

		return "Stay violates rate restrictions"
	}

	return e.Error()
}

// writeError maps err to a status and body. Unknown errors are logged and
// answered with 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if inputErr := booking.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, inputErr.Fields())

		return
	}

	if bookingErr := calendar.IsBookingError(err); bookingErr != nil {
		s.writeJSON(w, http.StatusConflict, errorBody{
			Kind:      string(bookingErr.Kind),
			Message:   bookingMessage(bookingErr),
			Violation: bookingErr.Violation,
		})

		return
	}

	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		s.l.LogErrorf("Request failed: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, status, errorBody{Kind: kind, Message: err.Error(), Violation: nil})
}

func classify(err error) (int, string) {
	switch {
	case calendar.IsInvalidRangeError(err) != nil:
		return http.StatusBadRequest, "invalid-range"
	case calendar.IsEmptySelectionError(err) != nil:
		return http.StatusUnprocessableEntity, "empty-selection"
	case calendar.IsInvalidTransitionError(err) != nil:
		return http.StatusConflict, "invalid-transition"
	case errors.Is(err, booking.ErrAdvisorUnavailable):
		return http.StatusServiceUnavailable, "advisor-unavailable"
	case errors.Is(err, booking.ErrRecordNotFound),
		errors.Is(err, calendar.ErrRoomNotFound),
		errors.Is(err, calendar.ErrReservationNotFound):
		return http.StatusNotFound, "not-found"
	case errors.Is(err, booking.ErrVersionConflict), errors.Is(err, booking.ErrPropertyBusy):
		return http.StatusConflict, "concurrent-update"
	case errors.Is(err, booking.ErrIdempotencyKey),
		errors.Is(err, calendar.ErrInvalidPatch),
		errors.Is(err, calendar.ErrInvalidSuggestion),
		errors.Is(err, boost.ErrUnknownAction),
		errors.Is(err, boost.ErrInvalidValue):
		return http.StatusBadRequest, "invalid-request"
	}

	return http.StatusInternalServerError, ""
}
