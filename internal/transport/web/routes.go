package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/boost"
	"github.com/avstrong/ratecal/internal/calendar"
)

const idempotencyHeader = "Idempotency-Key"

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

// decode reads the JSON body into v and answers 400 itself when it cannot.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Kind: "invalid-body", Message: err.Error(), Violation: nil})

		return false
	}

	return true
}

func (s *Server) propertyHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.bManager.Property(r.Context(), r.PathValue("hotelID"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.QuoteRequest
	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.bManager.Quote(r.Context(), r.PathValue("hotelID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createReservationHandler(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get(idempotencyHeader)
	if idempotencyKey == "" {
		http.Error(w, "Idempotency-Key header is missing", http.StatusBadRequest)

		return
	}

	var input booking.BookInput
	if !s.decode(w, r, &input) {
		return
	}

	ctx := booking.NewContextWithIdempotencyKey(r.Context(), idempotencyKey)

	out, err := s.bManager.CreateReservation(ctx, r.PathValue("hotelID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) moveReservationHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.MoveInput
	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.bManager.MoveReservation(r.Context(), r.PathValue("hotelID"), r.PathValue("reservationID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) changeStatusHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.StatusInput
	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.bManager.ChangeStatus(r.Context(), r.PathValue("hotelID"), r.PathValue("reservationID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) bulkRatesHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.BulkRatesInput
	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.bManager.BulkUpdate(r.Context(), r.PathValue("hotelID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

type quickActionRequest struct {
	RoomType calendar.RoomType `json:"roomType"`
	Date     calendar.Date     `json:"date"`
	boost.Params
}

func (s *Server) quickActionHandler(w http.ResponseWriter, r *http.Request) {
	var req quickActionRequest
	if !s.decode(w, r, &req) {
		return
	}

	strategy, err := boost.Lookup(req.Params)
	if err != nil {
		s.writeError(w, err)

		return
	}

	out, err := s.bManager.QuickAction(r.Context(), r.PathValue("hotelID"), &booking.QuickActionInput{
		RoomType: req.RoomType,
		Date:     req.Date,
		Strategy: strategy,
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) suggestionHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := booking.SuggestionRequest{
		RoomType:        calendar.RoomType(q.Get("roomType")),
		From:            calendar.Date(q.Get("from")),
		To:              calendar.Date(q.Get("to")),
		CompetitorPrice: 0,
		Language:        q.Get("language"),
	}

	if raw := q.Get("competitorPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string][]string{"competitorPrice": {"competitorPrice must be a number"}})

			return
		}

		req.CompetitorPrice = price
	}

	out, err := s.bManager.SuggestPricing(r.Context(), r.PathValue("hotelID"), &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) applySuggestionHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.ApplySuggestionInput
	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.bManager.ApplySuggestion(r.Context(), r.PathValue("hotelID"), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) priceChangesHandler(w http.ResponseWriter, r *http.Request) {
	var limit int

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string][]string{"limit": {"limit must be an integer"}})

			return
		}

		limit = n
	}

	out, err := s.bManager.PriceHistory(r.Context(), r.PathValue("hotelID"), limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	out, err := s.bManager.Stats(r.Context(), r.PathValue("hotelID"), calendar.Date(q.Get("from")), calendar.Date(q.Get("to")))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) gridHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	out, err := s.bManager.Grid(r.Context(), r.PathValue("hotelID"), calendar.Date(q.Get("from")), calendar.Date(q.Get("to")))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	api := map[string]http.HandlerFunc{
		"GET /api/hotels/{hotelID}":                                      s.propertyHandler,
		"POST /api/hotels/{hotelID}/quotes":                              s.quoteHandler,
		"POST /api/hotels/{hotelID}/reservations":                        s.createReservationHandler,
		"POST /api/hotels/{hotelID}/reservations/{reservationID}/move":   s.moveReservationHandler,
		"POST /api/hotels/{hotelID}/reservations/{reservationID}/status": s.changeStatusHandler,
		"POST /api/hotels/{hotelID}/rates/bulk":                          s.bulkRatesHandler,
		"POST /api/hotels/{hotelID}/rates/quick":                         s.quickActionHandler,
		"GET /api/hotels/{hotelID}/rates/suggestion":                     s.suggestionHandler,
		"POST /api/hotels/{hotelID}/rates/suggestion":                    s.applySuggestionHandler,
		"GET /api/hotels/{hotelID}/price-changes":                        s.priceChangesHandler,
		"GET /api/hotels/{hotelID}/stats":                                s.statsHandler,
		"GET /api/hotels/{hotelID}/calendar":                             s.gridHandler,
	}

	for pattern, handler := range api {
		r.Handle(
			pattern,
			s.applyMiddlewares(handler, s.userMiddleware(), s.rateLimitMiddleware(), s.loggerMiddleware(), s.recoverMiddleware()),
		)
	}

	r.Handle(
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint),
		s.applyMiddlewares(http.HandlerFunc(s.livenessHandler), s.loggerMiddleware(), s.recoverMiddleware()),
	)
}
