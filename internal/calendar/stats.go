package calendar

import "math"

// Occupant returns the non-cancelled reservation holding roomID on the night of d.
func Occupant(reservations []Reservation, roomID string, d Date) (Reservation, bool) {
	for _, res := range reservations {
		if res.RoomID != roomID || res.Status == StatusCancelled {
			continue
		}

		if !d.Before(res.CheckIn) && d.Before(res.CheckOut) {
			return res, true
		}
	}

	return Reservation{}, false
}

type DailyMetrics struct {
	Date       Date    `json:"date"`
	Occupied   int     `json:"occupied"`
	Arrivals   int     `json:"arrivals"`
	Departures int     `json:"departures"`
	Revenue    float64 `json:"revenue"`
	ADR        float64 `json:"adr"`
}

type Metrics struct {
	From          Date           `json:"from"`
	To            Date           `json:"to"`
	Revenue       float64        `json:"revenue"`
	Bookings      int            `json:"bookings"`
	Cancellations int            `json:"cancellations"`
	RoomNights    int            `json:"roomNights"`
	ADR           float64        `json:"adr"`
	Occupancy     float64        `json:"occupancy"`
	Sources       map[string]int `json:"sources"`
	Daily         []DailyMetrics `json:"daily"`
}

func earnsRevenue(s Status) bool {
	return s != StatusCancelled && s != StatusRefunded
}

// Summarize reports revenue and occupancy for the nights from..to inclusive.
// A reservation's amount is spread evenly over its nights. Cancelled and
// refunded reservations are left out of every figure except Cancellations.
func Summarize(rooms []Room, reservations []Reservation, from, to Date) (Metrics, error) {
	dates, err := DatesInRange(from, to)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		From:    from,
		To:      to,
		Sources: make(map[string]int),
		Daily:   make([]DailyMetrics, len(dates)),
	}

	index := make(map[Date]int, len(dates))
	for i, d := range dates {
		index[d] = i
		m.Daily[i].Date = d
	}

	windowEnd := to.AddDays(1)

	for _, res := range reservations {
		if i, ok := index[res.CheckIn]; ok && earnsRevenue(res.Status) {
			m.Daily[i].Arrivals++
		}

		if i, ok := index[res.CheckOut]; ok && earnsRevenue(res.Status) {
			m.Daily[i].Departures++
		}

		if !res.CheckIn.Before(windowEnd) || !res.CheckOut.After(from) {
			continue
		}

		if res.Status == StatusCancelled {
			m.Cancellations++

			continue
		}

		if !earnsRevenue(res.Status) {
			continue
		}

		m.Bookings++
		m.Sources[res.Source]++

		nightly := res.Amount / math.Max(1, float64(res.Nights()))

		for _, d := range stayDates(res.CheckIn, res.CheckOut) {
			i, ok := index[d]
			if !ok {
				continue
			}

			m.Daily[i].Occupied++
			m.Daily[i].Revenue += nightly
			m.RoomNights++
			m.Revenue += nightly
		}
	}

	for i := range m.Daily {
		if m.Daily[i].Occupied > 0 {
			m.Daily[i].ADR = m.Daily[i].Revenue / float64(m.Daily[i].Occupied)
		}
	}

	if m.RoomNights > 0 {
		m.ADR = m.Revenue / float64(m.RoomNights)
	}

	if capacity := len(rooms) * len(dates); capacity > 0 {
		m.Occupancy = math.Min(100, float64(m.RoomNights)/float64(capacity)*100) //nolint:gomnd
	}

	return m, nil
}
