package calendar

// GridCell is one room on one date of the calendar view.
type GridCell struct {
	Date    Date      `json:"date"`
	Weekend bool      `json:"weekend"`
	Rate    DailyRate `json:"rate"`
	// Reservation holds the night, nil when the room is free.
	Reservation *Reservation `json:"reservation,omitempty"`
	// Locked cells belong to reservations that accept no further change.
	Locked bool `json:"locked"`
}

type GridRow struct {
	RoomID string     `json:"roomId"`
	Number string     `json:"number"`
	Type   RoomType   `json:"type"`
	Cells  []GridCell `json:"cells"`
}

// Grid lays out resolved rates and occupants of every room for from..to inclusive.
func (e *Engine) Grid(rooms []Room, reservations []Reservation, from, to Date) ([]GridRow, error) {
	dates, err := DatesInRange(from, to)
	if err != nil {
		return nil, err
	}

	grid := make([]GridRow, 0, len(rooms))

	for _, room := range rooms {
		row := GridRow{RoomID: room.ID, Number: room.Number, Type: room.Type, Cells: make([]GridCell, 0, len(dates))}

		for _, d := range dates {
			cell := GridCell{
				Date:        d,
				Weekend:     Weekends.Has(d.Weekday()),
				Rate:        e.ResolveRate(room, d),
				Reservation: nil,
				Locked:      false,
			}

			if res, ok := Occupant(reservations, room.ID, d); ok {
				res = res.Clone()
				cell.Reservation = &res
				cell.Locked = res.Status.Terminal()
			}

			row.Cells = append(row.Cells, cell)
		}

		grid = append(grid, row)
	}

	return grid, nil
}
