package booking

import (
	"time"

	"github.com/avstrong/ratecal/internal/calendar"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	// suggestionWindow is the number of dates, today included, an advisor looks
	// at and a suggestion is applied to when the caller gives no range.
	suggestionWindow = 8
	// DefaultMaxRangeDays bounds date ranges and stays when Conf leaves it unset.
	DefaultMaxRangeDays = 366
)

func checkDate(inputErr *InputError, field string, d calendar.Date) {
	if d == "" {
		inputErr.addError(field, "provide "+field)

		return
	}

	if !d.Valid() {
		inputErr.addError(field, field+" must be a YYYY-MM-DD date")
	}
}

func checkRoomType(inputErr *InputError, t calendar.RoomType) {
	if !t.Valid() {
		inputErr.addError("roomType", "provide one of Standard, Deluxe, Suite, Garden Villa")
	}
}

func (q *QuoteRequest) validate() error {
	inputErr := newInputError()

	if q.RoomID == "" {
		inputErr.addError("roomId", "provide roomId")
	}

	checkDate(inputErr, "checkIn", q.CheckIn)
	checkDate(inputErr, "checkOut", q.CheckOut)
	checkExtras(inputErr, q.Extras)

	return inputErr.orNil()
}

func checkExtras(inputErr *InputError, extras []calendar.ServiceItem) {
	for _, item := range extras {
		if item.Name == "" {
			inputErr.addError("extras.name", "provide extras.name")
		}

		if item.Price < 0 {
			inputErr.addError("extras.price", "extras.price must not be negative")
		}
	}
}

func (b *BookInput) validate() error {
	inputErr := newInputError()

	if b.GuestName == "" {
		inputErr.addError("guestName", "provide guestName")
	}

	if b.RoomID == "" {
		inputErr.addError("roomId", "provide roomId")
	}

	checkDate(inputErr, "checkIn", b.CheckIn)
	checkDate(inputErr, "checkOut", b.CheckOut)
	checkExtras(inputErr, b.Extras)

	return inputErr.orNil()
}

func (b *BookInput) prepare() {
	if b.Source == "" {
		b.Source = calendar.SourceDirect
	}

	if b.BoardType == "" {
		b.BoardType = calendar.RoomOnly
	}
}

func (mi *MoveInput) validate() error {
	inputErr := newInputError()

	if mi.RoomID == "" {
		inputErr.addError("roomId", "provide roomId")
	}

	checkDate(inputErr, "checkIn", mi.CheckIn)

	return inputErr.orNil()
}

func (s *StatusInput) validate() error {
	inputErr := newInputError()

	if !s.Status.Valid() {
		inputErr.addError("status", "provide one of confirmed, checked-in, checked-out, cancelled, refunded")
	}

	return inputErr.orNil()
}

func (b *BulkRatesInput) validate() error {
	inputErr := newInputError()

	checkRoomType(inputErr, b.RoomType)
	checkDate(inputErr, "from", b.From)
	checkDate(inputErr, "to", b.To)

	for _, day := range b.Days {
		if day < int(time.Sunday) || day > int(time.Saturday) {
			inputErr.addError("days", "days must be between 0 (Sunday) and 6 (Saturday)")

			break
		}
	}

	switch b.Preset {
	case "", PresetWeekdays, PresetWeekends:
	default:
		inputErr.addError("preset", "provide one of weekdays, weekends")
	}

	if b.Preset != "" && len(b.Days) > 0 {
		inputErr.addError("preset", "provide either days or preset")
	}

	return inputErr.orNil()
}

// dayMask converts the selected weekdays, an empty list means every day.
func (b *BulkRatesInput) dayMask() calendar.DayMask {
	switch b.Preset {
	case PresetWeekdays:
		return calendar.Weekdays
	case PresetWeekends:
		return calendar.Weekends
	}

	if len(b.Days) == 0 {
		return calendar.AllDays
	}

	days := make([]time.Weekday, 0, len(b.Days))
	for _, day := range b.Days {
		days = append(days, time.Weekday(day))
	}

	return calendar.NewDayMask(days...)
}

func (q *QuickActionInput) validate() error {
	inputErr := newInputError()

	checkRoomType(inputErr, q.RoomType)
	checkDate(inputErr, "date", q.Date)

	if q.Strategy == nil {
		inputErr.addError("action", "provide a known quick action")
	}

	return inputErr.orNil()
}

func (s *SuggestionRequest) validate() error {
	inputErr := newInputError()

	checkRoomType(inputErr, s.RoomType)

	if s.From != "" {
		checkDate(inputErr, "from", s.From)
	}

	if s.To != "" {
		checkDate(inputErr, "to", s.To)
	}

	if s.CompetitorPrice < 0 {
		inputErr.addError("competitorPrice", "competitorPrice must not be negative")
	}

	return inputErr.orNil()
}

func (a *ApplySuggestionInput) validate() error {
	inputErr := newInputError()

	checkRoomType(inputErr, a.RoomType)

	if !a.Action.Valid() {
		inputErr.addError("action", "provide one of raise, lower, hold")
	}

	if a.From != "" {
		checkDate(inputErr, "from", a.From)
	}

	if a.To != "" {
		checkDate(inputErr, "to", a.To)
	}

	return inputErr.orNil()
}

// window fills a missing range with today and the seven days after it.
func window(from, to calendar.Date, today calendar.Date) (calendar.Date, calendar.Date) {
	if from == "" {
		from = today
	}

	if to == "" {
		to = from.AddDays(suggestionWindow - 1)
	}

	return from, to
}
