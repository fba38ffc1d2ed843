// Package calendar holds the rate calendar and reservation rules of a property.
//
// Every function works on caller supplied snapshots of rooms and reservations and
// returns new values; nothing here performs I/O or keeps shared state.
package calendar

import "time"

type Config struct {
	// BoardSurcharges is charged per night on top of the room rate.
	BoardSurcharges map[BoardType]float64
	// AgencyFactor derives the agency price of a date without its own record.
	AgencyFactor     float64
	DefaultInventory int
	DefaultMinStay   int
	// MaxSuggestionPercent caps adjustments proposed by the pricing advisor.
	MaxSuggestionPercent float64
	// Now stamps price change logs; time.Now when nil.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		BoardSurcharges: map[BoardType]float64{
			AllInclusive:    2000, //nolint:gomnd
			FullBoard:       1200, //nolint:gomnd
			HalfBoard:       750,  //nolint:gomnd
			BedAndBreakfast: 250,  //nolint:gomnd
			RoomOnly:        0,
		},
		AgencyFactor:         0.85, //nolint:gomnd
		DefaultInventory:     5,    //nolint:gomnd
		DefaultMinStay:       1,
		MaxSuggestionPercent: 50, //nolint:gomnd
		Now:                  nil,
	}
}

type Engine struct {
	conf Config
}

func New(conf Config) *Engine {
	if conf.Now == nil {
		conf.Now = time.Now
	}

	if conf.DefaultMinStay < 1 {
		conf.DefaultMinStay = 1
	}

	return &Engine{conf: conf}
}

func (e *Engine) BoardSurcharge(b BoardType) float64 {
	return e.conf.BoardSurcharges[b]
}

func (e *Engine) now() time.Time {
	return e.conf.Now().UTC()
}
