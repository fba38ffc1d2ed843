// Package boost holds the one-click rate strategies of the rate calendar.
package boost

import (
	"errors"
	"fmt"
	"math"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
)

var (
	ErrUnknownAction = errors.New("unknown quick action")
	ErrInvalidValue  = errors.New("invalid quick action value")
)

// Actions accepted by Lookup.
const (
	ActionStopSale      = "stopSale"
	ActionPriceIncrease = "price_inc"
	ActionPriceDecrease = "price_dec"
	ActionMinStay       = "minStay"
)

type Params struct {
	Action   string `json:"action"`
	StopSale bool   `json:"stopSale"`
	MinStay  int    `json:"minStay"`
}

func Lookup(p Params) (booking.RateStrategy, error) {
	switch p.Action {
	case ActionStopSale:
		return StopSale(p.StopSale), nil
	case ActionPriceIncrease:
		return Raise10{}, nil
	case ActionPriceDecrease:
		return Lower10{}, nil
	case ActionMinStay:
		if p.MinStay < 1 {
			return nil, fmt.Errorf("%w: minStay must be at least 1", ErrInvalidValue)
		}

		return MinStay(p.MinStay), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, p.Action)
}

// cents drops float noise so that 2500*1.1 ceils to 2750, not 2751.
func cents(v float64) float64 {
	return math.Round(v*100) / 100 //nolint:gomnd
}

// Raise10 lifts the base price by 10%, rounding up.
type Raise10 struct{}

func (Raise10) Adjust(rate calendar.DailyRate) calendar.DailyRate {
	rate.Price = math.Ceil(cents(rate.Price * 1.1)) //nolint:gomnd

	return rate
}

func (Raise10) Action() string {
	return "Quick +10%"
}

// Lower10 cuts the base price by 10%, rounding down.
type Lower10 struct{}

func (Lower10) Adjust(rate calendar.DailyRate) calendar.DailyRate {
	rate.Price = math.Floor(cents(rate.Price * 0.9)) //nolint:gomnd

	return rate
}

func (Lower10) Action() string {
	return "Quick -10%"
}

type StopSale bool

func (s StopSale) Adjust(rate calendar.DailyRate) calendar.DailyRate {
	rate.StopSale = bool(s)

	return rate
}

func (StopSale) Action() string {
	return calendar.ActionQuick
}

type MinStay int

func (n MinStay) Adjust(rate calendar.DailyRate) calendar.DailyRate {
	rate.MinStay = int(n)

	return rate
}

func (MinStay) Action() string {
	return "Quick MinStay"
}
