package calendar

import (
	"fmt"
	"math"
	"slices"
)

type SuggestedAction string

const (
	SuggestRaise SuggestedAction = "raise"
	SuggestLower SuggestedAction = "lower"
	SuggestHold  SuggestedAction = "hold"
)

func (a SuggestedAction) Valid() bool {
	return a == SuggestRaise || a == SuggestLower || a == SuggestHold
}

// Suggestion is a pricing recommendation from an external advisor.
type Suggestion struct {
	Action     SuggestedAction `json:"action"`
	Percentage float64         `json:"percentage"`
	Reasoning  string          `json:"reasoning"`
}

type SuggestedAdjustmentInput struct {
	RoomType   RoomType
	From       Date
	To         Date
	Direction  SuggestedAction
	Percentage float64
	User       string
}

// ApplySuggestedAdjustment scales base, online and agency prices of every day in
// the range by the suggested percentage, rounded to whole units. The percentage
// is clamped to [0, MaxSuggestionPercent]; hold leaves the rooms untouched.
func (e *Engine) ApplySuggestedAdjustment(rooms []Room, in SuggestedAdjustmentInput) (*BulkUpdateResult, error) {
	if !in.Direction.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidSuggestion, in.Direction)
	}

	dates, err := DatesInRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	pct := e.clampPercent(in.Percentage)

	var factor float64

	switch in.Direction {
	case SuggestRaise:
		factor = 1 + pct/100 //nolint:gomnd
	case SuggestLower:
		factor = 1 - pct/100 //nolint:gomnd
	case SuggestHold:
		return &BulkUpdateResult{Rooms: slices.Clone(rooms), ChangeLogs: nil, Dates: dates}, nil
	}

	return e.ApplyAdjustment(rooms, Adjustment{
		RoomType: in.RoomType,
		Dates:    dates,
		Adjuster: scaleRates{factor: factor, agencyFactor: e.conf.AgencyFactor},
		Action:   fmt.Sprintf("AI Smart Strategy (%s)", in.Direction),
		User:     in.User,
	}), nil
}

func (e *Engine) clampPercent(pct float64) float64 {
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}

	return math.Min(pct, e.conf.MaxSuggestionPercent)
}

type scaleRates struct {
	factor       float64
	agencyFactor float64
}

func (s scaleRates) Adjust(rate DailyRate) DailyRate {
	online := rate.OnlinePrice
	if online == 0 {
		online = rate.Price
	}

	agency := rate.AgencyPrice
	if agency == 0 {
		agency = rate.Price * s.agencyFactor
	}

	rate.Price = math.Round(rate.Price * s.factor)
	rate.OnlinePrice = math.Round(online * s.factor)
	rate.AgencyPrice = math.Round(agency * s.factor)

	return rate
}
