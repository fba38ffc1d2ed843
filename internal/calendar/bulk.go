package calendar

import (
	"fmt"
	"maps"
	"slices"
)

// RateAdjuster rewrites the rate of one date.
type RateAdjuster interface {
	Adjust(rate DailyRate) DailyRate
}

type RateAdjusterFunc func(rate DailyRate) DailyRate

func (f RateAdjusterFunc) Adjust(rate DailyRate) DailyRate {
	return f(rate)
}

// RatePatch is a partial rate update. A nil field leaves the value unchanged.
type RatePatch struct {
	Price              *float64 `json:"price,omitempty"`
	OnlinePrice        *float64 `json:"onlinePrice,omitempty"`
	AgencyPrice        *float64 `json:"agencyPrice,omitempty"`
	Inventory          *int     `json:"inventory,omitempty"`
	StopSale           *bool    `json:"stopSale,omitempty"`
	MinStay            *int     `json:"minStay,omitempty"`
	ClosedForArrival   *bool    `json:"closedForArrival,omitempty"`
	ClosedForDeparture *bool    `json:"closedForDeparture,omitempty"`
}

func (p RatePatch) Validate() error {
	prices := []struct {
		name  string
		value *float64
	}{
		{"price", p.Price},
		{"onlinePrice", p.OnlinePrice},
		{"agencyPrice", p.AgencyPrice},
	}

	for _, field := range prices {
		if field.value != nil && *field.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPatch, field.name)
		}
	}

	if p.Inventory != nil && *p.Inventory < 0 {
		return fmt.Errorf("%w: inventory must not be negative", ErrInvalidPatch)
	}

	if p.MinStay != nil && *p.MinStay < 1 {
		return fmt.Errorf("%w: minStay must be at least 1", ErrInvalidPatch)
	}

	return nil
}

func (p RatePatch) Adjust(rate DailyRate) DailyRate {
	if p.Price != nil {
		rate.Price = *p.Price
	}

	if p.OnlinePrice != nil {
		rate.OnlinePrice = *p.OnlinePrice
	}

	if p.AgencyPrice != nil {
		rate.AgencyPrice = *p.AgencyPrice
	}

	if p.Inventory != nil {
		rate.Inventory = *p.Inventory
	}

	if p.StopSale != nil {
		rate.StopSale = *p.StopSale
	}

	if p.MinStay != nil {
		rate.MinStay = *p.MinStay
	}

	if p.ClosedForArrival != nil {
		rate.ClosedForArrival = *p.ClosedForArrival
	}

	if p.ClosedForDeparture != nil {
		rate.ClosedForDeparture = *p.ClosedForDeparture
	}

	return rate
}

type Adjustment struct {
	RoomType RoomType
	Dates    []Date
	Adjuster RateAdjuster
	Action   string
	User     string
}

type BulkUpdateResult struct {
	Rooms      []Room           `json:"rooms"`
	ChangeLogs []PriceChangeLog `json:"changeLogs"`
	Dates      []Date           `json:"dates"`
}

// ApplyAdjustment writes adj into every room of adj.RoomType on every date of
// adj.Dates. Input rooms are not modified; rooms of other types are shared with
// the input slice.
func (e *Engine) ApplyAdjustment(rooms []Room, adj Adjustment) *BulkUpdateResult {
	res := &BulkUpdateResult{
		Rooms:      slices.Clone(rooms),
		ChangeLogs: nil,
		Dates:      adj.Dates,
	}

	now := e.now()

	for i, room := range rooms {
		if room.Type != adj.RoomType {
			continue
		}

		rates := maps.Clone(room.DailyRates)
		if rates == nil {
			rates = make(map[Date]DailyRate, len(adj.Dates))
		}

		for _, d := range adj.Dates {
			existing := e.ResolveRate(room, d)
			updated := adj.Adjuster.Adjust(existing)

			if updated.Price != existing.Price {
				res.ChangeLogs = append(res.ChangeLogs, PriceChangeLog{
					TargetDate: d,
					RoomType:   room.Type,
					RoomID:     room.ID,
					OldPrice:   existing.Price,
					NewPrice:   updated.Price,
					Action:     adj.Action,
					Timestamp:  now,
					User:       adj.User,
				})
			}

			rates[d] = updated
		}

		res.Rooms[i] = room.clone()
		res.Rooms[i].DailyRates = rates
	}

	return res
}

type BulkUpdateInput struct {
	RoomType RoomType
	From     Date
	To       Date
	Days     DayMask
	Patch    RatePatch
	User     string
}

// ApplyBulkUpdate merges the patch into every selected date of every room of
// the given type and logs each base price that actually changed.
func (e *Engine) ApplyBulkUpdate(rooms []Room, in BulkUpdateInput) (*BulkUpdateResult, error) {
	if err := in.Patch.Validate(); err != nil {
		return nil, err
	}

	dates, err := DatesInRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	dates = in.Days.Filter(dates)
	if len(dates) == 0 {
		return nil, &EmptySelectionError{From: in.From, To: in.To, Days: in.Days}
	}

	return e.ApplyAdjustment(rooms, Adjustment{
		RoomType: in.RoomType,
		Dates:    dates,
		Adjuster: in.Patch,
		Action:   ActionBulkUpdate,
		User:     in.User,
	}), nil
}
