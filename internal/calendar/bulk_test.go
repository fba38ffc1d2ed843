package calendar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func deluxeRooms() []Room {
	return []Room{
		{ID: "D201", Number: "201", Type: Deluxe, BasePrice: 4000},
		{ID: "D202", Number: "202", Type: Deluxe, BasePrice: 4200},
		{ID: "S101", Number: "101", Type: Standard, BasePrice: 2500},
	}
}

func TestApplyBulkUpdatePrice(t *testing.T) {
	e := newTestEngine()
	rooms := deluxeRooms()

	res, err := e.ApplyBulkUpdate(rooms, BulkUpdateInput{
		RoomType: Deluxe,
		From:     "2024-03-01",
		To:       "2024-03-07",
		Days:     AllDays,
		Patch:    RatePatch{Price: ptr(3000.0)},
		User:     "manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.ChangeLogs) != 14 {
		t.Fatalf("got %d change logs, want 14", len(res.ChangeLogs))
	}

	for _, room := range res.Rooms[:2] {
		if len(room.DailyRates) != 7 {
			t.Errorf("room %s has %d rates, want 7", room.ID, len(room.DailyRates))
		}

		for d, rate := range room.DailyRates {
			if rate.Price != 3000 {
				t.Errorf("room %s on %s: price %v, want 3000", room.ID, d, rate.Price)
			}
		}
	}

	if res.Rooms[2].DailyRates != nil {
		t.Errorf("standard room was touched: %+v", res.Rooms[2].DailyRates)
	}

	first := res.ChangeLogs[0]
	want := PriceChangeLog{
		TargetDate: "2024-03-01",
		RoomType:   Deluxe,
		RoomID:     "D201",
		OldPrice:   4000,
		NewPrice:   3000,
		Action:     ActionBulkUpdate,
		Timestamp:  testNow,
		User:       "manager",
	}

	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first change log mismatch (-want +got):\n%s", diff)
	}

	for _, room := range rooms {
		if room.DailyRates != nil {
			t.Errorf("input room %s was mutated", room.ID)
		}
	}
}

func TestApplyBulkUpdatePartialMerge(t *testing.T) {
	e := newTestEngine()
	rooms := deluxeRooms()
	rooms[0].DailyRates = map[Date]DailyRate{
		"2024-03-02": {Price: 5000, OnlinePrice: 5500, AgencyPrice: 4200, Inventory: 3, MinStay: 2},
	}

	res, err := e.ApplyBulkUpdate(rooms, BulkUpdateInput{
		RoomType: Deluxe,
		From:     "2024-03-01",
		To:       "2024-03-03",
		Days:     AllDays,
		Patch:    RatePatch{StopSale: ptr(true)},
		User:     "manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.ChangeLogs) != 0 {
		t.Errorf("stop sale patch logged price changes: %+v", res.ChangeLogs)
	}

	want := DailyRate{Price: 5000, OnlinePrice: 5500, AgencyPrice: 4200, Inventory: 3, StopSale: true, MinStay: 2}
	if diff := cmp.Diff(want, res.Rooms[0].DailyRates["2024-03-02"]); diff != "" {
		t.Errorf("merged rate mismatch (-want +got):\n%s", diff)
	}

	fallback := res.Rooms[0].DailyRates["2024-03-01"]
	if fallback.Price != 4000 || fallback.MinStay != 1 || !fallback.StopSale {
		t.Errorf("materialised default rate = %+v", fallback)
	}

	if rooms[0].DailyRates["2024-03-02"].StopSale {
		t.Error("input rates were mutated")
	}
}

func TestApplyBulkUpdateWeekends(t *testing.T) {
	e := newTestEngine()

	res, err := e.ApplyBulkUpdate(deluxeRooms(), BulkUpdateInput{
		RoomType: Deluxe,
		From:     "2024-03-01",
		To:       "2024-03-14",
		Days:     Weekends,
		Patch:    RatePatch{Price: ptr(4500.0), MinStay: ptr(2)},
		User:     "manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	wantDates := []Date{"2024-03-02", "2024-03-03", "2024-03-09", "2024-03-10"}
	if diff := cmp.Diff(wantDates, res.Dates); diff != "" {
		t.Errorf("selected dates mismatch (-want +got):\n%s", diff)
	}

	for _, room := range res.Rooms[:2] {
		if len(room.DailyRates) != len(wantDates) {
			t.Errorf("room %s has %d rates, want %d", room.ID, len(room.DailyRates), len(wantDates))
		}
	}

	if len(res.ChangeLogs) != 8 {
		t.Errorf("got %d change logs, want 8", len(res.ChangeLogs))
	}
}

func TestApplyBulkUpdateLogsOnlyRealChanges(t *testing.T) {
	e := newTestEngine()
	rooms := deluxeRooms()

	res, err := e.ApplyBulkUpdate(rooms, BulkUpdateInput{
		RoomType: Deluxe,
		From:     "2024-03-01",
		To:       "2024-03-02",
		Days:     AllDays,
		Patch:    RatePatch{Price: ptr(4000.0)},
		User:     "manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	// D201 already costs 4000, D202 does not.
	if len(res.ChangeLogs) != 2 {
		t.Fatalf("got %d change logs, want 2", len(res.ChangeLogs))
	}

	for _, entry := range res.ChangeLogs {
		if entry.RoomID != "D202" {
			t.Errorf("unexpected log for %s", entry.RoomID)
		}
	}

	again, err := e.ApplyBulkUpdate(res.Rooms, BulkUpdateInput{
		RoomType: Deluxe,
		From:     "2024-03-01",
		To:       "2024-03-02",
		Days:     AllDays,
		Patch:    RatePatch{Price: ptr(4000.0)},
		User:     "manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(again.ChangeLogs) != 0 {
		t.Errorf("repeated update logged %d changes", len(again.ChangeLogs))
	}
}

func TestApplyBulkUpdateErrors(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name  string
		input BulkUpdateInput
		check func(error) bool
	}{
		{
			name: "empty selection",
			input: BulkUpdateInput{
				RoomType: Deluxe,
				From:     "2024-03-04",
				To:       "2024-03-08",
				Days:     Weekends,
				Patch:    RatePatch{Price: ptr(1.0)},
			},
			check: func(err error) bool { return IsEmptySelectionError(err) != nil },
		},
		{
			name: "reversed range",
			input: BulkUpdateInput{
				RoomType: Deluxe,
				From:     "2024-03-08",
				To:       "2024-03-04",
				Days:     AllDays,
				Patch:    RatePatch{Price: ptr(1.0)},
			},
			check: func(err error) bool { return IsInvalidRangeError(err) != nil },
		},
		{
			name: "negative price",
			input: BulkUpdateInput{
				RoomType: Deluxe,
				From:     "2024-03-01",
				To:       "2024-03-02",
				Days:     AllDays,
				Patch:    RatePatch{AgencyPrice: ptr(-1.0)},
			},
			check: func(err error) bool { return errors.Is(err, ErrInvalidPatch) },
		},
		{
			name: "min stay below one",
			input: BulkUpdateInput{
				RoomType: Deluxe,
				From:     "2024-03-01",
				To:       "2024-03-02",
				Days:     AllDays,
				Patch:    RatePatch{MinStay: ptr(0)},
			},
			check: func(err error) bool { return errors.Is(err, ErrInvalidPatch) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.ApplyBulkUpdate(deluxeRooms(), tt.input)
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}

			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestApplyAdjustmentWithFunc(t *testing.T) {
	e := newTestEngine()

	double := RateAdjusterFunc(func(rate DailyRate) DailyRate {
		rate.Price *= 2

		return rate
	})

	res := e.ApplyAdjustment(deluxeRooms(), Adjustment{
		RoomType: Standard,
		Dates:    []Date{"2024-03-01"},
		Adjuster: double,
		Action:   ActionManualUpdate,
		User:     "front desk",
	})

	if got := res.Rooms[2].DailyRates["2024-03-01"].Price; got != 5000 {
		t.Errorf("price = %v, want 5000", got)
	}

	if len(res.ChangeLogs) != 1 || res.ChangeLogs[0].Action != ActionManualUpdate {
		t.Errorf("change logs = %+v", res.ChangeLogs)
	}
}
