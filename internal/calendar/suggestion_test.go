package calendar

import (
	"errors"
	"math"
	"testing"
)

func TestApplySuggestedAdjustment(t *testing.T) {
	e := newTestEngine()
	rooms := []Room{
		{
			ID:        "S101",
			Type:      Suite,
			BasePrice: 10000,
			DailyRates: map[Date]DailyRate{
				"2024-03-02": {Price: 12000, OnlinePrice: 13000, AgencyPrice: 10000, Inventory: 1, MinStay: 2},
			},
		},
		{ID: "R101", Type: Standard, BasePrice: 2500},
	}

	tests := []struct {
		name       string
		direction  SuggestedAction
		percentage float64
		want       DailyRate
		wantLogs   int
	}{
		{
			name:       "raise",
			direction:  SuggestRaise,
			percentage: 10,
			want:       DailyRate{Price: 13200, OnlinePrice: 14300, AgencyPrice: 11000, Inventory: 1, MinStay: 2},
			wantLogs:   2,
		},
		{
			name:       "lower",
			direction:  SuggestLower,
			percentage: 15,
			want:       DailyRate{Price: 10200, OnlinePrice: 11050, AgencyPrice: 8500, Inventory: 1, MinStay: 2},
			wantLogs:   2,
		},
		{
			name:       "clamped",
			direction:  SuggestLower,
			percentage: 90,
			want:       DailyRate{Price: 6000, OnlinePrice: 6500, AgencyPrice: 5000, Inventory: 1, MinStay: 2},
			wantLogs:   2,
		},
		{
			name:       "negative is zero",
			direction:  SuggestRaise,
			percentage: -20,
			want:       DailyRate{Price: 12000, OnlinePrice: 13000, AgencyPrice: 10000, Inventory: 1, MinStay: 2},
			wantLogs:   0,
		},
		{
			name:       "not a number is zero",
			direction:  SuggestRaise,
			percentage: math.NaN(),
			want:       DailyRate{Price: 12000, OnlinePrice: 13000, AgencyPrice: 10000, Inventory: 1, MinStay: 2},
			wantLogs:   0,
		},
		{
			name:       "hold",
			direction:  SuggestHold,
			percentage: 25,
			want:       DailyRate{Price: 12000, OnlinePrice: 13000, AgencyPrice: 10000, Inventory: 1, MinStay: 2},
			wantLogs:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.ApplySuggestedAdjustment(rooms, SuggestedAdjustmentInput{
				RoomType:   Suite,
				From:       "2024-03-01",
				To:         "2024-03-02",
				Direction:  tt.direction,
				Percentage: tt.percentage,
				User:       "revenue manager",
			})
			if err != nil {
				t.Fatal(err)
			}

			if got := res.Rooms[0].DailyRates["2024-03-02"]; got != tt.want {
				t.Errorf("rate = %+v, want %+v", got, tt.want)
			}

			if len(res.ChangeLogs) != tt.wantLogs {
				t.Errorf("got %d change logs, want %d", len(res.ChangeLogs), tt.wantLogs)
			}

			for _, entry := range res.ChangeLogs {
				if entry.Action != "AI Smart Strategy ("+string(tt.direction)+")" {
					t.Errorf("action = %q", entry.Action)
				}
			}

			if res.Rooms[1].DailyRates != nil {
				t.Error("standard room was touched")
			}
		})
	}

	if rooms[0].DailyRates["2024-03-02"].Price != 12000 {
		t.Error("input rooms were mutated")
	}
}

func TestApplySuggestedAdjustmentDerivesChannelPrices(t *testing.T) {
	e := newTestEngine()
	rooms := []Room{{ID: "R101", Type: Standard, BasePrice: 2000}}

	res, err := e.ApplySuggestedAdjustment(rooms, SuggestedAdjustmentInput{
		RoomType:   Standard,
		From:       "2024-03-01",
		To:         "2024-03-01",
		Direction:  SuggestRaise,
		Percentage: 10,
		User:       "revenue manager",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Rooms[0].DailyRates["2024-03-01"]
	if got.Price != 2200 || got.OnlinePrice != 2200 || got.AgencyPrice != 1870 {
		t.Errorf("rate = %+v", got)
	}
}

func TestApplySuggestedAdjustmentRejectsUnknownAction(t *testing.T) {
	e := newTestEngine()

	_, err := e.ApplySuggestedAdjustment(nil, SuggestedAdjustmentInput{
		RoomType:  Standard,
		From:      "2024-03-01",
		To:        "2024-03-01",
		Direction: "double",
	})
	if !errors.Is(err, ErrInvalidSuggestion) {
		t.Errorf("expected ErrInvalidSuggestion, got %v", err)
	}
}
