package calendar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRelocate(t *testing.T) {
	e := newTestEngine()
	rooms := []Room{
		{ID: "R101", Type: Standard, BasePrice: 2500},
		{
			ID:        "R102",
			Type:      Standard,
			BasePrice: 2500,
			DailyRates: map[Date]DailyRate{
				"2024-03-12": {Price: 2500, StopSale: true, MinStay: 1},
			},
		},
	}
	reservations := []Reservation{
		reservation("a", "R101", "2024-03-01", "2024-03-04", StatusConfirmed),
		reservation("b", "R102", "2024-03-01", "2024-03-05", StatusConfirmed),
	}

	tests := []struct {
		name    string
		input   RelocateInput
		want    *Reservation
		wantErr error
	}{
		{
			name:  "shift over own dates",
			input: RelocateInput{ReservationID: "a", RoomID: "R101", CheckIn: "2024-03-02"},
			want:  ptr(reservation("a", "R101", "2024-03-02", "2024-03-05", StatusConfirmed)),
		},
		{
			name:  "other room back to back",
			input: RelocateInput{ReservationID: "a", RoomID: "R102", CheckIn: "2024-03-05"},
			want:  ptr(reservation("a", "R102", "2024-03-05", "2024-03-08", StatusConfirmed)),
		},
		{
			name:    "occupied",
			input:   RelocateInput{ReservationID: "a", RoomID: "R102", CheckIn: "2024-03-03"},
			wantErr: ErrRoomOccupied,
		},
		{
			name:    "stop sale",
			input:   RelocateInput{ReservationID: "a", RoomID: "R102", CheckIn: "2024-03-10"},
			wantErr: ErrStopSale,
		},
		{
			name:    "unknown reservation",
			input:   RelocateInput{ReservationID: "zz", RoomID: "R101", CheckIn: "2024-03-10"},
			wantErr: ErrReservationNotFound,
		},
		{
			name:    "unknown room",
			input:   RelocateInput{ReservationID: "a", RoomID: "R404", CheckIn: "2024-03-10"},
			wantErr: ErrRoomNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Relocate(rooms, reservations, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Relocate() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Relocate() unexpected error: %v", err)
			}

			if diff := cmp.Diff(*tt.want, got); diff != "" {
				t.Errorf("Relocate() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if reservations[0].CheckIn != "2024-03-01" || reservations[0].RoomID != "R101" {
		t.Errorf("input reservation was mutated: %+v", reservations[0])
	}
}
