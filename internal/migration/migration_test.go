package migration_test

import (
	"context"
	"testing"

	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
	"github.com/avstrong/ratecal/internal/migration"
	"github.com/avstrong/ratecal/internal/storage/memory"
)

func TestUp(t *testing.T) {
	ctx := context.Background()
	l := logger.NewNop()
	db := memory.New(memory.Config{L: l})
	conf := migration.Conf{L: l, Storage: db, Today: "2024-02-20", Seed: 7}

	if err := migration.Up(ctx, conf); err != nil {
		t.Fatal(err)
	}

	property, err := db.GetProperty(ctx, migration.DemoHotelID)
	if err != nil {
		t.Fatal(err)
	}

	if property.Version != 1 || len(property.Rooms) != 10 || len(property.Reservations) != 5 {
		t.Errorf("property v%d with %d rooms and %d reservations", property.Version, len(property.Rooms), len(property.Reservations))
	}

	for i, a := range property.Reservations {
		if a.GuestName == "" || !a.CheckIn.Before(a.CheckOut) {
			t.Errorf("bad demo reservation %+v", a)
		}

		for _, b := range property.Reservations[i+1:] {
			if calendar.HasConflict([]calendar.Reservation{a}, b.RoomID, b.CheckIn, b.CheckOut, "") {
				t.Errorf("demo reservations %s and %s overlap", a.ID, b.ID)
			}
		}
	}

	t.Run("second run keeps the hotel", func(t *testing.T) {
		if err := migration.Up(ctx, conf); err != nil {
			t.Fatal(err)
		}

		again, err := db.GetProperty(ctx, migration.DemoHotelID)
		if err != nil {
			t.Fatal(err)
		}

		if again.Version != 1 {
			t.Errorf("version = %d, want 1", again.Version)
		}
	})
}
