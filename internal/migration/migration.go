package migration

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

// DemoHotelID is the property created by Up.
const DemoHotelID = "aura"

type storage interface {
	GetProperty(ctx context.Context, hotelID string) (*calendar.Property, error)
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveProperty(ctx context.Context, property *calendar.Property) error
}

type Conf struct {
	L       *logger.Logger
	Storage storage
	// Today anchors the demo reservations.
	Today calendar.Date
	Seed  int64
}

func demoRooms() []calendar.Room {
	rooms := []calendar.Room{
		{ID: "101", Number: "101", Type: calendar.Standard, Floor: 1, BasePrice: 2500},
		{ID: "102", Number: "102", Type: calendar.Standard, Floor: 1, BasePrice: 2500},
		{ID: "103", Number: "103", Type: calendar.Standard, Floor: 1, BasePrice: 2500},
		{ID: "104", Number: "104", Type: calendar.Standard, Floor: 1, BasePrice: 2500},
		{ID: "201", Number: "201", Type: calendar.Deluxe, Floor: 2, BasePrice: 3500},
		{ID: "202", Number: "202", Type: calendar.Deluxe, Floor: 2, BasePrice: 3500},
		{ID: "203", Number: "203", Type: calendar.Deluxe, Floor: 2, BasePrice: 3500},
		{ID: "301", Number: "301", Type: calendar.Suite, Floor: 3, BasePrice: 5000},
		{ID: "302", Number: "302", Type: calendar.Suite, Floor: 3, BasePrice: 5000},
		{ID: "V1", Number: "V1", Type: calendar.Villa, Floor: 0, BasePrice: 7500},
	}

	for i := range rooms {
		switch rooms[i].Type {
		case calendar.Suite, calendar.Villa:
			rooms[i].BoardTypes = []calendar.BoardType{calendar.RoomOnly, calendar.BedAndBreakfast, calendar.HalfBoard, calendar.AllInclusive}
		case calendar.Standard, calendar.Deluxe:
		}
	}

	return rooms
}

// demoReservations places a handful of stays around today, one per room at most.
func demoReservations(f faker.Faker, rnd *rand.Rand, rooms []calendar.Room, today calendar.Date) []calendar.Reservation {
	sources := []string{calendar.SourceDirect, calendar.SourceBookingCom, calendar.SourceExpedia, calendar.SourceAgency}
	reservations := make([]calendar.Reservation, 0, len(rooms)/2)

	for i, room := range rooms {
		if i%2 == 1 {
			continue
		}

		checkIn := today.AddDays(rnd.Intn(10) - 2) //nolint:gomnd
		nights := 1 + rnd.Intn(4)                  //nolint:gomnd
		checkOut := checkIn.AddDays(nights)

		status := calendar.StatusConfirmed
		if checkIn.Before(today) {
			status = calendar.StatusCheckedIn
		}

		reservations = append(reservations, calendar.Reservation{
			ID:        fmt.Sprintf("demo-%d", len(reservations)+1),
			GuestName: f.Person().Name(),
			RoomID:    room.ID,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Source:    sources[rnd.Intn(len(sources))],
			Status:    status,
			Amount:    room.BasePrice * float64(nights),
			Paid:      status == calendar.StatusCheckedIn,
			BoardType: calendar.RoomOnly,
			Extras:    nil,
			Notes:     "",
		})
	}

	return reservations
}

// Up creates the demo property unless it already exists.
func Up(ctx context.Context, conf Conf) (err error) {
	l, storage := conf.L, conf.Storage

	if _, err := storage.GetProperty(ctx, DemoHotelID); err == nil {
		l.LogInfo("Demo hotel %s already exists, migration skipped", DemoHotelID)

		return nil
	} else if !errors.Is(err, booking.ErrRecordNotFound) {
		return fmt.Errorf("get demo hotel: %w", err)
	}

	today := conf.Today
	if today == "" {
		today = calendar.DateOf(time.Now().UTC())
	}

	rnd := rand.New(rand.NewSource(conf.Seed)) //nolint:gosec
	rooms := demoRooms()

	property := &calendar.Property{
		ID:           DemoHotelID,
		Name:         "Aura Boutique Hotel",
		Rooms:        rooms,
		Reservations: demoReservations(faker.NewWithSeed(rand.NewSource(conf.Seed)), rnd, rooms, today), //nolint:gosec
		Version:      1,
	}

	ctx, err = storage.BeginTransaction(ctx, "")
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := storage.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback migration transaction after panic %v", p)
			}

			l.LogInfo("Migration transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := storage.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback migration transaction after error %v", err.Error())
			}

			l.LogInfo("Migration transaction has been roll backed after error")

			return
		}

		if err = storage.CommitTransaction(ctx); err != nil {
			l.LogErrorf("Could not commit migration transaction, err %v", err.Error())

			return
		}

		l.LogInfo("Migration transaction has been committed")
	}()

	if err = storage.SaveProperty(ctx, property); err != nil {
		return fmt.Errorf("save demo hotel: %w", err)
	}

	return nil
}
