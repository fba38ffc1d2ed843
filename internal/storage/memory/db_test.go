package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
	"github.com/avstrong/ratecal/internal/storage/memory"
)

func newDB() *memory.DB {
	return memory.New(memory.Config{L: logger.NewNop()})
}

func property(version int64) *calendar.Property {
	return &calendar.Property{
		ID:           "aura",
		Name:         "Aura",
		Rooms:        []calendar.Room{{ID: "101", Number: "101", Type: calendar.Standard, BasePrice: 2500}},
		Reservations: nil,
		Version:      version,
	}
}

func saveInTx(ctx context.Context, db *memory.DB, p *calendar.Property) error {
	ctx, err := db.BeginTransaction(ctx, "")
	if err != nil {
		return err
	}

	if err := db.SaveProperty(ctx, p); err != nil {
		_ = db.RollbackTransaction(ctx)

		return err
	}

	return db.CommitTransaction(ctx)
}

func TestSavePropertyVersions(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	if _, err := db.GetProperty(ctx, "aura"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	tests := []struct {
		name    string
		version int64
		wantErr error
	}{
		{"new property must start at 1", 2, booking.ErrVersionConflict},
		{"first save", 1, nil},
		{"same version again", 1, booking.ErrVersionConflict},
		{"next version", 2, nil},
		{"skipped version", 4, booking.ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := saveInTx(ctx, db, property(tt.version))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveProperty() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := db.GetProperty(ctx, "aura")
	if err != nil {
		t.Fatal(err)
	}

	if got.Version != 2 {
		t.Errorf("stored version = %d, want 2", got.Version)
	}
}

func TestCommitChecksVersionAgain(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	if err := saveInTx(ctx, db, property(1)); err != nil {
		t.Fatal(err)
	}

	slow, err := db.BeginTransaction(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SaveProperty(slow, property(2)); err != nil {
		t.Fatal(err)
	}

	winner := property(2)
	winner.Name = "winner"

	if err := saveInTx(ctx, db, winner); err != nil {
		t.Fatal(err)
	}

	if err := db.CommitTransaction(slow); !errors.Is(err, booking.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := db.GetProperty(ctx, "aura")
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != "winner" {
		t.Errorf("stored %q, want the first committed write", got.Name)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "key-1")
	db := newDB()

	trxCtx, err := db.BeginTransaction(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SaveProperty(trxCtx, property(1)); err != nil {
		t.Fatal(err)
	}

	if err := db.SaveIdempotencyKey(trxCtx, "aura", "res-1"); err != nil {
		t.Fatal(err)
	}

	if err := db.AppendPriceChanges(trxCtx, "aura", []calendar.PriceChangeLog{{TargetDate: "2024-03-01"}}); err != nil {
		t.Fatal(err)
	}

	if err := db.RollbackTransaction(trxCtx); err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetProperty(ctx, "aura"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Errorf("property visible after rollback: %v", err)
	}

	if _, err := db.GetReservationIDByIdempotencyKey(ctx, "aura"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Errorf("idempotency key visible after rollback: %v", err)
	}

	changes, err := db.PriceChanges(ctx, "aura", 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(changes) != 0 {
		t.Errorf("got %d price changes after rollback", len(changes))
	}

	if err := db.CommitTransaction(trxCtx); !errors.Is(err, memory.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}

	if err := db.SaveProperty(ctx, property(1)); !errors.Is(err, memory.ErrTransactionIDNotFoundInCtx) {
		t.Errorf("expected ErrTransactionIDNotFoundInCtx, got %v", err)
	}
}

func TestIdempotencyKeys(t *testing.T) {
	db := newDB()
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "key-1")

	if _, err := db.GetReservationIDByIdempotencyKey(context.Background(), "aura"); !errors.Is(err, booking.ErrIdempotencyKey) {
		t.Errorf("expected ErrIdempotencyKey, got %v", err)
	}

	trxCtx, err := db.BeginTransaction(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SaveIdempotencyKey(trxCtx, "aura", "res-7"); err != nil {
		t.Fatal(err)
	}

	if err := db.CommitTransaction(trxCtx); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetReservationIDByIdempotencyKey(ctx, "aura")
	if err != nil {
		t.Fatal(err)
	}

	if got != "res-7" {
		t.Errorf("got %s, want res-7", got)
	}

	if _, err := db.GetReservationIDByIdempotencyKey(ctx, "other-hotel"); !errors.Is(err, booking.ErrRecordNotFound) {
		t.Errorf("keys must be scoped by hotel, got %v", err)
	}
}

func TestPriceChangesNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newDB()
	stamp := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

	var appended []calendar.PriceChangeLog

	for i, d := range []calendar.Date{"2024-03-01", "2024-03-02", "2024-03-03"} {
		entry := calendar.PriceChangeLog{
			TargetDate: d,
			RoomType:   calendar.Standard,
			RoomID:     "101",
			OldPrice:   2500,
			NewPrice:   2500 + float64(i+1)*100,
			Action:     calendar.ActionBulkUpdate,
			Timestamp:  stamp,
			User:       "system",
		}
		appended = append(appended, entry)

		if err := db.AppendPriceChanges(ctx, "aura", []calendar.PriceChangeLog{entry}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.PriceChanges(ctx, "aura", 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []calendar.PriceChangeLog{appended[2], appended[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PriceChanges() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPropertyReturnsCopy(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	if err := saveInTx(ctx, db, property(1)); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetProperty(ctx, "aura")
	if err != nil {
		t.Fatal(err)
	}

	got.Rooms[0].BasePrice = 1

	again, err := db.GetProperty(ctx, "aura")
	if err != nil {
		t.Fatal(err)
	}

	if again.Rooms[0].BasePrice != 2500 {
		t.Errorf("stored property was modified through a returned copy")
	}
}
