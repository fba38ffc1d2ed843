package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

type Config struct {
	L *logger.Logger
}

// DB keeps properties, idempotency keys and the price change log in process.
// Writes are staged in a transaction and become visible on commit.
type DB struct {
	mu              sync.Mutex
	l               *logger.Logger
	properties      map[string]*calendar.Property
	idempotencyKeys map[string]string
	priceChanges    map[string][]calendar.PriceChangeLog
	transactions    map[string]*transaction
	nextTrxID       int64
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:               conf.L,
		properties:      make(map[string]*calendar.Property),
		idempotencyKeys: make(map[string]string),
		priceChanges:    make(map[string][]calendar.PriceChangeLog),
		transactions:    make(map[string]*transaction),
	}
}

func keyOf(hotelID, idempotencyKey string) string {
	return hotelID + "/" + idempotencyKey
}

// checkVersion reports whether property may replace the stored one.
func (db *DB) checkVersion(property *calendar.Property) error {
	stored, exists := db.properties[property.ID]
	if !exists && property.Version == 1 || exists && stored.Version == property.Version-1 {
		return nil
	}

	return fmt.Errorf("hotel %s at version %d: %w", property.ID, property.Version, booking.ErrVersionConflict)
}

func (db *DB) BeginTransaction(ctx context.Context, _ string) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = newTransaction(trxID)

	return withTransactionID(ctx, trxID), nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	for _, property := range trx.properties {
		if err := db.checkVersion(property); err != nil {
			return err
		}
	}

	for id, property := range trx.properties {
		db.properties[id] = property
	}

	for key, reservationID := range trx.idempotencyKeys {
		db.idempotencyKeys[key] = reservationID
	}

	for hotelID, changes := range trx.priceChanges {
		db.priceChanges[hotelID] = append(db.priceChanges[hotelID], changes...)
	}

	db.l.LogDebugf("Transaction %s committed", trx.id)

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) GetProperty(_ context.Context, hotelID string) (*calendar.Property, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	property, exists := db.properties[hotelID]
	if !exists {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, booking.ErrRecordNotFound)
	}

	return property.Clone(), nil
}

func (db *DB) SaveProperty(ctx context.Context, property *calendar.Property) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	if err := db.checkVersion(property); err != nil {
		return err
	}

	trx.properties[property.ID] = property.Clone()

	return nil
}

func (db *DB) SaveIdempotencyKey(ctx context.Context, hotelID, reservationID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		return booking.ErrIdempotencyKey
	}

	trx.idempotencyKeys[keyOf(hotelID, key)] = reservationID

	return nil
}

func (db *DB) GetReservationIDByIdempotencyKey(ctx context.Context, hotelID string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		return "", booking.ErrIdempotencyKey
	}

	reservationID, exists := db.idempotencyKeys[keyOf(hotelID, key)]
	if !exists {
		return "", booking.ErrRecordNotFound
	}

	return reservationID, nil
}

// AppendPriceChanges stages changes in the transaction of ctx, or appends them
// right away when ctx carries none.
func (db *DB) AppendPriceChanges(ctx context.Context, hotelID string, changes []calendar.PriceChangeLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := transactionIDFromContext(ctx); !ok {
		db.priceChanges[hotelID] = append(db.priceChanges[hotelID], changes...)

		return nil
	}

	trx, err := db.transaction(ctx)
	if err != nil {
		return err
	}

	trx.priceChanges[hotelID] = append(trx.priceChanges[hotelID], changes...)

	return nil
}

func (db *DB) PriceChanges(_ context.Context, hotelID string, limit int) ([]calendar.PriceChangeLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	changes := slices.Clone(db.priceChanges[hotelID])
	slices.Reverse(changes)

	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}

	return changes, nil
}
