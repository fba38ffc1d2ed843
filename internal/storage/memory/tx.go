package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/avstrong/ratecal/internal/calendar"
)

var (
	ErrTransactionIDNotFoundInCtx = errors.New("no transaction id found in ctx")
	ErrTransactionNotFound        = errors.New("transaction not found")
)

type contextKey string

const transactionKey contextKey = "memoryTransactionID"

// transaction holds staged writes until commit.
type transaction struct {
	id              string
	properties      map[string]*calendar.Property
	idempotencyKeys map[string]string
	priceChanges    map[string][]calendar.PriceChangeLog
}

func newTransaction(id string) *transaction {
	return &transaction{
		id:              id,
		properties:      make(map[string]*calendar.Property),
		idempotencyKeys: make(map[string]string),
		priceChanges:    make(map[string][]calendar.PriceChangeLog),
	}
}

func withTransactionID(ctx context.Context, trxID string) context.Context {
	return context.WithValue(ctx, transactionKey, trxID)
}

func transactionIDFromContext(ctx context.Context) (string, bool) {
	trxID, ok := ctx.Value(transactionKey).(string)

	return trxID, ok && trxID != ""
}

// transaction finds the open transaction of ctx. db.mu must be held.
func (db *DB) transaction(ctx context.Context) (*transaction, error) {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok {
		return nil, ErrTransactionIDNotFoundInCtx
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	return trx, nil
}
