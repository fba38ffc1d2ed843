// Package postgres keeps the price change audit log in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_changes (
    id          BIGSERIAL PRIMARY KEY,
    hotel_id    TEXT             NOT NULL,
    target_date DATE             NOT NULL,
    room_type   TEXT             NOT NULL,
    room_id     TEXT             NOT NULL,
    old_price   DOUBLE PRECISION NOT NULL,
    new_price   DOUBLE PRECISION NOT NULL,
    action      TEXT             NOT NULL,
    changed_at  TIMESTAMPTZ      NOT NULL,
    changed_by  TEXT             NOT NULL
);
CREATE INDEX IF NOT EXISTS price_changes_hotel_idx ON price_changes (hotel_id, id DESC);
`

var columns = []string{
	"hotel_id", "target_date", "room_type", "room_id",
	"old_price", "new_price", "action", "changed_at", "changed_by",
}

type Config struct {
	L   *logger.Logger
	DSN string
}

// AuditLog is append only. Entries do not take part in property transactions.
type AuditLog struct {
	l    *logger.Logger
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, conf Config) (*AuditLog, error) {
	pool, err := pgxpool.New(ctx, conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &AuditLog{l: conf.L, pool: pool}, nil
}

func (a *AuditLog) Close() {
	a.pool.Close()
}

func (a *AuditLog) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create price_changes table: %w", err)
	}

	return nil
}

func (a *AuditLog) AppendPriceChanges(ctx context.Context, hotelID string, changes []calendar.PriceChangeLog) error {
	if len(changes) == 0 {
		return nil
	}

	rows := pgx.CopyFromSlice(len(changes), func(i int) ([]any, error) {
		return priceChangeRow(hotelID, changes[i]), nil
	})

	n, err := a.pool.CopyFrom(ctx, pgx.Identifier{"price_changes"}, columns, rows)
	if err != nil {
		return fmt.Errorf("copy price changes: %w", err)
	}

	a.l.LogDebugf("Stored %d price changes of hotel %s", n, hotelID)

	return nil
}

func (a *AuditLog) PriceChanges(ctx context.Context, hotelID string, limit int) ([]calendar.PriceChangeLog, error) {
	rows, err := a.pool.Query(ctx, `
        SELECT target_date, room_type, room_id, old_price, new_price, action, changed_at, changed_by
        FROM price_changes
        WHERE hotel_id = $1
        ORDER BY id DESC
        LIMIT $2`, hotelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query price changes: %w", err)
	}

	changes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (calendar.PriceChangeLog, error) {
		return scanPriceChange(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan price changes: %w", err)
	}

	return changes, nil
}

// priceChangeRow lays c out in the order of columns.
func priceChangeRow(hotelID string, c calendar.PriceChangeLog) []any {
	return []any{
		hotelID, c.TargetDate.Time(), string(c.RoomType), c.RoomID,
		c.OldPrice, c.NewPrice, c.Action, c.Timestamp.UTC(), c.User,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPriceChange reads a row selected by PriceChanges.
func scanPriceChange(row scanner) (calendar.PriceChangeLog, error) {
	var (
		c        calendar.PriceChangeLog
		target   time.Time
		roomType string
	)

	if err := row.Scan(&target, &roomType, &c.RoomID, &c.OldPrice, &c.NewPrice, &c.Action, &c.Timestamp, &c.User); err != nil {
		return calendar.PriceChangeLog{}, err //nolint:wrapcheck
	}

	c.TargetDate = calendar.DateOf(target)
	c.RoomType = calendar.RoomType(roomType)
	c.Timestamp = c.Timestamp.UTC()

	return c, nil
}
