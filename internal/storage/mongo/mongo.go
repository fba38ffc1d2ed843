// Package mongo stores property snapshots and idempotency keys in MongoDB.
// Writes go through multi-document transactions, so the server must run as a
// replica set.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/logger"
)

var ErrNoSession = errors.New("no mongo session found in ctx")

const (
	propertiesCollection      = "properties"
	idempotencyKeysCollection = "idempotency_keys"
	defaultTimeout            = 5 * time.Second
	// transientTransactionLabel marks transactions the server aborted and the
	// client may run again.
	transientTransactionLabel = "TransientTransactionError"
)

type Config struct {
	L        *logger.Logger
	URI      string
	Database string
	// Timeout bounds every single call to the server.
	Timeout time.Duration
}

type Storage struct {
	l               *logger.Logger
	client          *mongo.Client
	properties      *mongo.Collection
	idempotencyKeys *mongo.Collection
	timeout         time.Duration
}

type idempotencyRecord struct {
	HotelID       string    `bson:"hotelId"`
	Key           string    `bson:"key"`
	ReservationID string    `bson:"reservationId"`
	CreatedAt     time.Time `bson:"createdAt"`
}

func Connect(ctx context.Context, conf Config) (*Storage, error) {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))

		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.Database)

	return &Storage{
		l:               conf.L,
		client:          client,
		properties:      db.Collection(propertiesCollection),
		idempotencyKeys: db.Collection(idempotencyKeysCollection),
		timeout:         timeout,
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from mongo: %w", err)
	}

	return nil
}

// EnsureIndexes creates the unique indexes the version and idempotency checks rely on.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout) //nolint:gomnd
	defer cancel()

	if _, err := s.properties.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_id"),
	}); err != nil {
		return fmt.Errorf("create property indexes: %w", err)
	}

	if _, err := s.idempotencyKeys.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hotelId", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_hotel_key"),
	}); err != nil {
		return fmt.Errorf("create idempotency key indexes: %w", err)
	}

	return nil
}

// conflict maps duplicate keys and aborted transactions to a version conflict.
func conflict(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", booking.ErrVersionConflict, err)
	}

	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(transientTransactionLabel) {
		return fmt.Errorf("%w: %w", booking.ErrVersionConflict, err)
	}

	return err
}

func (s *Storage) BeginTransaction(ctx context.Context, _ string) (context.Context, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return ctx, fmt.Errorf("start mongo session: %w", err)
	}

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	if err := sess.StartTransaction(opts); err != nil {
		sess.EndSession(ctx)

		return ctx, fmt.Errorf("start mongo transaction: %w", err)
	}

	return mongo.NewSessionContext(ctx, sess), nil
}

func (s *Storage) CommitTransaction(ctx context.Context) error {
	sess := mongo.SessionFromContext(ctx)
	if sess == nil {
		return ErrNoSession
	}

	defer sess.EndSession(context.WithoutCancel(ctx))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := sess.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("commit mongo transaction: %w", conflict(err))
	}

	return nil
}

func (s *Storage) RollbackTransaction(ctx context.Context) error {
	sess := mongo.SessionFromContext(ctx)
	if sess == nil {
		return ErrNoSession
	}

	defer sess.EndSession(context.WithoutCancel(ctx))

	if err := sess.AbortTransaction(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("abort mongo transaction: %w", err)
	}

	return nil
}

func (s *Storage) GetProperty(ctx context.Context, hotelID string) (*calendar.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var property calendar.Property

	err := s.properties.FindOne(ctx, bson.M{"id": hotelID}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, booking.ErrRecordNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("find hotel %s: %w", hotelID, err)
	}

	return &property, nil
}

// SaveProperty inserts the first version of a property and replaces later
// versions only over their direct predecessor.
func (s *Storage) SaveProperty(ctx context.Context, property *calendar.Property) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if property.Version == 1 {
		if _, err := s.properties.InsertOne(ctx, property); err != nil {
			return fmt.Errorf("insert hotel %s: %w", property.ID, conflict(err))
		}

		return nil
	}

	res, err := s.properties.ReplaceOne(ctx, bson.M{"id": property.ID, "version": property.Version - 1}, property)
	if err != nil {
		return fmt.Errorf("replace hotel %s: %w", property.ID, conflict(err))
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("hotel %s at version %d: %w", property.ID, property.Version, booking.ErrVersionConflict)
	}

	return nil
}

func (s *Storage) SaveIdempotencyKey(ctx context.Context, hotelID, reservationID string) error {
	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		return booking.ErrIdempotencyKey
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	record := idempotencyRecord{
		HotelID:       hotelID,
		Key:           key,
		ReservationID: reservationID,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := s.idempotencyKeys.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert idempotency key: %w", conflict(err))
	}

	return nil
}

func (s *Storage) GetReservationIDByIdempotencyKey(ctx context.Context, hotelID string) (string, error) {
	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		return "", booking.ErrIdempotencyKey
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var record idempotencyRecord

	err := s.idempotencyKeys.FindOne(ctx, bson.M{"hotelId": hotelID, "key": key}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", booking.ErrRecordNotFound
	}

	if err != nil {
		return "", fmt.Errorf("find idempotency key: %w", err)
	}

	return record.ReservationID, nil
}
