package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
	"github.com/avstrong/ratecal/internal/channel/kafka"
	"github.com/avstrong/ratecal/internal/config"
	"github.com/avstrong/ratecal/internal/idgen/uuidgen"
	lease "github.com/avstrong/ratecal/internal/lease/redis"
	"github.com/avstrong/ratecal/internal/logger"
	"github.com/avstrong/ratecal/internal/migration"
	"github.com/avstrong/ratecal/internal/storage/memory"
	"github.com/avstrong/ratecal/internal/storage/mongo"
	"github.com/avstrong/ratecal/internal/storage/postgres"
	"github.com/avstrong/ratecal/internal/suggest/gemini"
	"github.com/avstrong/ratecal/internal/transport/web"
)

type propertyStore interface {
	GetProperty(ctx context.Context, hotelID string) (*calendar.Property, error)
	GetReservationIDByIdempotencyKey(ctx context.Context, hotelID string) (string, error)
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveProperty(ctx context.Context, property *calendar.Property) error
	SaveIdempotencyKey(ctx context.Context, hotelID, reservationID string) error
}

type auditLog interface {
	AppendPriceChanges(ctx context.Context, hotelID string, changes []calendar.PriceChangeLog) error
	PriceChanges(ctx context.Context, hotelID string, limit int) ([]calendar.PriceChangeLog, error)
}

// closers run in reverse order on shutdown.
type closers []func(ctx context.Context) error

func (c *closers) add(fn func(ctx context.Context) error) {
	*c = append(*c, fn)
}

func (c closers) close(ctx context.Context, l *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			l.LogErrorf("Failed to release resource: %v", err)
		}
	}
}

func openStorage(ctx context.Context, l *logger.Logger, conf *config.Config, cl *closers) (propertyStore, *memory.DB, error) {
	if conf.Storage.Driver != config.DriverMongo {
		db := memory.New(memory.Config{L: l})

		return db, db, nil
	}

	store, err := mongo.Connect(ctx, mongo.Config{
		L:        l,
		URI:      conf.Storage.MongoURI,
		Database: conf.Storage.MongoDatabase,
		Timeout:  conf.Storage.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect property store: %w", err)
	}

	cl.add(store.Close)

	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	return store, nil, nil
}

func openAudit(ctx context.Context, l *logger.Logger, conf *config.Config, mem *memory.DB, cl *closers) (auditLog, error) {
	if conf.Audit.Driver == config.DriverPostgres {
		audit, err := postgres.Connect(ctx, postgres.Config{L: l, DSN: conf.Audit.PostgresDSN})
		if err != nil {
			return nil, fmt.Errorf("connect audit log: %w", err)
		}

		cl.add(func(context.Context) error {
			audit.Close()

			return nil
		})

		if err := audit.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate audit log: %w", err)
		}

		return audit, nil
	}

	if mem != nil {
		return mem, nil
	}

	return memory.New(memory.Config{L: l}), nil
}

// newManager wires the booking manager with every adapter the config enables.
func newManager(ctx context.Context, l *logger.Logger, conf *config.Config, cl *closers) (*booking.Manager, propertyStore, error) {
	store, mem, err := openStorage(ctx, l, conf, cl)
	if err != nil {
		return nil, nil, err
	}

	audit, err := openAudit(ctx, l, conf, mem, cl)
	if err != nil {
		return nil, nil, err
	}

	bookingConf := booking.Conf{
		L:           l,
		Storage:     store,
		Audit:       audit,
		IDGenerator: uuidgen.New(),
		Engine:      calendar.New(conf.Calendar()),
		Locker:      nil,
		Publisher:   nil,
		Advisor:     nil,
		MaxRetries:  conf.Booking.MaxRetries,
		AutoSync:    conf.Channel.AutoSync,
		// only a shared memory store stages audit rows in the property transaction
		TransactionalAudit: mem != nil && conf.Audit.Driver == config.DriverMemory,
		MaxRangeDays:       conf.Booking.MaxRangeDays,
		DefaultUser:        conf.Booking.DefaultUser,
		Now:                time.Now,
	}

	if conf.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})

		cl.add(func(context.Context) error { return client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}

		bookingConf.Locker = lease.New(lease.Config{
			L:      l,
			Prefix: "ratecal:",
			TTL:    conf.Booking.LeaseTTL,
			Wait:   conf.Booking.LeaseWait,
			Retry:  0,
		}, client)

		l.LogInfo("Write leases enabled on %s", conf.Redis.Addr)
	}

	if conf.Kafka.Enabled {
		publisher, err := kafka.New(kafka.Config{L: l, Brokers: conf.Kafka.Brokers, Topic: conf.Kafka.Topic})
		if err != nil {
			return nil, nil, fmt.Errorf("init channel publisher: %w", err)
		}

		cl.add(func(context.Context) error { return publisher.Close() })

		bookingConf.Publisher = publisher
	}

	if conf.Gemini.APIKey != "" {
		advisor, err := gemini.New(ctx, gemini.Config{L: l, APIKey: conf.Gemini.APIKey, Model: conf.Gemini.Model})
		if err != nil {
			return nil, nil, fmt.Errorf("init pricing advisor: %w", err)
		}

		cl.add(func(context.Context) error { return advisor.Close() })

		bookingConf.Advisor = advisor
	} else {
		l.LogWarnf("Gemini api key is not set, pricing suggestions are disabled")
	}

	return booking.New(bookingConf), store, nil
}

func Run(l *logger.Logger, conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	var cl closers
	defer cl.close(context.Background(), l)

	bookManager, store, err := newManager(ctx, l, conf, &cl)
	if err != nil {
		return err
	}

	// the in-process store starts empty
	if conf.Storage.Driver == config.DriverMemory {
		if err := migration.Up(ctx, migration.Conf{L: l, Storage: store, Today: "", Seed: time.Now().UnixNano()}); err != nil {
			return fmt.Errorf("up demo migration: %w", err)
		}

		l.LogInfo("Demo migration has been applied")
	}

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      zap.NewStdLog(l.Zap()),
		Host:              conf.App.Host,
		Port:              conf.App.Port,
		ReadHeaderTimeout: time.Duration(conf.App.ReadHeaderTimeout),
		LivenessEndpoint:  conf.App.LivenessEndpoint,
		RateLimit:         conf.App.RateLimit,
		RateBurst:         conf.App.RateBurst,
	}

	srv, err := web.New(ctx, webConf, bookManager)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.App.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}

// Seed applies the demo migration to the configured property store.
func Seed(ctx context.Context, l *logger.Logger, conf *config.Config, seed int64) error {
	var cl closers
	defer cl.close(context.WithoutCancel(ctx), l)

	store, _, err := openStorage(ctx, l, conf, &cl)
	if err != nil {
		return err
	}

	if conf.Storage.Driver == config.DriverMemory {
		l.LogWarnf("Seeding the memory store, the data is gone when this command exits")
	}

	if err := migration.Up(ctx, migration.Conf{L: l, Storage: store, Today: "", Seed: seed}); err != nil {
		return fmt.Errorf("up demo migration: %w", err)
	}

	return nil
}
