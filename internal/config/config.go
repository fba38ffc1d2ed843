// Package config loads service settings from defaults, an optional YAML file,
// a .env file and RATECAL_* environment variables, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/avstrong/ratecal/internal/booking"
	"github.com/avstrong/ratecal/internal/calendar"
)

var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "RATECAL"

// Drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Booking BookingConfig `mapstructure:"booking"`
	Storage StorageConfig `mapstructure:"storage"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Channel ChannelConfig `mapstructure:"channel"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	// ReadHeaderTimeout is in seconds.
	ReadHeaderTimeout int           `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	LivenessEndpoint  string        `mapstructure:"liveness_endpoint"`
	RateLimit         float64       `mapstructure:"rate_limit"`
	RateBurst         int           `mapstructure:"rate_burst"`
}

type BoardSurcharges struct {
	BedAndBreakfast float64 `mapstructure:"bed_and_breakfast"`
	HalfBoard       float64 `mapstructure:"half_board"`
	FullBoard       float64 `mapstructure:"full_board"`
	AllInclusive    float64 `mapstructure:"all_inclusive"`
}

type EngineConfig struct {
	Board                BoardSurcharges `mapstructure:"board"`
	AgencyFactor         float64         `mapstructure:"agency_factor"`
	DefaultInventory     int             `mapstructure:"default_inventory"`
	DefaultMinStay       int             `mapstructure:"default_min_stay"`
	MaxSuggestionPercent float64         `mapstructure:"max_suggestion_percent"`
}

type BookingConfig struct {
	MaxRetries  int           `mapstructure:"max_retries"`
	LeaseTTL    time.Duration `mapstructure:"lease_ttl"`
	LeaseWait   time.Duration `mapstructure:"lease_wait"`
	DefaultUser string        `mapstructure:"default_user"`
	// MaxRangeDays bounds every date range and stay a request may cover.
	MaxRangeDays int `mapstructure:"max_range_days"`
}

type StorageConfig struct {
	Driver        string        `mapstructure:"driver"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type AuditConfig struct {
	Driver      string `mapstructure:"driver"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// RedisConfig enables per-property write leases when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// GeminiConfig enables the pricing advisor when APIKey is set.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ChannelConfig struct {
	AutoSync bool `mapstructure:"auto_sync"`
}

// New returns a viper instance holding the defaults and reading the environment.
func New() *viper.Viper {
	v := viper.New()

	defaults := calendar.DefaultConfig()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "localhost")
	v.SetDefault("app.port", "8092")
	v.SetDefault("app.read_header_timeout", 20) //nolint:gomnd
	v.SetDefault("app.shutdown_timeout", "4s")
	v.SetDefault("app.liveness_endpoint", "/liveness")
	v.SetDefault("app.rate_limit", 50)  //nolint:gomnd
	v.SetDefault("app.rate_burst", 100) //nolint:gomnd

	v.SetDefault("engine.board.bed_and_breakfast", defaults.BoardSurcharges[calendar.BedAndBreakfast])
	v.SetDefault("engine.board.half_board", defaults.BoardSurcharges[calendar.HalfBoard])
	v.SetDefault("engine.board.full_board", defaults.BoardSurcharges[calendar.FullBoard])
	v.SetDefault("engine.board.all_inclusive", defaults.BoardSurcharges[calendar.AllInclusive])
	v.SetDefault("engine.agency_factor", defaults.AgencyFactor)
	v.SetDefault("engine.default_inventory", defaults.DefaultInventory)
	v.SetDefault("engine.default_min_stay", defaults.DefaultMinStay)
	v.SetDefault("engine.max_suggestion_percent", defaults.MaxSuggestionPercent)

	v.SetDefault("booking.max_retries", 3) //nolint:gomnd
	v.SetDefault("booking.lease_ttl", "10s")
	v.SetDefault("booking.lease_wait", "2s")
	v.SetDefault("booking.default_user", "Admin")
	v.SetDefault("booking.max_range_days", booking.DefaultMaxRangeDays)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.mongo_uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("storage.mongo_database", "ratecal")
	v.SetDefault("storage.timeout", "5s")

	v.SetDefault("audit.driver", DriverMemory)
	v.SetDefault("audit.postgres_dsn", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "channel-rates")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("channel.auto_sync", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads .env from envFile (skipped when missing), then cfgFile when set,
// and decodes everything v knows into a Config.
func Load(v *viper.Viper, cfgFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	var conf Config

	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})

	if err := v.Unmarshal(&conf, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			problems = append(problems, "storage.mongo_uri is required for the mongo driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of memory, mongo", c.Storage.Driver))
	}

	switch c.Audit.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Audit.PostgresDSN == "" {
			problems = append(problems, "audit.postgres_dsn is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("audit.driver %q is not one of memory, postgres", c.Audit.Driver))
	}

	if c.Kafka.Enabled && (c.Kafka.Brokers == "" || c.Kafka.Topic == "") {
		problems = append(problems, "kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	if c.Booking.MaxRetries < 0 {
		problems = append(problems, "booking.max_retries must not be negative")
	}

	if c.Booking.MaxRangeDays < 1 {
		problems = append(problems, "booking.max_range_days must be at least 1")
	}

	if c.Engine.AgencyFactor <= 0 || c.Engine.AgencyFactor > 1 {
		problems = append(problems, "engine.agency_factor must be in (0, 1]")
	}

	if c.Engine.MaxSuggestionPercent < 0 || c.Engine.MaxSuggestionPercent > 100 {
		problems = append(problems, "engine.max_suggestion_percent must be in [0, 100]")
	}

	if c.Engine.DefaultInventory < 0 {
		problems = append(problems, "engine.default_inventory must not be negative")
	}

	if c.Engine.DefaultMinStay < 0 {
		problems = append(problems, "engine.default_min_stay must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// Calendar converts the engine section into the rate engine's settings.
func (c *Config) Calendar() calendar.Config {
	conf := calendar.DefaultConfig()

	conf.BoardSurcharges = map[calendar.BoardType]float64{
		calendar.RoomOnly:        0,
		calendar.BedAndBreakfast: c.Engine.Board.BedAndBreakfast,
		calendar.HalfBoard:       c.Engine.Board.HalfBoard,
		calendar.FullBoard:       c.Engine.Board.FullBoard,
		calendar.AllInclusive:    c.Engine.Board.AllInclusive,
	}
	conf.AgencyFactor = c.Engine.AgencyFactor
	conf.DefaultInventory = c.Engine.DefaultInventory
	conf.DefaultMinStay = c.Engine.DefaultMinStay
	conf.MaxSuggestionPercent = c.Engine.MaxSuggestionPercent

	return conf
}
