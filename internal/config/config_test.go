package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/avstrong/ratecal/internal/calendar"
)

func TestDefaults(t *testing.T) {
	conf, err := Load(New(), "", "")
	if err != nil {
		t.Fatal(err)
	}

	if conf.App.Port != "8092" || conf.Storage.Driver != DriverMemory || !conf.Channel.AutoSync {
		t.Errorf("unexpected defaults %+v", conf)
	}

	if conf.Booking.MaxRangeDays != 366 {
		t.Errorf("max range days = %d, want 366", conf.Booking.MaxRangeDays)
	}

	if conf.Booking.LeaseTTL != 10*time.Second || conf.App.ShutdownTimeout != 4*time.Second {
		t.Errorf("durations not decoded: %+v", conf.Booking)
	}

	if diff := cmp.Diff(calendar.DefaultConfig().BoardSurcharges, conf.Calendar().BoardSurcharges); diff != "" {
		t.Errorf("board surcharges mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "ratecal.yaml")
	envFile := filepath.Join(dir, ".env")

	yaml := `
app:
  port: "9000"
  env: production
engine:
  agency_factor: 0.8
  board:
    half_board: 900
booking:
  lease_ttl: 30s
storage:
  driver: mongo
  mongo_database: aura
`
	if err := os.WriteFile(cfgFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(envFile, []byte("RATECAL_GEMINI_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RATECAL_APP_PORT", "9100")
	// godotenv does not override what the environment already has
	t.Setenv("RATECAL_GEMINI_API_KEY", "")
	os.Unsetenv("RATECAL_GEMINI_API_KEY")

	conf, err := Load(New(), cfgFile, envFile)
	if err != nil {
		t.Fatal(err)
	}

	if conf.App.Port != "9100" {
		t.Errorf("env must win over the file, port = %s", conf.App.Port)
	}

	if conf.App.Env != "production" || conf.Storage.Driver != DriverMongo || conf.Storage.MongoDatabase != "aura" {
		t.Errorf("file values not applied: %+v", conf)
	}

	if conf.Gemini.APIKey != "from-dotenv" {
		t.Errorf("api key = %q, want the .env value", conf.Gemini.APIKey)
	}

	if conf.Booking.LeaseTTL != 30*time.Second {
		t.Errorf("lease ttl = %v", conf.Booking.LeaseTTL)
	}

	engine := conf.Calendar()
	if engine.AgencyFactor != 0.8 || engine.BoardSurcharges[calendar.HalfBoard] != 900 || engine.BoardSurcharges[calendar.FullBoard] != 1200 {
		t.Errorf("engine config = %+v", engine)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "sqlite" }, false},
		{"postgres without dsn", func(c *Config) { c.Audit.Driver = DriverPostgres }, false},
		{"postgres with dsn", func(c *Config) {
			c.Audit.Driver = DriverPostgres
			c.Audit.PostgresDSN = "postgres://localhost/ratecal"
		}, true},
		{"kafka without topic", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Topic = ""
		}, false},
		{"negative retries", func(c *Config) { c.Booking.MaxRetries = -1 }, false},
		{"agency factor above one", func(c *Config) { c.Engine.AgencyFactor = 1.5 }, false},
		{"negative suggestion cap", func(c *Config) { c.Engine.MaxSuggestionPercent = -10 }, false},
		{"suggestion cap above hundred", func(c *Config) { c.Engine.MaxSuggestionPercent = 150 }, false},
		{"zero suggestion cap", func(c *Config) { c.Engine.MaxSuggestionPercent = 0 }, true},
		{"negative inventory", func(c *Config) { c.Engine.DefaultInventory = -1 }, false},
		{"zero range", func(c *Config) { c.Booking.MaxRangeDays = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := Load(New(), "", "")
			if err != nil {
				t.Fatal(err)
			}

			tt.mutate(conf)

			err = conf.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}

			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
