package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	path := writeConfig(t, `
http:
  address: ":9090"
database:
  driver: postgres
  name: flightapp
  user: app
  password: from-file
kafka:
  booking_events_topic: booking-events
booking:
  cancellation_window_hours: 48
  time_zone: Asia/Kolkata
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 48*time.Hour, cfg.Booking.CancellationWindow())
	assert.Equal(t, 9, cfg.Booking.MaxPassengers)
	assert.Equal(t, 10, cfg.Booking.CodeAttempts)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout())
	assert.Contains(t, cfg.Database.DSN(), "dbname=flightapp")

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [broken"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory driver needs no database name", mutate: func(c *Config) { c.Database.Driver = DriverMemory }},
		{name: "postgres needs a database name", mutate: func(c *Config) {}, wantErr: "database.name is required"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: `database.driver "mysql"`},
		{
			name: "too many passengers",
			mutate: func(c *Config) {
				c.Database.Driver = DriverMemory
				c.Booking.MaxPassengers = 12
			},
			wantErr: "booking.max_passengers",
		},
		{
			name: "brokers without topic",
			mutate: func(c *Config) {
				c.Database.Driver = DriverMemory
				c.Kafka.Brokers = []string{"localhost:9092"}
			},
			wantErr: "kafka.booking_events_topic",
		},
		{
			name: "bad time zone",
			mutate: func(c *Config) {
				c.Database.Driver = DriverMemory
				c.Booking.TimeZone = "Mars/Olympus"
			},
			wantErr: "booking.time_zone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
