package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,required=true"`
	Port                 int           `env:"PORT,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	DedupCooldown        time.Duration `env:"DEDUP_COOLDOWN,default=1s"`
	DedupRetention       time.Duration `env:"DEDUP_RETENTION,default=5m"`
	AlertInterval        time.Duration `env:"ALERT_INTERVAL,default=1s"`
	AlertWindow          time.Duration `env:"ALERT_WINDOW,default=15m"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=30s"`
	Timezone             string        `env:"TIMEZONE,default=Local"`
	DailyResetAt         string        `env:"DAILY_RESET_AT"`
	LimitEvents          *int          `env:"LIMIT_EVENTS"`
	CRMBaseURL           string        `env:"CRM_BASE_URL"`
	CRMAPIToken          string        `env:"CRM_API_TOKEN"`
	CRMTimeout           time.Duration `env:"CRM_TIMEOUT,default=5s"`
	AuthSecret           string        `env:"AUTH_SECRET"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`
	DebugPort            int           `env:"DEBUG_PORT"`
}

// Location resolves TIMEZONE. "Local" and the empty string mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
