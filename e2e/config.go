package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at a running salesroom server; the suites skip when empty
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	// E2E_CONTROL_TOKEN is a bearer token carrying the control role
	ControlToken string `envconfig:"E2E_CONTROL_TOKEN"`
	// E2E_DEBUG_JSON dumps every received envelope
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
