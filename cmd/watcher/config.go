package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr  string `envconfig:"WATCHER_ADDR" default:"localhost:8080"`
	Token string `envconfig:"WATCHER_TOKEN"`
	// WATCHER_ROOM is dashboard or control
	Room string `envconfig:"WATCHER_ROOM" default:"dashboard"`
	// WATCHER_COLOURS highlights alerts and errors
	Colours bool `envconfig:"WATCHER_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
