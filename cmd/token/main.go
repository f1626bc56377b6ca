package main

import (
	"flag"
	"fmt"
	"log"
	"salesroom/auth"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Secret   string        `envconfig:"AUTH_SECRET" required:"true"`
	Duration time.Duration `envconfig:"AUTH_TOKEN_DURATION" default:"12h"`
}

// token prints a bearer token for the watcher or a control client.
func main() {
	user := flag.String("user", "", "User ID stored in the token subject")
	roles := flag.String("roles", auth.RoleViewer, "Comma separated roles (viewer, control)")
	flag.Parse()

	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *user == "" {
		log.Fatal("-user is required")
	}

	authenticator := auth.NewAuthenticator(cfg.Secret, cfg.Duration)
	token, err := authenticator.GenerateToken(*user, strings.Split(*roles, ","))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
