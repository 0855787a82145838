package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by reference into the
// components that need it; nothing reads the environment afterwards.
type Config struct {
	Addr      string        `env:"ADDR" envDefault:":8080"`
	MongoURI  string        `env:"MONGO_URI,required"`
	MongoDB   string        `env:"MONGO_DB_NAME,required"`
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"0"`

	SendGridKey string `env:"SENDGRID_API_KEY"`
	MailFrom    string `env:"MAIL_FROM" envDefault:"no-reply@taskhub.local"`

	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN" envDefault:"10"`
	LoginBurst      int `env:"LOGIN_BURST" envDefault:"10"`
}

// Load reads an optional env file named by ENV_FILE, then parses the
// environment into a Config.
func Load() (*Config, error) {
	if file := os.Getenv("ENV_FILE"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
