// Package config loads hostui settings from HOSTUI_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name.
const Prefix = "hostui"

// Config holds all application configuration.
type Config struct {
	Logging LogConfig
	Fetch   FetchConfig
	State   StateConfig
	Widgets WidgetConfig
	Server  ServerConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// FetchConfig controls remote markup loading.
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Retries   int           `envconfig:"RETRIES" default:"3"`
	UserAgent string        `envconfig:"USER_AGENT" default:"hostui/1.0"`
	RateLimit float64       `envconfig:"RATE_LIMIT" default:"0"`
	Sanitize  bool          `envconfig:"SANITIZE" default:"true"`
}

// StateConfig controls persisted widget state.
type StateConfig struct {
	Key       string `envconfig:"KEY"`
	Sensitive bool   `envconfig:"SENSITIVE" default:"false"`
}

// WidgetConfig selects which widgets are injected and where.
type WidgetConfig struct {
	Names      []string `envconfig:"NAMES" default:"calendar"`
	Scheduler  string   `envconfig:"SCHEDULER" default:"#sb_booking_scheduler"`
	FormBody   string   `envconfig:"FORM_BODY" default:"#sb_booking_form .modal-body"`
	FormFooter string   `envconfig:"FORM_FOOTER" default:"#sb_booking_form .modal-footer"`
	ButtonURL  string   `envconfig:"BUTTON_URL" default:"https://raw.githubusercontent.com/beachspainc/SimplyBookEnhancement/main/resources/components/payment_button.html"`
}

// ServerConfig holds the injecting proxy's settings.
type ServerConfig struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	Upstream string `envconfig:"UPSTREAM"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level: "info",
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			Retries:   3,
			UserAgent: "hostui/1.0",
			Sanitize:  true,
		},
		Widgets: WidgetConfig{
			Names:      []string{"calendar"},
			Scheduler:  "#sb_booking_scheduler",
			FormBody:   "#sb_booking_form .modal-body",
			FormFooter: "#sb_booking_form .modal-footer",
			ButtonURL:  "https://raw.githubusercontent.com/beachspainc/SimplyBookEnhancement/main/resources/components/payment_button.html",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
