package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Supabase
	SupabaseURL           string `env:"SUPABASE_URL"`
	SupabaseAnonKey       string `env:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret     string `env:"SUPABASE_JWT_SECRET"`
	SupabaseStorageBucket string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"retouch-files"`

	// Database (Supabase PostgreSQL connection string)
	DatabaseURL string `env:"DATABASE_URL"`

	// Stripe
	StripeSecretKey   string `env:"STRIPE_SECRET_KEY"`
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/order/success?session_id={CHECKOUT_SESSION_ID}"`
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/order/cancelled"`

	// Transactional mail
	MailAPIBaseURL string `env:"MAIL_API_BASE_URL"`
	MailAPIKey     string `env:"MAIL_API_KEY"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"studio@retouchlab.example"`

	// Deferred-billing sweep, cron spec. First of the month by default.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"0 6 1 * *"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	return nil
}
