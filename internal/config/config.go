package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"smartscheduler/internal/availability"
)

const defaultConfigFile = "scheduler.toml"

type Config struct {
	LogLevel string         `toml:"log_level"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Schedule ScheduleConfig `toml:"schedule"`
	Auth     AuthConfig     `toml:"auth"`
	Google   GoogleConfig   `toml:"google"`
	SendGrid SendGridConfig `toml:"sendgrid"`
	Twilio   TwilioConfig   `toml:"twilio"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	PublicBaseURL  string   `toml:"public_base_url"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type ScheduleConfig struct {
	UTCOffset              string `toml:"utc_offset"`
	ProviderTimeout        string `toml:"provider_timeout"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes"`
	PendingTTL             string `toml:"pending_ttl"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"`
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type SendGridConfig struct {
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
}

type TwilioConfig struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	FromNumber string `toml:"from_number"`
}

type JobsConfig struct {
	ExpirePendingSpec string `toml:"expire_pending"`
	FinishSpec        string `toml:"finish_approved"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Schedule: ScheduleConfig{
			UTCOffset:              "+09:00",
			ProviderTimeout:        "5s",
			DefaultDurationMinutes: 60,
			PendingTTL:             "48h",
		},
		Auth: AuthConfig{
			TokenTTL: "12h",
		},
		SendGrid: SendGridConfig{
			FromName: "Smart Scheduler",
		},
		Jobs: JobsConfig{
			ExpirePendingSpec: "@every 15m",
			FinishSpec:        "@hourly",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment (including a .env file), in that order of precedence.
// An explicit path that does not exist is an error; the implicit
// ./scheduler.toml is optional.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("SCHEDULER_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.LogLevel, "LOG_LEVEL")
	set(&cfg.Server.Port, "PORT")
	set(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.Schedule.UTCOffset, "SCHEDULE_UTC_OFFSET")
	set(&cfg.Schedule.ProviderTimeout, "PROVIDER_TIMEOUT")
	set(&cfg.Schedule.PendingTTL, "PENDING_TTL")
	set(&cfg.Auth.JWTSecret, "JWT_SECRET")
	set(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	set(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	set(&cfg.SendGrid.APIKey, "SENDGRID_API_KEY")
	set(&cfg.SendGrid.FromEmail, "SENDGRID_FROM_EMAIL")
	set(&cfg.SendGrid.FromName, "SENDGRID_FROM_NAME")
	set(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	set(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	set(&cfg.Twilio.FromNumber, "TWILIO_FROM_NUMBER")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
}

func (c *Config) Validate() error {
	if _, err := availability.ParseOffset(c.Schedule.UTCOffset); err != nil {
		return fmt.Errorf("schedule.utc_offset: %w", err)
	}
	if d, err := time.ParseDuration(c.Schedule.ProviderTimeout); err != nil || d <= 0 {
		return fmt.Errorf("schedule.provider_timeout: must be a positive duration, got %q", c.Schedule.ProviderTimeout)
	}
	if d, err := time.ParseDuration(c.Schedule.PendingTTL); err != nil || d <= 0 {
		return fmt.Errorf("schedule.pending_ttl: must be a positive duration, got %q", c.Schedule.PendingTTL)
	}
	if d, err := time.ParseDuration(c.Auth.TokenTTL); err != nil || d <= 0 {
		return fmt.Errorf("auth.token_ttl: must be a positive duration, got %q", c.Auth.TokenTTL)
	}
	if c.Schedule.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("schedule.default_duration_minutes: must be positive, got %d", c.Schedule.DefaultDurationMinutes)
	}
	return nil
}

// OffsetMinutes returns the validated default offset.
func (c *Config) OffsetMinutes() int {
	m, _ := availability.ParseOffset(c.Schedule.UTCOffset)
	return m
}

func (c *Config) ProviderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Schedule.ProviderTimeout)
	return d
}

func (c *Config) PendingTTL() time.Duration {
	d, _ := time.ParseDuration(c.Schedule.PendingTTL)
	return d
}

func (c *Config) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.Auth.TokenTTL)
	return d
}

// RequireDatabase is checked by the commands that need a store.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL not set")
	}
	return nil
}
