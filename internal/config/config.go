package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"habit-tracker/internal/domain"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		// TrustedProxies may set the client address via X-Forwarded-For.
		TrustedProxies []string
	}
	Database struct {
		AccountsPath string
		GoalsPath    string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
		RateRequests    int
		RateWindowSec   int
	}
	Goals struct {
		WeekStart string
	}
	Log struct {
		Level string
	}
	Reports struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// a missing .env is fine; existing environment variables win
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HABIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("database.accountspath", "data/users.db")
	v.SetDefault("database.goalspath", "data/habit_tracker.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 24*60)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.raterequests", 5)
	v.SetDefault("auth.ratewindowsec", 60)
	v.SetDefault("goals.weekstart", "monday")
	v.SetDefault("log.level", "info")
	v.SetDefault("reports.bucket", "")
	v.SetDefault("reports.keyprefix", "habit-reports")
	v.SetDefault("reports.region", "us-east-1")
	v.SetDefault("reports.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at use.
func (c Config) Validate() error {
	if _, err := c.WeekStart(); err != nil {
		return fmt.Errorf("goals.weekstart: %w", err)
	}
	if strings.TrimSpace(c.Database.AccountsPath) == "" || strings.TrimSpace(c.Database.GoalsPath) == "" {
		return fmt.Errorf("database paths are required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth.tokenttlminutes must be positive")
	}
	return nil
}

// WeekStart resolves the configured first day of the week.
func (c Config) WeekStart() (time.Weekday, error) {
	return domain.ParseWeekday(c.Goals.WeekStart)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c Config) RateWindow() time.Duration {
	return time.Duration(c.Auth.RateWindowSec) * time.Second
}
