// Package config loads configs/config.yml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"plant_monitor/internal/telemetry"
)

// Config is the typed view of the configuration file.
type Config struct {
	Port      string          `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	Backend   BackendConfig   `mapstructure:"backend"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type DashboardConfig struct {
	DefaultWindowDays int    `mapstructure:"default_window_days"`
	LabelLayout       string `mapstructure:"label_layout"`
	Timezone          string `mapstructure:"timezone"`
}

type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type SessionsConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"port":             "PORT",
	"log_level":        "LOG_LEVEL",
	"backend.base_url": "BACKEND_URL",
	"db.path":          "DB_PATH",
	"auth.signing_key": "AUTH_SIGNING_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("backend.base_url", "http://localhost:8000/api")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("dashboard.default_window_days", telemetry.DefaultWindow)
	v.SetDefault("dashboard.label_layout", telemetry.DefaultLabelLayout)
	v.SetDefault("dashboard.timezone", "Local")
	v.SetDefault("chart.width", 900)
	v.SetDefault("chart.height", 400)
	v.SetDefault("sessions.sweep_interval", time.Minute)
}

// Load reads the config file from dir (config.yml). A missing file is not an
// error: defaults and environment variables still apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)

	for k, env := range envBindings {
		if err := v.BindEnv(k, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key is required (or set AUTH_SIGNING_KEY)")
	}
	if !telemetry.ValidWindow(c.Dashboard.DefaultWindowDays) {
		return fmt.Errorf("dashboard.default_window_days must be one of %v", telemetry.Windows)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves dashboard.timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone %q: %w", c.Dashboard.Timezone, err)
	}
	return loc, nil
}
