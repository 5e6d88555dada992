package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrConfigMissing is returned when the configuration file does not exist.
var ErrConfigMissing = errors.New("configuration file missing")

var requiredKeys = []string{
	"cowin_public_calendar_api",
	"pin_codes",
	"check_for_next_days",
	"minimum_age",
	"polling_interval",
	"log_level",
}

var optionalKeys = []string{
	"log_format",
	"vaccine",
	"fee_type",
	"metrics_addr",
}

// loadConfig reads the YAML file at path. A .env file in the same directory
// is loaded first, and every key may be overridden by an environment variable
// named after the upper-cased key.
func loadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, fmt.Errorf("%w: -config-file needs to be a path to a config.yaml file", ErrConfigMissing)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigMissing, path)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("log_format", "console")
	for _, key := range append(append([]string{}, requiredKeys...), optionalKeys...) {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration keys: %s", strings.Join(missing, ", "))
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.PinCodes = trimPinCodes(cfg.PinCodes)

	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func trimPinCodes(pins []string) []string {
	out := make([]string, 0, len(pins))
	for _, pin := range pins {
		pin = strings.Trim(strings.TrimSpace(pin), `"'`)
		if pin != "" {
			out = append(out, pin)
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.CalendarAPI))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("COWIN_PUBLIC_CALENDAR_API needs to be an absolute URL")
	}
	cfg.CalendarAPI = u.String()

	if len(cfg.PinCodes) == 0 {
		return errors.New("at least one pin code needs to be provided (pin_codes)")
	}
	if cfg.CheckForNextDays < 0 {
		return errors.New("check_for_next_days needs to be zero or more")
	}
	if cfg.PollingInterval <= 0 {
		return errors.New("the polling interval needs to be a positive number of seconds (polling_interval)")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("log_format needs to be console or json, got %q", cfg.LogFormat)
	}
	if cfg.FeeType != "" && !strings.EqualFold(cfg.FeeType, "free") && !strings.EqualFold(cfg.FeeType, "paid") {
		return errors.New("invalid value in fee_type filter. allowed values are blank, 'free', 'paid'")
	}
	return nil
}

// logConfig prints the effective configuration at debug level.
func logConfig(log *zap.Logger, cfg Config) {
	if ce := log.Check(zap.DebugLevel, "effective configuration"); ce != nil {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			log.Warn("failed to render configuration", zap.Error(err))
			return
		}
		ce.Write(zap.String("config", string(out)))
	}
}
