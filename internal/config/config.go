// Package config reads wthrbar settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/swelljoe/wthrbar/internal/weather"
)

const prefix = "WTHRBAR_"

// Config holds every setting. It is built once by Load and not modified
// afterwards.
type Config struct {
	Location       string
	Units          weather.Units
	PollInterval   time.Duration
	ForecastDays   int
	IncludeToday   bool
	Separator      string
	Format         string
	FormatToday    string
	FormatForecast string
	Icons          weather.IconSet
	RequestTimeout time.Duration
	BaseURL        string
	DBPath         string
}

// Load reads envFile if it exists, then builds a Config from WTHRBAR_*
// variables. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Location:       strings.TrimSpace(os.Getenv(prefix + "LOCATION")),
		Format:         getEnvOrDefault("FORMAT", "{today} {forecasts}"),
		FormatToday:    getEnvOrDefault("FORMAT_TODAY", "{icon}"),
		FormatForecast: getEnvOrDefault("FORMAT_FORECAST", "{icon}"),
		Separator:      " ",
		Icons: weather.IconSet{
			Sun:     getEnvOrDefault("ICON_SUN", weather.DefaultIcons.Sun),
			Cloud:   getEnvOrDefault("ICON_CLOUD", weather.DefaultIcons.Cloud),
			Rain:    getEnvOrDefault("ICON_RAIN", weather.DefaultIcons.Rain),
			Snow:    getEnvOrDefault("ICON_SNOW", weather.DefaultIcons.Snow),
			Default: getEnvOrDefault("ICON_DEFAULT", weather.DefaultIcons.Default),
		},
		BaseURL: getEnvOrDefault("BASE_URL", weather.DefaultBaseURL),
		DBPath:  getEnvOrDefault("DB_PATH", "places.db"),
	}
	// An empty separator is a valid choice.
	if sep, ok := os.LookupEnv(prefix + "FORECAST_SEPARATOR"); ok {
		cfg.Separator = sep
	}

	var err error
	if cfg.Units, err = weather.ParseUnits(getEnvOrDefault("UNITS", "c")); err != nil {
		return nil, fmt.Errorf("%sUNITS: %w", prefix, err)
	}
	if cfg.PollInterval, err = parseSeconds(getEnvOrDefault("POLL_INTERVAL", "7200")); err != nil {
		return nil, fmt.Errorf("%sPOLL_INTERVAL: %w", prefix, err)
	}
	if cfg.RequestTimeout, err = parseSeconds(getEnvOrDefault("REQUEST_TIMEOUT", "10")); err != nil {
		return nil, fmt.Errorf("%sREQUEST_TIMEOUT: %w", prefix, err)
	}
	if cfg.ForecastDays, err = strconv.Atoi(getEnvOrDefault("FORECAST_DAYS", "3")); err != nil {
		return nil, fmt.Errorf("%sFORECAST_DAYS: %w", prefix, err)
	}
	if cfg.ForecastDays < 0 {
		return nil, fmt.Errorf("%sFORECAST_DAYS: must not be negative, got %d", prefix, cfg.ForecastDays)
	}
	if cfg.IncludeToday, err = strconv.ParseBool(getEnvOrDefault("FORECAST_INCLUDE_TODAY", "false")); err != nil {
		return nil, fmt.Errorf("%sFORECAST_INCLUDE_TODAY: %w", prefix, err)
	}

	return cfg, nil
}

// ServiceOptions returns the part of the config the status service needs.
func (c *Config) ServiceOptions() weather.Options {
	return weather.Options{
		Location:       c.Location,
		Units:          c.Units,
		PollInterval:   c.PollInterval,
		ForecastDays:   c.ForecastDays,
		IncludeToday:   c.IncludeToday,
		Separator:      c.Separator,
		Format:         c.Format,
		FormatToday:    c.FormatToday,
		FormatForecast: c.FormatForecast,
		Icons:          c.Icons,
	}
}

// parseSeconds accepts a bare number of seconds or a Go duration string.
func parseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must not be negative, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(prefix + key); value != "" {
		return value
	}
	return defaultValue
}
