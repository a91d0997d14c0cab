package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/wthrbar/internal/weather"
)

var allKeys = []string{
	"LOCATION", "UNITS", "POLL_INTERVAL", "FORECAST_DAYS", "FORECAST_INCLUDE_TODAY",
	"FORECAST_SEPARATOR", "FORMAT", "FORMAT_TODAY", "FORMAT_FORECAST",
	"ICON_SUN", "ICON_CLOUD", "ICON_RAIN", "ICON_SNOW", "ICON_DEFAULT",
	"REQUEST_TIMEOUT", "BASE_URL", "DB_PATH",
}

// clearEnv unsets every WTHRBAR_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		key := prefix + k
		if v, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Location)
	assert.Equal(t, weather.Celsius, cfg.Units)
	assert.Equal(t, 7200*time.Second, cfg.PollInterval)
	assert.Equal(t, 3, cfg.ForecastDays)
	assert.False(t, cfg.IncludeToday)
	assert.Equal(t, " ", cfg.Separator)
	assert.Equal(t, "{today} {forecasts}", cfg.Format)
	assert.Equal(t, "{icon}", cfg.FormatToday)
	assert.Equal(t, "{icon}", cfg.FormatForecast)
	assert.Equal(t, weather.DefaultIcons, cfg.Icons)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, weather.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "places.db", cfg.DBPath)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WTHRBAR_LOCATION", " 615702 ")
	t.Setenv("WTHRBAR_UNITS", "Fahrenheit")
	t.Setenv("WTHRBAR_POLL_INTERVAL", "15m")
	t.Setenv("WTHRBAR_FORECAST_DAYS", "5")
	t.Setenv("WTHRBAR_FORECAST_INCLUDE_TODAY", "true")
	t.Setenv("WTHRBAR_FORECAST_SEPARATOR", "")
	t.Setenv("WTHRBAR_FORMAT_TODAY", "Now: {icon}{temp}°{units} {text}")
	t.Setenv("WTHRBAR_ICON_SUN", "S")
	t.Setenv("WTHRBAR_REQUEST_TIMEOUT", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "615702", cfg.Location)
	assert.Equal(t, weather.Fahrenheit, cfg.Units)
	assert.Equal(t, 15*time.Minute, cfg.PollInterval)
	assert.Equal(t, 5, cfg.ForecastDays)
	assert.True(t, cfg.IncludeToday)
	assert.Equal(t, "", cfg.Separator)
	assert.Equal(t, "Now: {icon}{temp}°{units} {text}", cfg.FormatToday)
	assert.Equal(t, "S", cfg.Icons.Sun)
	assert.Equal(t, weather.DefaultIcons.Rain, cfg.Icons.Rain)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WTHRBAR_LOCATION=615702\nWTHRBAR_FORECAST_DAYS=2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "615702", cfg.Location)
	assert.Equal(t, 2, cfg.ForecastDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("WTHRBAR_LOCATION", "44418")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WTHRBAR_LOCATION=615702\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "44418", cfg.Location)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WTHRBAR_UNITS", "kelvin"},
		{"WTHRBAR_POLL_INTERVAL", "soon"},
		{"WTHRBAR_POLL_INTERVAL", "-5"},
		{"WTHRBAR_REQUEST_TIMEOUT", "-1s"},
		{"WTHRBAR_FORECAST_DAYS", "three"},
		{"WTHRBAR_FORECAST_DAYS", "-1"},
		{"WTHRBAR_FORECAST_INCLUDE_TODAY", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestServiceOptions(t *testing.T) {
	cfg := &Config{
		Location:       "615702",
		Units:          weather.Celsius,
		PollInterval:   time.Hour,
		ForecastDays:   4,
		IncludeToday:   true,
		Separator:      "|",
		Format:         "{today}",
		FormatToday:    "{icon}",
		FormatForecast: "{icon}{high}",
		Icons:          weather.DefaultIcons,
		RequestTimeout: time.Second,
	}

	assert.Equal(t, weather.Options{
		Location:       "615702",
		Units:          weather.Celsius,
		PollInterval:   time.Hour,
		ForecastDays:   4,
		IncludeToday:   true,
		Separator:      "|",
		Format:         "{today}",
		FormatToday:    "{icon}",
		FormatForecast: "{icon}{high}",
		Icons:          weather.DefaultIcons,
	}, cfg.ServiceOptions())
}
