package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file
const (
	EnvOpenWeatherMapKey = "OPENWEATHERMAP_API_KEY"
	EnvWeatherAPIKey     = "WEATHERAPI_API_KEY"
	EnvTimezone          = "FORECAST_TIMEZONE"
)

// Config represents the application configuration
type Config struct {
	// API provider configurations
	OpenWeatherMap struct {
		Enabled bool   `json:"enabled"`
		APIKey  string `json:"apiKey"`
		BaseURL string `json:"baseURL"`
	} `json:"openWeatherMap"`

	WeatherAPI struct {
		Enabled bool   `json:"enabled"`
		APIKey  string `json:"apiKey"`
		BaseURL string `json:"baseURL"`
	} `json:"weatherAPI"`

	RateLimit struct {
		Enabled bool    `json:"enabled"`
		RPS     float64 `json:"rps"`
		Burst   int     `json:"burst"`
	} `json:"rateLimit"`

	// IANA zone used to group samples into days; empty means the host zone
	Timezone string `json:"timezone"`

	// CacheTTL is a Go duration string such as "10m"
	CacheTTL string `json:"cacheTTL"`

	// PrefetchInterval is a Go duration string; empty disables refreshing
	PrefetchInterval string `json:"prefetchInterval"`

	// CurrentLocation stands in for the device position
	CurrentLocation *Coordinates `json:"currentLocation"`

	// Locations to prefetch at start-up
	Locations []string `json:"locations"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads filename, falling back to defaults when it does not exist
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return config, err
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.OpenWeatherMap.Enabled = true
	config.WeatherAPI.Enabled = false
	// OpenWeatherMap free tier allows 60 calls/minute
	config.RateLimit.Enabled = true
	config.RateLimit.RPS = 1.0
	config.RateLimit.Burst = 5
	config.CacheTTL = "10m"
	config.Locations = []string{}
	return config
}

// LoadEnv reads .env files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides API keys and the time zone from the environment
func (c *Config) ApplyEnv() {
	if key := os.Getenv(EnvOpenWeatherMapKey); key != "" {
		c.OpenWeatherMap.APIKey = key
	}
	if key := os.Getenv(EnvWeatherAPIKey); key != "" {
		c.WeatherAPI.APIKey = key
	}
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheDuration parses CacheTTL. Zero disables caching.
func (c *Config) CacheDuration() (time.Duration, error) {
	return parseDuration("cacheTTL", c.CacheTTL)
}

// PrefetchEvery parses PrefetchInterval. Zero means prefetch once.
func (c *Config) PrefetchEvery() (time.Duration, error) {
	return parseDuration("prefetchInterval", c.PrefetchInterval)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}

// Validate checks that at least one provider is usable
func (c *Config) Validate() error {
	if !c.OpenWeatherMap.Enabled && !c.WeatherAPI.Enabled {
		return errors.New("no weather providers enabled in configuration")
	}
	if c.OpenWeatherMap.Enabled && c.OpenWeatherMap.APIKey == "" {
		return fmt.Errorf("OpenWeatherMap is enabled but no API key provided (set %s)", EnvOpenWeatherMapKey)
	}
	if c.WeatherAPI.Enabled && c.WeatherAPI.APIKey == "" {
		return fmt.Errorf("WeatherAPI is enabled but no API key provided (set %s)", EnvWeatherAPIKey)
	}
	if c.CurrentLocation != nil && !c.CurrentLocation.Valid() {
		return fmt.Errorf("currentLocation out of range: %+v", *c.CurrentLocation)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.CacheDuration(); err != nil {
		return err
	}
	_, err := c.PrefetchEvery()
	return err
}
