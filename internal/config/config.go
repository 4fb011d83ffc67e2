package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "meetme.yaml"

// Config is the application configuration.
type Config struct {
	// Timezone is the IANA zone user input is interpreted in. Empty means the system zone.
	Timezone string `yaml:"timezone"`

	// DailyStart and DailyEnd are the default daily window, in any format the CLI accepts.
	DailyStart string `yaml:"daily_start"`
	DailyEnd   string `yaml:"daily_end"`

	LogLevel string `yaml:"log_level"`

	Google GoogleConfig `yaml:"google"`
	CalDAV CalDAVConfig `yaml:"caldav"`
	Store  StoreConfig  `yaml:"store"`
}

// GoogleConfig holds Google Calendar access settings.
type GoogleConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenDir     string   `yaml:"token_dir"`
	CalendarIDs  []string `yaml:"calendar_ids"`
}

// CalDAVConfig holds settings for an optional CalDAV calendar.
type CalDAVConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CalendarName string `yaml:"calendar_name"`
}

// Enabled reports whether enough is configured to reach the calendar.
func (c CalDAVConfig) Enabled() bool {
	return c.Username != "" && c.CalendarName != ""
}

// StoreConfig selects where meetings are kept.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // "file" or "postgres"
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DailyStart: "8am",
		DailyEnd:   "5pm",
		LogLevel:   "info",
		Google: GoogleConfig{
			TokenDir:    ".",
			CalendarIDs: []string{"primary"},
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   "meetings.json",
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Timezone, "MEETME_TIMEZONE")
	setString(&c.DailyStart, "MEETME_DAILY_START")
	setString(&c.DailyEnd, "MEETME_DAILY_END")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.TokenDir, "GOOGLE_TOKEN_DIR")
	if v := os.Getenv("GOOGLE_CALENDAR_IDS"); v != "" {
		c.Google.CalendarIDs = splitList(v)
	}

	setString(&c.CalDAV.Endpoint, "CALDAV_ENDPOINT")
	setString(&c.CalDAV.Username, "CALDAV_USERNAME")
	setString(&c.CalDAV.Password, "CALDAV_PASSWORD")
	setString(&c.CalDAV.CalendarName, "CALDAV_CALENDAR_NAME")

	setString(&c.Store.Driver, "MEETME_STORE")
	setString(&c.Store.Path, "MEETME_STORE_PATH")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
}

// Normalize fills in missing values so that partially filled configs still work.
func (c *Config) Normalize() {
	def := Default()
	if c.DailyStart == "" {
		c.DailyStart = def.DailyStart
	}
	if c.DailyEnd == "" {
		c.DailyEnd = def.DailyEnd
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Google.TokenDir == "" {
		c.Google.TokenDir = def.Google.TokenDir
	}
	if len(c.Google.CalendarIDs) == 0 {
		c.Google.CalendarIDs = def.Google.CalendarIDs
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
}

// Location returns the configured zone, or the system zone when none is set.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
