package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	// DSN is a pgx-compatible connection string, e.g.
	// "postgres://wolfpack@db.example.edu/ssunews?sslmode=verify-full".
	DSN string `yaml:"dsn" json:"dsn"`
	// Schema is set as the connection search_path so the scraper's tables
	// can live in their own namespace.
	Schema string `yaml:"schema" json:"schema"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Feeds is the ordered list of iCalendar feed URLs to scrape. If empty,
	// the pipeline falls back to the calendar_urls table.
	Feeds []string `yaml:"feeds" json:"feeds"`

	// Cron is a cron-style schedule (e.g. "0 3 * * *") used when the
	// scraper runs as a daemon. Ignored with -once.
	Cron string `yaml:"cron" json:"cron"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// defaultFeeds mirrors the feeds published by the university calendar
// service. The list is ordered; the pipeline scrapes in this order.
var defaultFeeds = []string{
	"https://25livepub.collegenet.com/calendars/Highlighted_Event.ics",
	"https://25livepub.collegenet.com/calendars/Arts_and_Entertainment.ics",
	"https://25livepub.collegenet.com/calendars/Athletics_New.ics",
	"https://25livepub.collegenet.com/calendars/Club_and_Student_Organizations.ics",
	"https://25livepub.collegenet.com/calendars/Community_and_Alumni.ics",
	"https://25livepub.collegenet.com/calendars/Diversity_Related.ics",
	"https://25livepub.collegenet.com/calendars/Lectures_and_Films.ics",
	"https://25livepub.collegenet.com/calendars/Student_Calendar.ics",
	"https://25livepub.collegenet.com/calendars/Classes_and_Workshops.ics",
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:    "postgres://localhost/ssunews",
			Schema: "ssucalendar",
		},
		Feeds:    append([]string(nil), defaultFeeds...),
		Cron:     "0 3 * * *",
		LogLevel: "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Database.Schema == "" {
		c.Database.Schema = "ssucalendar"
	}
	if c.Cron == "" {
		c.Cron = "0 3 * * *"
	}
	switch c.LogLevel {
	case "debug", "info", "error":
		// ok
	default:
		c.LogLevel = "info"
	}
	if c.Feeds == nil {
		c.Feeds = []string{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write a default config with 0600 perms
//     and return the default config.
//   - If the file exists, read YAML, unmarshal, and normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path. The write is
// atomic (temp file + rename) and the final file ends up 0600, since the
// DSN may carry credentials.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calscrape-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
