// Package config loads and validates the daemon configuration.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDir    string          `yaml:"data_dir"`
	Thresholds []int           `yaml:"thresholds"`
	Journal    JournalConfig   `yaml:"journal"`
	Broadcast  BroadcastConfig `yaml:"broadcast"`
	HTTP       HTTPConfig      `yaml:"http"`
	Metrics    MetricsConfig   `yaml:"metrics"`
	Schedule   ScheduleConfig  `yaml:"schedule"`
	Messages   MessagesConfig  `yaml:"messages"`
}

// JournalConfig configures the SQLite event journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // defaults to <data_dir>/journal.db
}

// BroadcastConfig configures NATS broadcast delivery.
type BroadcastConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HTTPConfig configures the admin/transport HTTP server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// ScheduleConfig holds cron expressions for periodic jobs. Empty
// expressions disable the job.
type ScheduleConfig struct {
	ReminderCron string `yaml:"reminder_cron,omitempty"` // e.g. "0 18 * * 5"
	ReminderText string `yaml:"reminder_text,omitempty"`
	ResetCron    string `yaml:"reset_cron,omitempty"` // e.g. "0 3 * * 1"
}

// MessagesConfig holds optional overrides for user-facing texts.
type MessagesConfig struct {
	Greeting       string `yaml:"greeting,omitempty"`
	ConfirmPlaying string `yaml:"confirm_playing,omitempty"`
	ConfirmNot     string `yaml:"confirm_not_playing,omitempty"`
	ConfirmMaybe   string `yaml:"confirm_maybe,omitempty"`
	Milestone      string `yaml:"milestone,omitempty"`
	Reset          string `yaml:"reset,omitempty"`
	EmptyRoster    string `yaml:"empty_roster,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if len(c.Thresholds) == 0 {
		c.Thresholds = []int{12, 15}
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Broadcast.Enabled {
		if c.Broadcast.NATSURL == "" {
			c.Broadcast.NATSURL = "nats://127.0.0.1:4222"
		}
		if c.Broadcast.Subject == "" {
			c.Broadcast.Subject = "rosterd.broadcast"
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("at least one threshold is required")
	}
	seen := make(map[int]bool)
	for _, t := range c.Thresholds {
		if t <= 0 {
			return fmt.Errorf("threshold must be positive, got %d", t)
		}
		if seen[t] {
			return fmt.Errorf("duplicate threshold %d", t)
		}
		seen[t] = true
	}
	if !sort.IntsAreSorted(c.Thresholds) {
		sort.Ints(c.Thresholds)
	}
	if c.Journal.Enabled && c.Journal.Path == "" && c.DataDir == "" {
		return fmt.Errorf("journal enabled but neither journal.path nor data_dir set")
	}
	return nil
}

// Default returns the built-in configuration used by `rosterd init` and
// as the fallback when no config file is given.
func Default() *Config {
	c := &Config{
		Journal: JournalConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// WriteDefault writes a starter configuration file.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
