package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a billfold data dir.
const FileName = "billfold.yaml"

// Config represents the top-level billfold.yaml configuration.
type Config struct {
	Profile   ProfileConfig   `yaml:"profile"`
	Import    ImportConfig    `yaml:"import"`
	Reminders RemindersConfig `yaml:"reminders"`
	Git       GitConfig       `yaml:"git"`
}

// ProfileConfig identifies the tracker owner.
type ProfileConfig struct {
	Name              string `yaml:"name"`
	DefaultBudgetType string `yaml:"default_budget_type"`
}

// ImportConfig controls CSV import behavior.
type ImportConfig struct {
	DefaultAccountID int               `yaml:"default_account_id"`
	Mappings         map[string]string `yaml:"mappings,omitempty"` // name -> column mapping spec
}

// RemindersConfig controls the due-bill watcher.
type RemindersConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Schedule   string `yaml:"schedule"` // cron expression
	WindowDays int    `yaml:"window_days"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a billfold.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new tracker.
func Default(name, budgetType string) *Config {
	return &Config{
		Profile: ProfileConfig{
			Name:              name,
			DefaultBudgetType: budgetType,
		},
		Reminders: RemindersConfig{
			Enabled:    true,
			Schedule:   "0 8 * * *", // daily, 08:00
			WindowDays: 7,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Billfold",
			AuthorEmail: "ledger@billfold.dev",
		},
	}
}
