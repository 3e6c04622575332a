// Package config provides configuration management for storyloop.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the per-project configuration file looked up in the
// project root.
const ConfigFileName = "storyloop.toml"

// Config represents the storyloop configuration.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Files   FilesConfig   `toml:"files"`
	Service ServiceConfig `toml:"service"`
	Logging LoggingConfig `toml:"logging"`
}

// ProjectConfig contains project-level settings.
type ProjectConfig struct {
	// RootDir is the directory holding the story store and its companions.
	RootDir string `toml:"root_dir"`
}

// FilesConfig names the persisted records relative to the project root.
type FilesConfig struct {
	Store      string `toml:"store"`
	Progress   string `toml:"progress"`
	Template   string `toml:"template"`
	Marker     string `toml:"marker"`
	ArchiveDir string `toml:"archive_dir"`
}

// ServiceConfig contains settings for storyloop-service.
type ServiceConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Output     []string `toml:"output"` // "stdout", "file", or both
	File       string   `toml:"file"`
	TimeFormat string   `toml:"time_format"`
	Format     string   `toml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration rooted at dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		Project: ProjectConfig{
			RootDir: dir,
		},
		Files: FilesConfig{
			Store:      "prd.json",
			Progress:   "progress.txt",
			Template:   "PROMPT.md",
			Marker:     ".storyloop-branch",
			ArchiveDir: "archive",
		},
		Service: ServiceConfig{
			Host: "127.0.0.1",
			Port: 8430,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// Load loads configuration for the project rooted at dir, merging
// storyloop.toml over defaults when it exists.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig(dir)

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	if err := toml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Expand tilde in root_dir
	if strings.HasPrefix(cfg.Project.RootDir, "~/") {
		home, _ := os.UserHomeDir()
		cfg.Project.RootDir = filepath.Join(home, cfg.Project.RootDir[2:])
	}
	if cfg.Project.RootDir == "" {
		cfg.Project.RootDir = dir
	}

	return cfg, nil
}

// Save saves the configuration to the project root.
func (c *Config) Save() error {
	path := filepath.Join(c.Project.RootDir, ConfigFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Address returns the full address string for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.Port)
}

// StorePath returns the path to the story store record.
func (c *Config) StorePath() string {
	return c.resolve(c.Files.Store)
}

// ProgressPath returns the path to the progress log.
func (c *Config) ProgressPath() string {
	return c.resolve(c.Files.Progress)
}

// TemplatePath returns the path to the prompt template.
func (c *Config) TemplatePath() string {
	return c.resolve(c.Files.Template)
}

// MarkerPath returns the path to the last-seen-branch marker.
func (c *Config) MarkerPath() string {
	return c.resolve(c.Files.Marker)
}

// ArchiveDir returns the path to the archive directory.
func (c *Config) ArchiveDir() string {
	return c.resolve(c.Files.ArchiveDir)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Project.RootDir, name)
}
