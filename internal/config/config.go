package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ProjectRoot   string          `yaml:"project_root"`
	EditablePaths []string        `yaml:"editable_paths"`
	Ignore        []string        `yaml:"ignore"`
	Web           WebConfig       `yaml:"web"`
	Log           LogConfig       `yaml:"log"`
	Assistant     AssistantConfig `yaml:"assistant"`
}

type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// AssistantConfig describes the external assistant process to supervise.
// An empty Command disables supervision entirely.
type AssistantConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	MaxRetries int      `yaml:"max_retries"`
}

func DefaultConfig() Config {
	return Config{
		ProjectRoot:   ".",
		EditablePaths: []string{"."},
		Web: WebConfig{
			Bind: "127.0.0.1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	if len(cfg.EditablePaths) == 0 {
		cfg.EditablePaths = []string{"."}
	}
	if cfg.Web.Bind == "" {
		cfg.Web.Bind = "127.0.0.1"
	}

	return cfg, nil
}

// ResolveProjectRoot returns the absolute project root.
func (c *Config) ResolveProjectRoot() string {
	abs, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return c.ProjectRoot
	}
	return abs
}

// DataDir returns the directory holding the instance lock, port file, and
// logs.
func DataDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "agentdesk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "state", "agentdesk")
	}

	return filepath.Join(home, ".local", "state", "agentdesk")
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentdesk", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "agentdesk", "config.yaml")
	}

	return filepath.Join(home, ".config", "agentdesk", "config.yaml")
}
