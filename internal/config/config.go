package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.robq/robq.yaml.
type Config struct {
	DataRoot  string   `yaml:"data_root"`
	MirrorURL string   `yaml:"mirror_url,omitempty"`
	Excludes  []string `yaml:"excludes,omitempty"`
}

// RobqDir returns the absolute path to ~/.robq/.
func RobqDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".robq"), nil
}

// ConfigPath returns the absolute path to ~/.robq/robq.yaml.
func ConfigPath() (string, error) {
	dir, err := RobqDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "robq.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first robq init.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataRoot:  filepath.Join(home, ".robq", "data"),
		MirrorURL: "https://zenodo.org/records/7663438/files/robustness-data.zip",
		Excludes: []string{
			".DS_Store",
			"Thumbs.db",
			"*.tmp",
			"*.bak",
			"*.part",
			"*~",
		},
	}, nil
}

// Load reads and parses ~/.robq/robq.yaml. The ROBQ_DATA_ROOT environment
// variable (or ~/.robq/.env entry) overrides data_root when set.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if override, err := GetConfigValue(EnvDataRoot); err == nil && override != "" {
		cfg.DataRoot = override
	}

	// Expand ~ in DataRoot at load time.
	cfg.DataRoot, err = ExpandPath(cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.robq/robq.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
