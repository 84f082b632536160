package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL            string `yaml:"base_url"`
	Language           string `yaml:"language"`
	PageSize           int    `yaml:"page_size"`
	ActivitiesPageSize int    `yaml:"activities_page_size"`
	PollIntervalSec    int    `yaml:"poll_interval_sec"`
	ExportDir          string `yaml:"export_dir"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		Language:           string(LangEnglish),
		PageSize:           defaultPageSize,
		ActivitiesPageSize: defaultActivitiesPageSize,
		PollIntervalSec:    5,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = string(LangEnglish)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > 100 {
		cfg.PageSize = 100
	}
	if cfg.ActivitiesPageSize <= 0 {
		cfg.ActivitiesPageSize = defaultActivitiesPageSize
	}
	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = 5
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "jules-cli", "config.yml")
}
