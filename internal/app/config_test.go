package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.PageSize != defaultPageSize {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.PollIntervalSec != 5 {
		t.Fatalf("poll interval = %d", cfg.PollIntervalSec)
	}
}

func TestLoadConfigNormalizesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("base_url: \"\"\nlanguage: ja\npage_size: 500\npoll_interval_sec: -1\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("empty base_url not defaulted: %q", cfg.BaseURL)
	}
	if cfg.Language != "ja" {
		t.Fatalf("language = %q", cfg.Language)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("page_size not clamped: %d", cfg.PageSize)
	}
	if cfg.PollIntervalSec != 5 {
		t.Fatalf("poll_interval_sec not normalized: %d", cfg.PollIntervalSec)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	in := DefaultConfig()
	in.Language = "ja"
	in.ExportDir = "/tmp/exports"

	if err := SaveConfig(in, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestSaveConfigRequiresPath(t *testing.T) {
	if err := SaveConfig(DefaultConfig(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
