package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func checkConfig(t *testing.T, cfg Config) {
	t.Helper()
	if cfg.Addr != ":8090" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.BaseModel != "/models/medllama-7b-q4.gguf" {
		t.Errorf("base_model = %q", cfg.BaseModel)
	}
	if cfg.DefaultAdapter != "cardiology" {
		t.Errorf("default_adapter = %q", cfg.DefaultAdapter)
	}
	if cfg.MaxConcurrent != 4 || cfg.MaxResident != 2 {
		t.Errorf("limits = %d/%d", cfg.MaxConcurrent, cfg.MaxResident)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "adapterd.yaml", `
addr: ":8090"
base_model: /models/medllama-7b-q4.gguf
default_adapter: cardiology
max_concurrent: 4
max_resident: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "adapterd.json", `{
  "addr": ":8090",
  "base_model": "/models/medllama-7b-q4.gguf",
  "default_adapter": "cardiology",
  "max_concurrent": 4,
  "max_resident": 2
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "adapterd.toml", `
addr = ":8090"
base_model = "/models/medllama-7b-q4.gguf"
default_adapter = "cardiology"
max_concurrent = 4
max_resident = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Errorf("empty path: expected error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file: expected error")
	}
	if _, err := Load(writeFile(t, "adapterd.ini", "addr=:8090")); err == nil {
		t.Errorf("unsupported extension: expected error")
	}
	if _, err := Load(writeFile(t, "broken.yaml", "addr: [")); err == nil {
		t.Errorf("bad yaml: expected error")
	}
}
