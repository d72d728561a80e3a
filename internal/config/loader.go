package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	BaseModel       string `json:"base_model" yaml:"base_model" toml:"base_model"`
	AdaptersDir     string `json:"adapters_dir" yaml:"adapters_dir" toml:"adapters_dir"`
	AdapterManifest string `json:"adapter_manifest" yaml:"adapter_manifest" toml:"adapter_manifest"`
	DefaultAdapter  string `json:"default_adapter" yaml:"default_adapter" toml:"default_adapter"`
	MaxConcurrent   int    `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	MaxResident     int    `json:"max_resident" yaml:"max_resident" toml:"max_resident"`
	MaxWaitSec      int    `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`
	SwitchWaitSec   int    `json:"switch_wait_sec" yaml:"switch_wait_sec" toml:"switch_wait_sec"`
	LlamaCtx        int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads    int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
