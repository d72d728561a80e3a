package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"adapterd/pkg/types"
)

// LoadDir scans a directory for *.safetensors files and builds adapter specs
// from filenames. Name is the filename without extension; Locator is the
// absolute file path.
func LoadDir(dir string) ([]types.AdapterSpec, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var specs []types.AdapterSpec
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".safetensors") {
			continue
		}
		specs = append(specs, types.AdapterSpec{
			Name:    strings.TrimSuffix(name, filepath.Ext(name)),
			Locator: filepath.Join(abs, name),
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// manifest is the on-disk YAML form of an adapter catalog.
type manifest struct {
	Adapters []types.AdapterSpec `yaml:"adapters"`
}

// LoadManifest reads an explicit adapter catalog from a YAML file. Relative
// locators are resolved against the manifest's directory.
func LoadManifest(path string) ([]types.AdapterSpec, error) {
	p, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	dir := filepath.Dir(p)
	for i, a := range m.Adapters {
		if a.Name == "" {
			return nil, fmt.Errorf("manifest entry %d: missing name", i)
		}
		if a.Locator == "" {
			return nil, fmt.Errorf("manifest adapter %q: missing locator", a.Name)
		}
		loc, err := expandHome(a.Locator)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(loc) {
			loc = filepath.Join(dir, loc)
		}
		m.Adapters[i].Locator = loc
	}
	return m.Adapters, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/adapters/medical
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
