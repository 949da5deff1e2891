// Package config loads deployment-wide settings from a YAML file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognimock/cognimock/internal/model"
)

// Config holds everything the emulator needs at boot: where pool files live
// and which pool options every deployment applies on top of the built-in
// defaults.
type Config struct {
	// DataDir is the directory holding one JSON file per pool plus the
	// shared clients file.
	DataDir string

	// Region prefixes generated pool ids ("<region>_<suffix>").
	Region string

	// UserPoolDefaults is layered between the built-in defaults and each
	// caller-supplied pool.
	UserPoolDefaults model.UserPool
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataDir: ".cognimock",
		Region:  "local",
		UserPoolDefaults: model.UserPool{
			UsernameAttributes: []string{"email"},
		},
	}
}

// rawConfig is the YAML shape. Pool options keep the service's own field
// names (Id, MfaConfiguration, ...), so they arrive as a generic map and are
// re-decoded through the model's JSON tags.
type rawConfig struct {
	DataDir          string         `yaml:"dataDir"`
	Region           string         `yaml:"region"`
	UserPoolDefaults map[string]any `yaml:"userPoolDefaults"`
}

// Load reads path and overlays it on the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if raw.Region != "" {
		cfg.Region = raw.Region
	}
	if raw.UserPoolDefaults != nil {
		buf, err := json.Marshal(raw.UserPoolDefaults)
		if err != nil {
			return Config{}, fmt.Errorf("config: userPoolDefaults: %w", err)
		}
		cfg.UserPoolDefaults = model.UserPool{}
		if err := json.Unmarshal(buf, &cfg.UserPoolDefaults); err != nil {
			return Config{}, fmt.Errorf("config: userPoolDefaults: %w", err)
		}
	}
	return cfg, nil
}
