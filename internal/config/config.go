// Package config is the single source of truth for loading a
// BattleConfig, layering an optional file and environment overrides on
// top of the reference defaults — grounded on the teacher's
// AppConfig/Load pattern (see the original's package comment), enriched
// with viper-based file+env loading and godotenv for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"robowar/internal/engine"
)

// Load reads an optional configuration file at path (YAML, JSON, or
// TOML, detected by extension by viper) layered over engine.Defaults,
// with ROBOWAR_-prefixed environment variables taking precedence over
// the file for the keys the file sets; keys absent from the file are
// not read from the environment. An empty path falls back to the
// defaults unmodified, with no environment overrides. A present .env in
// the working directory is loaded first.
func Load(path string) (engine.BattleConfig, error) {
	_ = godotenv.Load() // optional; silently absent outside local dev

	cfg := engine.Defaults()

	v := viper.New()
	v.SetEnvPrefix("ROBOWAR")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, "config: reading %s", path)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, errors.Wrap(err, "config: decoding battle configuration")
		}
	}

	if err := engine.ValidateBase(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SavePreset writes cfg to path as YAML, for tournament presets saved
// from the admin control plane.
func SavePreset(path string, cfg engine.BattleConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "config: encoding preset")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "config: writing preset %s", path)
	}
	return nil
}

// LoadPreset reads a YAML preset previously written by SavePreset.
func LoadPreset(path string) (engine.BattleConfig, error) {
	var cfg engine.BattleConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading preset %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "config: decoding preset")
	}
	if err := engine.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
