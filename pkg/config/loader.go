package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, merges, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load watchit.yaml from configDir (if present)
//  2. Expand environment variables
//  3. Merge over built-in defaults (user values win)
//  4. Validate
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized",
		"db_path", cfg.DBPath,
		"judge_provider", cfg.Judge.Provider,
		"ocr_enabled", cfg.OCR.Enabled,
		"replicator_enabled", cfg.Replicator.PGDSN != "")

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	cfg := defaultConfig()
	cfg.configDir = configDir

	loader := &configLoader{configDir: configDir}

	// The file is decoded over a copy of the defaults, so keys it omits keep
	// their default values and keys it sets win even when set to false/zero.
	user := *defaultConfig()
	err := loader.loadYAML("watchit.yaml", &user)
	switch {
	case err == nil:
		if err := mergo.Merge(cfg, &user, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
			return nil, fmt.Errorf("failed to merge user configuration: %w", err)
		}
	case errors.Is(err, ErrConfigNotFound):
		slog.Warn("no watchit.yaml found, using built-in defaults", "config_dir", configDir)
	default:
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}
