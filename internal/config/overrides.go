package config

import (
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// LoadWithOverrides loads configuration for a start path with an optional
// overrides map applied on top of every other source.
//
// The CLI feeds explicitly set flags through this map so they win over
// file and environment values. Keys may be nested maps or flat dotted
// paths, for example:
//
//	overrides := map[string]any{
//	  "output.format": "json",
//	  "ai":            map[string]any{"auto-apply": true},
//	}
//
// Precedence: defaults → filesystem config → env → overrides.
func LoadWithOverrides(startPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPathAndOverrides(Discover(startPath), overrides)
}

// LoadFileWithOverrides is LoadWithOverrides for an explicit config
// file path, skipping discovery.
func LoadFileWithOverrides(configPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPathAndOverrides(configPath, overrides)
}

func loadWithConfigPathAndOverrides(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1) Defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2) Filesystem config, then env, then explicit overrides.
	if err := loadConfigFile(k, configPath); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	if err := loadOverrides(k, overrides); err != nil {
		return nil, err
	}

	// 3) Validate the merged config and decode.
	cfg, err := decodeConfig(k)
	if err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

func loadConfigFile(k *koanf.Koanf, configPath string) error {
	if configPath == "" {
		return nil
	}
	return k.Load(file.Provider(configPath), toml.Parser())
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil)
}

func loadOverrides(k *koanf.Koanf, overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(overrides, "."), nil)
}
