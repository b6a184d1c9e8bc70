package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix maps nested keys like interaction.damping to PANELS_INTERACTION_DAMPING.
const envPrefix = "PANELS"

// newViper returns a viper instance with every key of Default() registered as a default, so
// env overrides resolve and fields missing from the file keep their defaults across reloads.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	base, err := yaml.Marshal(Default())
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(base, &tree); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return v, nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Load reads the YAML file at path over the defaults and applies PANELS_* environment
// overrides. A missing file is not an error: the defaults (plus env) are returned.
func Load(path string) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Default(), err
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Default(), fmt.Errorf("read %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Default(), err
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// ApplyDefaults fills body fields that a hand-written entry commonly leaves out.
func ApplyDefaults(cfg *Config) {
	def := Default().Bodies[0]
	for i := range cfg.Bodies {
		b := &cfg.Bodies[i]
		if b.Radius == 0 {
			b.Radius = def.Radius
		}
		if len(b.Rows) == 0 {
			b.Rows = append([]int(nil), def.Rows...)
		}
		if b.Opacity == nil {
			b.Opacity = Float(1)
		}
	}
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Watch calls onChange with the reloaded config every time the file at path changes on disk.
// Changes that fail to parse or validate are reported to onError (if set) and skipped. The
// callbacks run on viper's watcher goroutine.
func Watch(path string, onChange func(Config), onError func(error)) error {
	v, err := newViper()
	if err != nil {
		return err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
