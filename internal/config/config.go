// Package config loads layered configuration with viper and writes it back
// as YAML.
//
// Precedence, lowest first: defaults, /etc/hwgpg/hwgpg.yaml, the user config
// directory's hwgpg/hwgpg.yaml, ./hwgpg.yaml, an explicit --config file,
// HWGPG_* environment variables, and command-line flags that were set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	name      = "hwgpg"
	envPrefix = "HWGPG"
)

// Path returns the user or system config file path.
func Path(system bool) (string, error) {
	if system {
		return filepath.Join("/etc", name, name+".yaml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, name, name+".yaml"), nil
}

// searchPaths lists the config files merged before an explicit one.
func searchPaths() []string {
	var paths []string
	if p, err := Path(true); err == nil {
		paths = append(paths, p)
	}
	if p, err := Path(false); err == nil {
		paths = append(paths, p)
	}
	return append(paths, name+".yaml")
}

// Load builds a T from defaults, config files, environment and flags.
// explicit, when not empty, must name a readable config file.
func Load[T any](flags *pflag.FlagSet, defaults map[string]any, explicit string) (T, error) {
	var c T
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, path := range searchPaths() {
		if err := mergeFile(v, path, false); err != nil {
			return c, err
		}
	}
	if explicit != "" {
		if err := mergeFile(v, explicit, true); err != nil {
			return c, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parsing configuration: %w", err)
	}
	return c, nil
}

// mergeFile merges path into v. A missing optional file is skipped.
func mergeFile(v *viper.Viper, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// WriteFile writes c as YAML to the user or system config path and returns
// the path written.
func WriteFile[T any](c *T, system bool) (string, error) {
	path, err := Path(system)
	if err != nil {
		return "", err
	}
	return path, WriteFileTo(c, path)
}

// WriteFileTo writes c as YAML to path with owner-only permissions.
func WriteFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
