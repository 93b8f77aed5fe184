package app

import (
	"os"
	"path/filepath"
	"time"

	"hwgpg/internal/domain"
	"hwgpg/internal/gpg"
	"hwgpg/internal/trezor"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string        `mapstructure:"home" yaml:"home"`                 // identity directory, e.g. ~/.gnupg/trezor
	Curve       string        `mapstructure:"curve" yaml:"curve"`               // default curve for init
	Shell       string        `mapstructure:"shell" yaml:"shell"`               // empty means $SHELL
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"` // zero tries the lock once

	GPG    GPGConfig    `mapstructure:"gpg" yaml:"gpg"`
	Trezor TrezorConfig `mapstructure:"trezor" yaml:"trezor"`
	Agent  AgentConfig  `mapstructure:"agent" yaml:"agent"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// GPGConfig locates the gpg tools.
type GPGConfig struct {
	Binary     string `mapstructure:"binary" yaml:"binary"`
	Gpgconf    string `mapstructure:"gpgconf" yaml:"gpgconf"`
	MinVersion string `mapstructure:"min_version" yaml:"min_version"`
}

// TrezorConfig locates the hardware bridge.
type TrezorConfig struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
}

// AgentConfig tunes the signing agent's lifecycle.
type AgentConfig struct {
	ProcessName  string        `mapstructure:"process_name" yaml:"process_name"`
	Probe        bool          `mapstructure:"probe" yaml:"probe"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	StartupDelay time.Duration `mapstructure:"startup_delay" yaml:"startup_delay"`
	StopGrace    time.Duration `mapstructure:"stop_grace" yaml:"stop_grace"`
}

// LogConfig selects log output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultHome returns ~/.gnupg/trezor, or a relative path when the home
// directory is unknown.
func DefaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gnupg", "trezor")
	}
	return filepath.Join(dir, ".gnupg", "trezor")
}

// Defaults returns the default value of every configuration key.
func Defaults() map[string]any {
	return map[string]any{
		"home":                DefaultHome(),
		"curve":               string(domain.CurveNIST256P1),
		"shell":               "",
		"lock_timeout":        "0s",
		"gpg.binary":          "gpg2",
		"gpg.gpgconf":         "gpgconf",
		"gpg.min_version":     gpg.DefaultMinVersion,
		"trezor.binary":       trezor.DefaultBinary,
		"agent.process_name":  trezor.DefaultBinary,
		"agent.probe":         true,
		"agent.ready_timeout": "5s",
		"agent.startup_delay": "1s",
		"agent.stop_grace":    "3s",
		"log.level":           "warning",
		"log.format":          "text",
	}
}
