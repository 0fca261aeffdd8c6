package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Picker  PickerConfig  `mapstructure:"picker"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Control ControlConfig `mapstructure:"control"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig locates the application catalog.
type CatalogConfig struct {
	Path      string `mapstructure:"path"`
	Manifests string `mapstructure:"manifests"`
}

// PickerConfig holds session timing and lifecycle settings.
type PickerConfig struct {
	WatchdogTimeout time.Duration `mapstructure:"watchdog_timeout"`
	InfoDuration    time.Duration `mapstructure:"info_duration"`
	PauseTerminate  bool          `mapstructure:"pause_terminate"`
	Locale          string        `mapstructure:"locale"`
}

// NotifyConfig holds caller notification settings.
type NotifyConfig struct {
	DaemonSocket string `mapstructure:"daemon_socket"`
}

// ControlConfig holds the single-instance control socket settings.
type ControlConfig struct {
	Socket        string `mapstructure:"socket"`
	ReuseInstance bool   `mapstructure:"reuse_instance"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// APP_SELECTOR_, e.g. APP_SELECTOR_PICKER_WATCHDOG_TIMEOUT=5s.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("APP_SELECTOR_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(configHome(), "app-selector"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("APP_SELECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Picker.WatchdogTimeout <= 0 {
		return Config{}, fmt.Errorf("picker.watchdog_timeout must be positive, got %s", c.Picker.WatchdogTimeout)
	}
	if c.Picker.InfoDuration <= 0 {
		return Config{}, fmt.Errorf("picker.info_duration must be positive, got %s", c.Picker.InfoDuration)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := homeDir()
	runtime := runtimeDir()

	v.SetDefault("catalog.path", filepath.Join(dataHome(), "app-selector", "catalog.db"))
	v.SetDefault("catalog.manifests", filepath.Join(dataHome(), "app-selector", "apps"))
	v.SetDefault("picker.watchdog_timeout", "3s")
	v.SetDefault("picker.info_duration", "2s")
	v.SetDefault("picker.pause_terminate", true)
	v.SetDefault("picker.locale", os.Getenv("LANG"))
	v.SetDefault("notify.daemon_socket", filepath.Join(runtime, "app-selector", "daemon.sock"))
	v.SetDefault("control.socket", filepath.Join(runtime, "app-selector", "control.sock"))
	v.SetDefault("control.reuse_instance", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", filepath.Join(stateHome(home), "app-selector", "app-selector.log"))
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to /tmp if home directory is unavailable
		return "/tmp"
	}
	return home
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "share")
}

func stateHome(home string) string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(home, ".local", "state")
}

func runtimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}
