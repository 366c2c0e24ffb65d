// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Device() DeviceConfig
	Timing() TimingConfig
	Engine() EngineConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	DeviceCfg DeviceConfig `mapstructure:"device" yaml:"device"`
	TimingCfg TimingConfig `mapstructure:"timing" yaml:"timing"`
	EngineCfg EngineConfig `mapstructure:"engine" yaml:"engine"`
}

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Device() DeviceConfig { return c.DeviceCfg }
func (c *Config) Timing() TimingConfig { return c.TimingCfg }
func (c *Config) Engine() EngineConfig { return c.EngineCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DeviceConfig identifies the target device and the tooling used to reach it.
type DeviceConfig struct {
	// Serial selects a device when several are attached (adb -s).
	Serial string `mapstructure:"serial" yaml:"serial"`
	// ADBPath is the adb binary to invoke; resolved via PATH when bare.
	ADBPath string `mapstructure:"adb_path" yaml:"adb_path"`
	// AutomationIME is the input method used for programmatic text entry.
	AutomationIME string `mapstructure:"automation_ime" yaml:"automation_ime"`
	// ScreenWidth/ScreenHeight are the pixel dimensions the logical
	// [0,1000] grid maps onto.
	ScreenWidth  int `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight int `mapstructure:"screen_height" yaml:"screen_height"`
}

// EngineConfig configures the instruction loop runner.
type EngineConfig struct {
	MaxSteps    int           `mapstructure:"max_steps" yaml:"max_steps"`
	StepTimeout time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
}

// TimingConfig is the delay table consulted between dispatch sub-steps.
// It is built once at startup and passed by value into the dispatcher; the
// engine never consults ambient global state for delays.
type TimingConfig struct {
	Action     ActionTimingConfig     `mapstructure:"action" yaml:"action"`
	Device     DeviceTimingConfig     `mapstructure:"device" yaml:"device"`
	Connection ConnectionTimingConfig `mapstructure:"connection" yaml:"connection"`
}

// ActionTimingConfig holds the synchronization waits for the text input
// sequence. The device gives no completion signal for keyboard switches or
// field clears, so each delay is a hard wait.
type ActionTimingConfig struct {
	KeyboardSwitchDelay  time.Duration `mapstructure:"keyboard_switch_delay" yaml:"keyboard_switch_delay"`
	TextClearDelay       time.Duration `mapstructure:"text_clear_delay" yaml:"text_clear_delay"`
	TextInputDelay       time.Duration `mapstructure:"text_input_delay" yaml:"text_input_delay"`
	KeyboardRestoreDelay time.Duration `mapstructure:"keyboard_restore_delay" yaml:"keyboard_restore_delay"`
}

// DeviceTimingConfig holds per-gesture settle times and gesture durations.
type DeviceTimingConfig struct {
	TapDelay          time.Duration `mapstructure:"tap_delay" yaml:"tap_delay"`
	DoubleTapDelay    time.Duration `mapstructure:"double_tap_delay" yaml:"double_tap_delay"`
	DoubleTapInterval time.Duration `mapstructure:"double_tap_interval" yaml:"double_tap_interval"`
	LongPressDelay    time.Duration `mapstructure:"long_press_delay" yaml:"long_press_delay"`
	LongPressDuration time.Duration `mapstructure:"long_press_duration" yaml:"long_press_duration"`
	SwipeDelay        time.Duration `mapstructure:"swipe_delay" yaml:"swipe_delay"`
	SwipeDuration     time.Duration `mapstructure:"swipe_duration" yaml:"swipe_duration"`
	BackDelay         time.Duration `mapstructure:"back_delay" yaml:"back_delay"`
	HomeDelay         time.Duration `mapstructure:"home_delay" yaml:"home_delay"`
	LaunchDelay       time.Duration `mapstructure:"launch_delay" yaml:"launch_delay"`
}

// ConnectionTimingConfig holds recovery waits around the adb server itself.
type ConnectionTimingConfig struct {
	ADBRestartDelay    time.Duration `mapstructure:"adb_restart_delay" yaml:"adb_restart_delay"`
	ServerRestartDelay time.Duration `mapstructure:"server_restart_delay" yaml:"server_restart_delay"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "droidpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Device --
	v.SetDefault("device.serial", "")
	v.SetDefault("device.adb_path", "adb")
	v.SetDefault("device.automation_ime", "com.android.adbkeyboard/.AdbIME")
	v.SetDefault("device.screen_width", 1080)
	v.SetDefault("device.screen_height", 2340)

	// -- Engine --
	v.SetDefault("engine.max_steps", 25)
	v.SetDefault("engine.step_timeout", "2m")

	// -- Timing: action --
	v.SetDefault("timing.action.keyboard_switch_delay", "1s")
	v.SetDefault("timing.action.text_clear_delay", "1s")
	v.SetDefault("timing.action.text_input_delay", "1s")
	v.SetDefault("timing.action.keyboard_restore_delay", "1s")

	// -- Timing: device --
	v.SetDefault("timing.device.tap_delay", "1s")
	v.SetDefault("timing.device.double_tap_delay", "1s")
	v.SetDefault("timing.device.double_tap_interval", "100ms")
	v.SetDefault("timing.device.long_press_delay", "1s")
	v.SetDefault("timing.device.long_press_duration", "3s")
	v.SetDefault("timing.device.swipe_delay", "1s")
	v.SetDefault("timing.device.swipe_duration", "500ms")
	v.SetDefault("timing.device.back_delay", "1s")
	v.SetDefault("timing.device.home_delay", "1s")
	v.SetDefault("timing.device.launch_delay", "1s")

	// -- Timing: connection --
	v.SetDefault("timing.connection.adb_restart_delay", "2s")
	v.SetDefault("timing.connection.server_restart_delay", "1s")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with our own defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// BindEnv wires the DROIDPILOT_* environment namespace into the viper
// instance, so every setting (timing delays included) is individually
// overridable, e.g. DROIDPILOT_TIMING_ACTION_KEYBOARD_SWITCH_DELAY=1500ms.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DROIDPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a configuration instance from a viper object.
// A malformed override (an unparsable duration, a non-integer dimension)
// fails here instead of silently falling back to a default; a masked timing
// misconfiguration would quietly destabilize every subsequent run.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.DeviceCfg.ADBPath == "" {
		return fmt.Errorf("device.adb_path must not be empty")
	}
	if c.DeviceCfg.ScreenWidth <= 0 || c.DeviceCfg.ScreenHeight <= 0 {
		return fmt.Errorf("device.screen_width and device.screen_height must be positive")
	}
	if c.EngineCfg.MaxSteps <= 0 {
		return fmt.Errorf("engine.max_steps must be a positive integer")
	}
	if err := c.TimingCfg.Validate(); err != nil {
		return fmt.Errorf("timing configuration invalid: %w", err)
	}
	return nil
}

// Validate rejects negative delays. Zero is allowed; some setups disable
// settle waits entirely for emulators.
func (t *TimingConfig) Validate() error {
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"action.keyboard_switch_delay", t.Action.KeyboardSwitchDelay},
		{"action.text_clear_delay", t.Action.TextClearDelay},
		{"action.text_input_delay", t.Action.TextInputDelay},
		{"action.keyboard_restore_delay", t.Action.KeyboardRestoreDelay},
		{"device.tap_delay", t.Device.TapDelay},
		{"device.double_tap_delay", t.Device.DoubleTapDelay},
		{"device.double_tap_interval", t.Device.DoubleTapInterval},
		{"device.long_press_delay", t.Device.LongPressDelay},
		{"device.long_press_duration", t.Device.LongPressDuration},
		{"device.swipe_delay", t.Device.SwipeDelay},
		{"device.swipe_duration", t.Device.SwipeDuration},
		{"device.back_delay", t.Device.BackDelay},
		{"device.home_delay", t.Device.HomeDelay},
		{"device.launch_delay", t.Device.LaunchDelay},
		{"connection.adb_restart_delay", t.Connection.ADBRestartDelay},
		{"connection.server_restart_delay", t.Connection.ServerRestartDelay},
	} {
		if d.value < 0 {
			return fmt.Errorf("%s must not be negative", d.name)
		}
	}
	return nil
}
