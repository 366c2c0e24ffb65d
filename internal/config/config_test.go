// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "droidpilot", cfg.Logger().ServiceName)
	assert.Equal(t, "adb", cfg.Device().ADBPath)
	assert.Equal(t, "com.android.adbkeyboard/.AdbIME", cfg.Device().AutomationIME)
	assert.Equal(t, 1080, cfg.Device().ScreenWidth)
	assert.Equal(t, 2340, cfg.Device().ScreenHeight)
	assert.Equal(t, 25, cfg.Engine().MaxSteps)

	// Every timing entry defaults to a sensible non-zero wait.
	timing := cfg.Timing()
	assert.Equal(t, time.Second, timing.Action.KeyboardSwitchDelay)
	assert.Equal(t, time.Second, timing.Action.TextClearDelay)
	assert.Equal(t, time.Second, timing.Action.TextInputDelay)
	assert.Equal(t, time.Second, timing.Action.KeyboardRestoreDelay)
	assert.Equal(t, 100*time.Millisecond, timing.Device.DoubleTapInterval)
	assert.Equal(t, 3*time.Second, timing.Device.LongPressDuration)
	assert.Equal(t, 2*time.Second, timing.Connection.ADBRestartDelay)

	require.NoError(t, cfg.Validate())
}

func TestTimingEnvOverride(t *testing.T) {
	t.Setenv("DROIDPILOT_TIMING_ACTION_KEYBOARD_SWITCH_DELAY", "1500ms")
	t.Setenv("DROIDPILOT_DEVICE_SERIAL", "emulator-5554")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.Timing().Action.KeyboardSwitchDelay)
	assert.Equal(t, "emulator-5554", cfg.Device().Serial)
	// Untouched entries keep their defaults.
	assert.Equal(t, time.Second, cfg.Timing().Action.TextClearDelay)
}

func TestMalformedTimingOverrideFailsFast(t *testing.T) {
	t.Setenv("DROIDPILOT_TIMING_ACTION_TEXT_INPUT_DELAY", "not-a-duration")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	_, err := NewConfigFromViper(v)
	require.Error(t, err, "a malformed override must abort startup, not silently fall back")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty adb path", func(c *Config) { c.DeviceCfg.ADBPath = "" }},
		{"zero screen width", func(c *Config) { c.DeviceCfg.ScreenWidth = 0 }},
		{"negative max steps", func(c *Config) { c.EngineCfg.MaxSteps = -1 }},
		{"negative delay", func(c *Config) { c.TimingCfg.Device.TapDelay = -time.Second }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
