// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlor/droidpilot-cli/internal/observability"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

func TestRootCmd_NoArgsShowsHelp(t *testing.T) {
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "droidpilot")
	assert.Contains(t, out.String(), "exec")
	assert.Contains(t, out.String(), "run")
}

func TestLoadConfig_Defaults(t *testing.T) {
	rootCmd := NewRootCommand()
	require.NoError(t, rootCmd.ParseFlags(nil))

	cfg, err := loadConfig(rootCmd, "")

	require.NoError(t, err)
	assert.Equal(t, "adb", cfg.Device().ADBPath)
	assert.Equal(t, 1080, cfg.Device().ScreenWidth)
	assert.Equal(t, 25, cfg.Engine().MaxSteps)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("DROIDPILOT_DEVICE_SCREEN_WIDTH", "1440")

	rootCmd := NewRootCommand()
	require.NoError(t, rootCmd.ParseFlags([]string{"--serial", "emulator-5554", "--width", "720"}))

	cfg, err := loadConfig(rootCmd, "")

	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", cfg.Device().Serial)
	// The explicit flag wins over the environment variable.
	assert.Equal(t, 720, cfg.Device().ScreenWidth)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("DROIDPILOT_DEVICE_SCREEN_HEIGHT", "1920")

	rootCmd := NewRootCommand()
	require.NoError(t, rootCmd.ParseFlags(nil))

	cfg, err := loadConfig(rootCmd, "")

	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Device().ScreenHeight)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "droidpilot.yaml")
	contents := "device:\n  serial: tablet-1\n  screen_width: 800\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	rootCmd := NewRootCommand()
	require.NoError(t, rootCmd.ParseFlags(nil))

	cfg, err := loadConfig(rootCmd, path)

	require.NoError(t, err)
	assert.Equal(t, "tablet-1", cfg.Device().Serial)
	assert.Equal(t, 800, cfg.Device().ScreenWidth)
}

func TestLoadConfig_MalformedOverrideFails(t *testing.T) {
	t.Setenv("DROIDPILOT_ENGINE_STEP_TIMEOUT", "soon")

	rootCmd := NewRootCommand()
	require.NoError(t, rootCmd.ParseFlags(nil))

	_, err := loadConfig(rootCmd, "")

	require.Error(t, err)
}

func TestExecCmd_RejectsInvalidInstruction(t *testing.T) {
	observability.ResetForTest()
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"exec", `import os; os.system("reboot")`})

	err := rootCmd.ExecuteContext(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instruction")
}

func TestExecCmd_NoteIsDeviceFree(t *testing.T) {
	observability.ResetForTest()
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"exec", `do(action="Note", message="login screen visible")`})

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
}
