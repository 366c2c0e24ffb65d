// File: internal/device/adb/adb.go

// Package adb implements the device control surface by shelling out to the
// adb binary. It assumes a device is already connected and authorized;
// discovery and connection recovery live outside this package.
package adb

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/config"
	"github.com/vexlor/droidpilot-cli/internal/device"
)

// Android keyevent codes.
const (
	keyHome = "3"
	keyBack = "4"
)

// ADBKeyboard broadcast intents. The automation IME accepts base64 payloads
// so text with quotes, spaces, or shell metacharacters survives the trip.
const (
	intentInputB64  = "ADB_KEYBOARD_INPUT_B64"
	intentClearText = "ADB_KEYBOARD_CLEAR_TEXT"
)

// runner abstracts process execution so the surface is testable without a
// device attached.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w (output: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Surface drives a single Android device through adb.
type Surface struct {
	cfg    config.DeviceConfig
	timing config.DeviceTimingConfig
	logger *zap.Logger
	run    runner

	// sleep is time.Sleep in production and a recorder in tests.
	sleep func(time.Duration)
}

var _ device.Surface = (*Surface)(nil)

// New creates an adb-backed surface for the configured device. Gesture
// durations (long press hold, swipe travel time) come from the timing table.
func New(cfg config.DeviceConfig, timing config.DeviceTimingConfig, logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{
		cfg:    cfg,
		timing: timing,
		logger: logger.With(zap.String("component", "adb")),
		run:    execRunner{},
		sleep:  time.Sleep,
	}
}

// shell runs `adb [-s serial] shell <args...>`.
func (s *Surface) shell(ctx context.Context, args ...string) (string, error) {
	full := make([]string, 0, len(args)+3)
	if s.cfg.Serial != "" {
		full = append(full, "-s", s.cfg.Serial)
	}
	full = append(full, "shell")
	full = append(full, args...)
	return s.run.Run(ctx, s.cfg.ADBPath, full...)
}

func (s *Surface) Tap(ctx context.Context, x, y int) error {
	s.logger.Debug("tap", zap.Int("x", x), zap.Int("y", y))
	if _, err := s.shell(ctx, "input", "tap", itoa(x), itoa(y)); err != nil {
		return device.NewFault("tap", err)
	}
	return nil
}

func (s *Surface) DoubleTap(ctx context.Context, x, y int) error {
	s.logger.Debug("double tap", zap.Int("x", x), zap.Int("y", y))
	// Two discrete taps separated by the configured interval; `input` has
	// no native double-tap gesture.
	for i := 0; i < 2; i++ {
		if i > 0 {
			s.sleep(s.timing.DoubleTapInterval)
		}
		if _, err := s.shell(ctx, "input", "tap", itoa(x), itoa(y)); err != nil {
			return device.NewFault("double_tap", err)
		}
	}
	return nil
}

func (s *Surface) LongPress(ctx context.Context, x, y int) error {
	s.logger.Debug("long press", zap.Int("x", x), zap.Int("y", y))
	// A swipe with identical endpoints and a long duration is the idiomatic
	// `input` long press.
	holdMs := itoa(int(s.timing.LongPressDuration.Milliseconds()))
	if _, err := s.shell(ctx, "input", "swipe", itoa(x), itoa(y), itoa(x), itoa(y), holdMs); err != nil {
		return device.NewFault("long_press", err)
	}
	return nil
}

func (s *Surface) Swipe(ctx context.Context, x1, y1, x2, y2 int) error {
	s.logger.Debug("swipe",
		zap.Int("x1", x1), zap.Int("y1", y1),
		zap.Int("x2", x2), zap.Int("y2", y2))
	durationMs := itoa(int(s.timing.SwipeDuration.Milliseconds()))
	if _, err := s.shell(ctx, "input", "swipe", itoa(x1), itoa(y1), itoa(x2), itoa(y2), durationMs); err != nil {
		return device.NewFault("swipe", err)
	}
	return nil
}

func (s *Surface) TypeText(ctx context.Context, text string) error {
	s.logger.Debug("type text", zap.Int("length", len(text)))
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if _, err := s.shell(ctx, "am", "broadcast", "-a", intentInputB64, "--es", "msg", encoded); err != nil {
		return device.NewFault("type_text", err)
	}
	return nil
}

func (s *Surface) ClearText(ctx context.Context) error {
	s.logger.Debug("clear text")
	if _, err := s.shell(ctx, "am", "broadcast", "-a", intentClearText); err != nil {
		return device.NewFault("clear_text", err)
	}
	return nil
}

func (s *Surface) Back(ctx context.Context) error {
	s.logger.Debug("back")
	if _, err := s.shell(ctx, "input", "keyevent", keyBack); err != nil {
		return device.NewFault("back", err)
	}
	return nil
}

func (s *Surface) Home(ctx context.Context) error {
	s.logger.Debug("home")
	if _, err := s.shell(ctx, "input", "keyevent", keyHome); err != nil {
		return device.NewFault("home", err)
	}
	return nil
}

// LaunchApp resolves name to an installed package and starts its launcher
// activity. Returns (false, nil) when nothing matches; the caller decides
// how to report that.
func (s *Surface) LaunchApp(ctx context.Context, name string) (bool, error) {
	pkg, err := s.resolvePackage(ctx, name)
	if err != nil {
		return false, device.NewFault("launch_app", err)
	}
	if pkg == "" {
		s.logger.Debug("no package matched app name", zap.String("name", name))
		return false, nil
	}

	s.logger.Debug("launching app", zap.String("name", name), zap.String("package", pkg))
	out, err := s.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return false, device.NewFault("launch_app", err)
	}
	// monkey exits zero even when it injects nothing.
	if strings.Contains(out, "No activities found") {
		return false, nil
	}
	return true, nil
}

// resolvePackage accepts either a literal package id or a human app name
// matched case-insensitively against the installed package list.
func (s *Surface) resolvePackage(ctx context.Context, name string) (string, error) {
	out, err := s.shell(ctx, "pm", "list", "packages")
	if err != nil {
		return "", err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	var substringMatch string
	for _, line := range strings.Split(out, "\n") {
		pkg := strings.TrimPrefix(strings.TrimSpace(line), "package:")
		if pkg == "" {
			continue
		}
		if strings.EqualFold(pkg, needle) {
			return pkg, nil
		}
		if substringMatch == "" && strings.Contains(strings.ToLower(pkg), needle) {
			substringMatch = pkg
		}
	}
	return substringMatch, nil
}

func (s *Surface) DetectAndSetAutomationKeyboard(ctx context.Context) (string, error) {
	prior, err := s.shell(ctx, "settings", "get", "secure", "default_input_method")
	if err != nil {
		return "", device.NewFault("detect_keyboard", err)
	}
	prior = strings.TrimSpace(prior)

	if _, err := s.shell(ctx, "ime", "enable", s.cfg.AutomationIME); err != nil {
		return "", device.NewFault("enable_keyboard", err)
	}
	if _, err := s.shell(ctx, "ime", "set", s.cfg.AutomationIME); err != nil {
		return "", device.NewFault("set_keyboard", err)
	}
	s.logger.Debug("switched to automation keyboard", zap.String("prior_ime", prior))
	return prior, nil
}

func (s *Surface) RestoreKeyboard(ctx context.Context, priorIME string) error {
	if priorIME == "" || priorIME == "null" {
		// Nothing sensible to restore; leave the automation IME active.
		return nil
	}
	if _, err := s.shell(ctx, "ime", "set", priorIME); err != nil {
		return device.NewFault("restore_keyboard", err)
	}
	s.logger.Debug("restored keyboard", zap.String("ime", priorIME))
	return nil
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }
