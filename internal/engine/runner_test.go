// File: internal/engine/runner_test.go
package engine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/actions"
	"github.com/vexlor/droidpilot-cli/internal/config"
)

// scriptedSource replays a fixed list of instructions and records the
// feedback it was handed.
type scriptedSource struct {
	instructions []string
	feedback     []string
	pos          int
}

func (s *scriptedSource) Next(_ context.Context, feedback string) (string, error) {
	s.feedback = append(s.feedback, feedback)
	if s.pos >= len(s.instructions) {
		return "", io.EOF
	}
	raw := s.instructions[s.pos]
	s.pos++
	return raw, nil
}

// nullSurface satisfies device.Surface without touching anything.
type nullSurface struct{}

func (nullSurface) Tap(context.Context, int, int) error             { return nil }
func (nullSurface) DoubleTap(context.Context, int, int) error       { return nil }
func (nullSurface) LongPress(context.Context, int, int) error       { return nil }
func (nullSurface) Swipe(context.Context, int, int, int, int) error { return nil }
func (nullSurface) TypeText(context.Context, string) error          { return nil }
func (nullSurface) ClearText(context.Context) error                 { return nil }
func (nullSurface) Back(context.Context) error                      { return nil }
func (nullSurface) Home(context.Context) error                      { return nil }
func (nullSurface) LaunchApp(context.Context, string) (bool, error) {
	return true, nil
}
func (nullSurface) DetectAndSetAutomationKeyboard(context.Context) (string, error) {
	return "", nil
}
func (nullSurface) RestoreKeyboard(context.Context, string) error { return nil }

type allowGate struct{}

func (allowGate) Confirm(string) bool { return true }
func (allowGate) TakeOver(string)     {}

func newTestRunner(t *testing.T, source InstructionSource) *Runner {
	t.Helper()
	cfg := config.NewDefaultConfig()

	// Zero out the delay table so tests do not sleep for real.
	cfg.TimingCfg = config.TimingConfig{}
	handler, err := actions.NewHandler(nullSurface{}, cfg.Timing(), allowGate{}, zap.NewNop())
	require.NoError(t, err)

	runner, err := NewRunner(cfg, source, handler, zap.NewNop())
	require.NoError(t, err)
	return runner
}

func TestRunnerValidatesDependencies(t *testing.T) {
	cfg := config.NewDefaultConfig()
	handler, err := actions.NewHandler(nullSurface{}, cfg.Timing(), allowGate{}, zap.NewNop())
	require.NoError(t, err)

	_, err = NewRunner(nil, &scriptedSource{}, handler, nil)
	assert.Error(t, err)
	_, err = NewRunner(cfg, nil, handler, nil)
	assert.Error(t, err)
	_, err = NewRunner(cfg, &scriptedSource{}, nil, nil)
	assert.Error(t, err)
}

func TestRunStopsOnFinish(t *testing.T) {
	source := &scriptedSource{instructions: []string{
		`do(action="Tap", element=[500, 500])`,
		`do(action="Back")`,
		`finish(message="all done")`,
		`do(action="Home")`, // must never execute
	}}
	runner := newTestRunner(t, source)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.Steps)
	assert.Equal(t, "all done", report.Message)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, source.pos, "instructions after finish must not be consumed")
}

func TestRunFeedsFailureMessagesBack(t *testing.T) {
	source := &scriptedSource{instructions: []string{
		`do(action="Teleport")`,
		`finish(message="ok")`,
	}}
	runner := newTestRunner(t, source)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, source.feedback, 2)
	assert.Empty(t, source.feedback[0])
	assert.Equal(t, "Unknown action: Teleport", source.feedback[1])
}

func TestRunStopsOnParseError(t *testing.T) {
	source := &scriptedSource{instructions: []string{`gibberish`}}
	runner := newTestRunner(t, source)

	report, err := runner.Run(context.Background())
	var perr *actions.ParseError
	require.ErrorAs(t, err, &perr)
	assert.False(t, report.Success)
	assert.Equal(t, 0, report.Steps)
}

func TestRunEndsCleanlyOnSourceExhaustion(t *testing.T) {
	source := &scriptedSource{instructions: []string{`do(action="Back")`}}
	runner := newTestRunner(t, source)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, 1, report.Steps)
	assert.Contains(t, report.Message, "instruction source closed")
}

func TestRunPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("model unreachable")
	source := sourceFunc(func(context.Context, string) (string, error) { return "", boom })
	runner := newTestRunner(t, source)

	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunRespectsStepBudget(t *testing.T) {
	endless := sourceFunc(func(context.Context, string) (string, error) {
		return `do(action="Back")`, nil
	})

	cfg := config.NewDefaultConfig()
	cfg.TimingCfg = config.TimingConfig{}
	cfg.EngineCfg.MaxSteps = 4
	handler, err := actions.NewHandler(nullSurface{}, cfg.Timing(), allowGate{}, zap.NewNop())
	require.NoError(t, err)
	runner, err := NewRunner(cfg, endless, handler, zap.NewNop())
	require.NoError(t, err)

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, 4, report.Steps)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, &scriptedSource{instructions: []string{`do(action="Back")`}})
	_, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// sourceFunc adapts a function to InstructionSource.
type sourceFunc func(ctx context.Context, feedback string) (string, error)

func (f sourceFunc) Next(ctx context.Context, feedback string) (string, error) {
	return f(ctx, feedback)
}
