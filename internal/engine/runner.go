// File: internal/engine/runner.go

// Package engine drives the parse/execute cycle the action core sits in.
// The engine owns continuation policy only; it never decides what to do
// next — instructions arrive as text from an InstructionSource.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/actions"
	"github.com/vexlor/droidpilot-cli/internal/config"
)

// InstructionSource yields the next raw instruction. feedback carries the
// failure message of the previous step, empty on success; a model-backed
// source folds it into the next prompt, a scripted source may ignore it.
// Returning io.EOF ends the run cleanly.
type InstructionSource interface {
	Next(ctx context.Context, feedback string) (string, error)
}

// Runner executes instructions sequentially against one device. Calls are
// strictly serialized: a physical device performs one gesture at a time, so
// there is nothing to parallelize here.
type Runner struct {
	cfg     config.EngineConfig
	screenW int
	screenH int
	source  InstructionSource
	handler *actions.Handler
	logger  *zap.Logger
}

// Report summarizes a finished run.
type Report struct {
	RunID   string
	Steps   int
	Success bool
	Message string
}

// NewRunner wires the runner's dependencies. Source and handler are
// required.
func NewRunner(cfg config.Interface, source InstructionSource, handler *actions.Handler, logger *zap.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if source == nil {
		return nil, errors.New("instruction source cannot be nil")
	}
	if handler == nil {
		return nil, errors.New("action handler cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg.Engine(),
		screenW: cfg.Device().ScreenWidth,
		screenH: cfg.Device().ScreenHeight,
		source:  source,
		handler: handler,
		logger:  logger.With(zap.String("component", "engine")),
	}, nil
}

// Run executes instructions until one finishes the run, the source is
// exhausted, the step budget runs out, or an instruction fails to parse. A
// parse failure is the one error that escapes: a command that cannot even be
// named has no meaningful partial result.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Info("starting run",
		zap.Int("max_steps", r.cfg.MaxSteps),
		zap.Int("screen_width", r.screenW),
		zap.Int("screen_height", r.screenH))

	feedback := ""
	for step := 1; step <= r.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return &Report{RunID: runID, Steps: step - 1, Message: "run cancelled"}, err
		}

		raw, err := r.source.Next(ctx, feedback)
		if errors.Is(err, io.EOF) {
			logger.Info("instruction source exhausted", zap.Int("steps", step-1))
			return &Report{
				RunID:   runID,
				Steps:   step - 1,
				Message: "instruction source closed before finish",
			}, nil
		}
		if err != nil {
			return &Report{RunID: runID, Steps: step - 1, Message: "instruction source failed"},
				fmt.Errorf("fetching instruction: %w", err)
		}

		cmd, err := actions.Parse(raw)
		if err != nil {
			logger.Error("instruction failed to parse", zap.String("instruction", raw), zap.Error(err))
			return &Report{RunID: runID, Steps: step - 1, Message: "unparsable instruction"}, err
		}

		stepCtx, cancel := context.WithTimeout(ctx, r.cfg.StepTimeout)
		res := r.handler.Execute(stepCtx, cmd, r.screenW, r.screenH)
		cancel()

		logger.Info("step executed",
			zap.Int("step", step),
			zap.String("action", cmd.Name),
			zap.Bool("success", res.Success),
			zap.Bool("should_finish", res.ShouldFinish),
			zap.String("message", res.Message))

		if res.ShouldFinish {
			return &Report{RunID: runID, Steps: step, Success: res.Success, Message: res.Message}, nil
		}

		// A recoverable failure feeds back to the source so the model can
		// correct course.
		if res.Success {
			feedback = ""
		} else {
			feedback = res.Message
		}
	}

	logger.Warn("step budget exhausted", zap.Int("max_steps", r.cfg.MaxSteps))
	return &Report{
		RunID:   runID,
		Steps:   r.cfg.MaxSteps,
		Message: fmt.Sprintf("no finish after %d steps", r.cfg.MaxSteps),
	}, nil
}
