// File: internal/actions/handler.go
package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/config"
	"github.com/vexlor/droidpilot-cli/internal/device"
)

// Result is the uniform outcome of one command execution. It is created
// fresh per Execute call and never mutated afterwards. ShouldFinish
// terminates the outer control loop regardless of Success.
type Result struct {
	Success              bool
	ShouldFinish         bool
	Message              string
	RequiresConfirmation bool
}

// Gate is the injected safety capability: a confirmation predicate for
// sensitive actions and a takeover procedure that blocks until a human has
// finished a manual flow (login, captcha). Implementations may block
// indefinitely; the dispatcher imposes no timeout on them.
type Gate interface {
	Confirm(message string) bool
	TakeOver(message string)
}

// Handler routes structured commands to device operations, enforcing the
// confirmation and takeover gates and sequencing multi-step actions with the
// configured delays. It is synchronous by design: each Execute call
// completes, waits included, before returning.
type Handler struct {
	surface device.Surface
	timing  config.TimingConfig
	gate    Gate
	logger  *zap.Logger

	// sleep is time.Sleep in production and a recorder in tests.
	sleep func(time.Duration)
}

// NewHandler builds a dispatcher. The surface and gate are required; the
// logger may be nil.
func NewHandler(surface device.Surface, timing config.TimingConfig, gate Gate, logger *zap.Logger) (*Handler, error) {
	if surface == nil {
		return nil, fmt.Errorf("device surface cannot be nil")
	}
	if gate == nil {
		return nil, fmt.Errorf("safety gate cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		surface: surface,
		timing:  timing,
		gate:    gate,
		logger:  logger.With(zap.String("component", "actions")),
		sleep:   time.Sleep,
	}, nil
}

// Execute runs one structured command against the device and reports the
// outcome. Faults from the device layer never escape: errors and panics
// alike degrade to a failure result, leaving continuation policy to the
// caller.
func (h *Handler) Execute(ctx context.Context, cmd Command, screenWidth, screenHeight int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("device layer panicked during dispatch", zap.Any("panic", r))
			res = Result{Success: false, Message: fmt.Sprintf("Action failed: %v", r)}
		}
	}()

	switch cmd.Kind {
	case KindFinish:
		msg, _ := cmd.Text("message")
		return Result{Success: true, ShouldFinish: true, Message: msg}
	case KindDo:
		return h.dispatch(ctx, cmd, screenWidth, screenHeight)
	default:
		// A malformed top-level instruction aborts the run; retrying a
		// parse-shaped failure without model feedback cannot self-correct.
		return Result{
			Success:      false,
			ShouldFinish: true,
			Message:      fmt.Sprintf("Unknown command type: %d", cmd.Kind),
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, cmd Command, screenWidth, screenHeight int) Result {
	h.logger.Debug("dispatching action", zap.String("action", cmd.Name))

	switch cmd.Action {
	case ActionLaunch:
		return h.handleLaunch(ctx, cmd)
	case ActionTap:
		return h.handleGesture(ctx, cmd, screenWidth, screenHeight, h.surface.Tap, h.timing.Device.TapDelay)
	case ActionDoubleTap:
		return h.handleGesture(ctx, cmd, screenWidth, screenHeight, h.surface.DoubleTap, h.timing.Device.DoubleTapDelay)
	case ActionLongPress:
		return h.handleGesture(ctx, cmd, screenWidth, screenHeight, h.surface.LongPress, h.timing.Device.LongPressDelay)
	case ActionTypeText, ActionTypeName:
		return h.handleType(ctx, cmd)
	case ActionSwipe:
		return h.handleSwipe(ctx, cmd, screenWidth, screenHeight)
	case ActionBack:
		return h.handleKey(ctx, h.surface.Back, h.timing.Device.BackDelay)
	case ActionHome:
		return h.handleKey(ctx, h.surface.Home, h.timing.Device.HomeDelay)
	case ActionWait:
		return h.handleWait(cmd)
	case ActionTakeOver:
		return h.handleTakeOver(cmd)
	case ActionNote, ActionCallAPI:
		// Reserved extension points: no device effect yet, but they must
		// return a well-formed success so the control loop is undisturbed.
		return Result{Success: true}
	case ActionInteract:
		return Result{Success: true, Message: "User interaction required"}
	case ActionUnknown:
		fallthrough
	default:
		// Recoverable: the outer loop may re-prompt the model.
		return Result{Success: false, Message: fmt.Sprintf("Unknown action: %s", cmd.Name)}
	}
}

func (h *Handler) handleLaunch(ctx context.Context, cmd Command) Result {
	app, _ := cmd.Text("app")
	if app == "" {
		return Result{Success: false, Message: "No app name specified"}
	}

	ok, err := h.surface.LaunchApp(ctx, app)
	if err != nil {
		return deviceFailure(err)
	}
	if !ok {
		return Result{Success: false, Message: fmt.Sprintf("App not found: %s", app)}
	}
	h.sleep(h.timing.Device.LaunchDelay)
	return Result{Success: true}
}

// handleGesture covers Tap, Double Tap, and Long Press: one logical point,
// optionally gated behind confirmation when the command carries a warning
// message.
func (h *Handler) handleGesture(
	ctx context.Context,
	cmd Command,
	screenWidth, screenHeight int,
	gesture func(context.Context, int, int) error,
	settle time.Duration,
) Result {
	element, ok := cmd.Point("element")
	if !ok {
		return Result{Success: false, Message: "No element coordinates"}
	}
	x, y := ToAbsolute(element, screenWidth, screenHeight)

	if warning, sensitive := cmd.Text("message"); sensitive {
		h.logger.Info("sensitive action requires confirmation",
			zap.String("action", cmd.Name), zap.String("warning", warning))
		if !h.gate.Confirm(warning) {
			// A declined sensitive action has no safe continuation.
			return Result{
				Success:              false,
				ShouldFinish:         true,
				Message:              "User cancelled sensitive operation",
				RequiresConfirmation: true,
			}
		}
	}

	if err := gesture(ctx, x, y); err != nil {
		return deviceFailure(err)
	}
	h.sleep(settle)
	return Result{Success: true}
}

// handleType is the five-step sequenced input operation. Each wait is a hard
// synchronization point: the device gives no completion signal for keyboard
// switches or clears, so correctness rests on the configured delays.
func (h *Handler) handleType(ctx context.Context, cmd Command) Result {
	text, _ := cmd.Text("text")

	priorIME, err := h.surface.DetectAndSetAutomationKeyboard(ctx)
	if err != nil {
		return deviceFailure(err)
	}
	h.sleep(h.timing.Action.KeyboardSwitchDelay)

	if err := h.surface.ClearText(ctx); err != nil {
		return deviceFailure(err)
	}
	h.sleep(h.timing.Action.TextClearDelay)

	if err := h.surface.TypeText(ctx, text); err != nil {
		return deviceFailure(err)
	}
	h.sleep(h.timing.Action.TextInputDelay)

	if err := h.surface.RestoreKeyboard(ctx, priorIME); err != nil {
		return deviceFailure(err)
	}
	h.sleep(h.timing.Action.KeyboardRestoreDelay)

	return Result{Success: true}
}

func (h *Handler) handleSwipe(ctx context.Context, cmd Command, screenWidth, screenHeight int) Result {
	start, okStart := cmd.Point("start")
	end, okEnd := cmd.Point("end")
	if !okStart || !okEnd {
		return Result{Success: false, Message: "Missing swipe coordinates"}
	}

	x1, y1 := ToAbsolute(start, screenWidth, screenHeight)
	x2, y2 := ToAbsolute(end, screenWidth, screenHeight)

	if err := h.surface.Swipe(ctx, x1, y1, x2, y2); err != nil {
		return deviceFailure(err)
	}
	h.sleep(h.timing.Device.SwipeDelay)
	return Result{Success: true}
}

func (h *Handler) handleKey(ctx context.Context, key func(context.Context) error, settle time.Duration) Result {
	if err := key(ctx); err != nil {
		return deviceFailure(err)
	}
	h.sleep(settle)
	return Result{Success: true}
}

func (h *Handler) handleWait(cmd Command) Result {
	h.sleep(waitDuration(cmd.Args["duration"]))
	return Result{Success: true}
}

// waitDuration interprets a Wait argument: a number followed by a unit word
// ("3 seconds"), or a bare number of seconds. An unparsable duration falls
// back to one second rather than failing the step.
func waitDuration(v any) time.Duration {
	const fallback = time.Second

	switch val := v.(type) {
	case float64:
		return time.Duration(val * float64(time.Second))
	case string:
		fields := strings.Fields(val)
		if len(fields) == 0 {
			return fallback
		}
		secs, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fallback
		}
		return time.Duration(secs * float64(time.Second))
	default:
		return fallback
	}
}

func (h *Handler) handleTakeOver(cmd Command) Result {
	message, _ := cmd.Text("message")
	if message == "" {
		message = "User intervention required"
	}
	h.logger.Info("ceding control to human", zap.String("message", message))
	// Blocks until the gate reports the human is done; always succeeds.
	h.gate.TakeOver(message)
	return Result{Success: true}
}

func deviceFailure(err error) Result {
	return Result{Success: false, Message: fmt.Sprintf("Action failed: %v", err)}
}
