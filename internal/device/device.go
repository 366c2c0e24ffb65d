// File: internal/device/device.go

// Package device defines the control-surface contract the action dispatcher
// executes against. Implementations own whatever session state the transport
// needs; the dispatcher treats every method as a fire-and-forget primitive
// with no completion signal beyond the returned error.
package device

import (
	"context"
	"fmt"
)

// Surface is the set of primitive operations an automated device exposes.
// All coordinates are absolute pixels; logical-to-absolute conversion happens
// upstream in the dispatcher.
type Surface interface {
	Tap(ctx context.Context, x, y int) error
	DoubleTap(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int) error

	// TypeText injects literal text into the focused field. The caller is
	// responsible for having switched to an automation-controlled keyboard
	// first; arbitrary text cannot be delivered through a stock IME.
	TypeText(ctx context.Context, text string) error
	// ClearText empties the focused field.
	ClearText(ctx context.Context) error

	Back(ctx context.Context) error
	Home(ctx context.Context) error

	// LaunchApp starts the app matching name. The boolean reports whether
	// the name resolved to an installed package; an unresolvable name is
	// not an error.
	LaunchApp(ctx context.Context, name string) (bool, error)

	// DetectAndSetAutomationKeyboard switches the device to the automation
	// IME and returns the identifier of the previously active one.
	DetectAndSetAutomationKeyboard(ctx context.Context) (string, error)
	// RestoreKeyboard reinstates the input method captured before the
	// automation IME took over.
	RestoreKeyboard(ctx context.Context, priorIME string) error
}

// Fault wraps a failed surface operation. The dispatcher converts every
// Fault into a failure result; it never crosses the engine boundary as a
// raw error.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("device: %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// NewFault builds a Fault for the named operation.
func NewFault(op string, err error) *Fault {
	return &Fault{Op: op, Err: err}
}
