// File: internal/console/gate.go

// Package console provides the default safety-gate implementations: an
// interactive gate that prompts a human on the local terminal, and an
// auto-approve gate for unattended runs that explicitly opted in.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/vexlor/droidpilot-cli/internal/actions"
)

// Gate prompts on a terminal for sensitive-action confirmation and takeover
// completion. When stdin is not a terminal it declines confirmations and
// skips takeovers instead of hanging forever on a read nobody will answer.
type Gate struct {
	// in buffers the prompt input stream once for the gate's lifetime;
	// a per-prompt reader could swallow read-ahead bytes meant for the
	// next prompt.
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	logger      *zap.Logger
}

var _ actions.Gate = (*Gate)(nil)

// NewGate builds a gate on the process's stdin/stdout.
func NewGate(logger *zap.Logger) *Gate {
	return newGate(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())), logger)
}

func newGate(in io.Reader, out io.Writer, interactive bool, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		logger:      logger.With(zap.String("component", "console")),
	}
}

// Confirm asks the operator to approve a sensitive action. Anything other
// than an explicit yes declines.
func (g *Gate) Confirm(message string) bool {
	if !g.interactive {
		g.logger.Warn("declining sensitive action: no interactive terminal",
			zap.String("message", message))
		return false
	}

	fmt.Fprintf(g.out, "Sensitive operation: %s\nConfirm? (Y/N): ", message)
	line, err := g.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// TakeOver hands the device to the operator and blocks until they signal
// completion with Enter.
func (g *Gate) TakeOver(message string) {
	if !g.interactive {
		g.logger.Warn("takeover requested but no interactive terminal; continuing",
			zap.String("message", message))
		return
	}

	fmt.Fprintf(g.out, "%s\nPress Enter after completing the manual operation...", message)
	// Ignore the content; only the keystroke matters.
	_, _ = g.in.ReadString('\n')
}

// AutoApprove is the gate for unattended runs started with an explicit
// approve-everything flag. Confirmations succeed and takeovers return
// immediately; both leave an audit line in the log.
type AutoApprove struct {
	logger *zap.Logger
}

var _ actions.Gate = (*AutoApprove)(nil)

// NewAutoApprove builds the auto-approving gate.
func NewAutoApprove(logger *zap.Logger) *AutoApprove {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoApprove{logger: logger.With(zap.String("component", "console"))}
}

func (a *AutoApprove) Confirm(message string) bool {
	a.logger.Info("auto-approving sensitive action", zap.String("message", message))
	return true
}

func (a *AutoApprove) TakeOver(message string) {
	a.logger.Warn("takeover requested during unattended run; skipping",
		zap.String("message", message))
}
