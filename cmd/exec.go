// File: cmd/exec.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/actions"
	"github.com/vexlor/droidpilot-cli/internal/config"
	"github.com/vexlor/droidpilot-cli/internal/console"
	"github.com/vexlor/droidpilot-cli/internal/device/adb"
	"github.com/vexlor/droidpilot-cli/internal/observability"
)

// newExecCmd creates the `exec` command: parse and run a single action
// instruction against the device, then exit.
func newExecCmd() *cobra.Command {
	execCmd := &cobra.Command{
		Use:   "exec <instruction>",
		Short: "Executes a single action instruction, e.g. 'do(action=\"Tap\", element=[500, 500])'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}

			command, err := actions.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid instruction: %w", err)
			}

			handler, err := buildHandler(cmd, cfg, logger)
			if err != nil {
				return err
			}

			stepCtx, cancel := context.WithTimeout(ctx, cfg.Engine().StepTimeout)
			defer cancel()

			res := handler.Execute(stepCtx, command, cfg.Device().ScreenWidth, cfg.Device().ScreenHeight)
			if res.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			}
			if !res.Success {
				return fmt.Errorf("action failed: %s", res.Message)
			}

			logger.Info("Instruction completed",
				zap.String("action", command.Name),
				zap.Bool("finish", res.ShouldFinish),
			)
			return nil
		},
	}

	return execCmd
}

// buildHandler wires the adb surface, the confirmation gate and the action
// dispatcher from the effective configuration.
func buildHandler(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (*actions.Handler, error) {
	surface := adb.New(cfg.Device(), cfg.Timing().Device, logger)

	var gate actions.Gate
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		gate = console.NewAutoApprove(logger)
	} else {
		gate = console.NewGate(logger)
	}

	return actions.NewHandler(surface, cfg.Timing(), gate, logger)
}
