// File: cmd/run.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/engine"
	"github.com/vexlor/droidpilot-cli/internal/observability"
)

// newRunCmd creates the `run` command: an interactive session that reads
// action instructions from stdin, one per line, and executes them until a
// finish(...) instruction, the step budget, or EOF ends the run.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs an interactive instruction session fed from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}

			handler, err := buildHandler(cmd, cfg, logger)
			if err != nil {
				return err
			}

			source := newStdinSource(os.Stdin, cmd.OutOrStdout())
			defer source.Close()
			runner, err := engine.NewRunner(cfg, source, handler, logger)
			if err != nil {
				return err
			}

			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s finished after %d step(s): %s\n",
				report.RunID, report.Steps, report.Message)
			if !report.Success {
				logger.Warn("Session ended without success",
					zap.String("run_id", report.RunID),
					zap.String("message", report.Message),
				)
			}
			return nil
		},
	}

	return runCmd
}

// stdinSource feeds instructions from an io.Reader, one per line. Reads
// happen on a feeder goroutine so Next can honor context cancellation;
// blank lines are skipped. Close releases the feeder when the run ends
// before the input is exhausted.
type stdinSource struct {
	lines <-chan string
	err   <-chan error
	done  chan struct{}
	out   io.Writer
}

func newStdinSource(in io.Reader, out io.Writer) *stdinSource {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- err
		}
	}()

	return &stdinSource{lines: lines, err: errc, done: done, out: out}
}

// Close unblocks the feeder goroutine. A feeder still waiting on the
// underlying read exits once that read returns; Close does not close the
// reader itself. Call at most once.
func (s *stdinSource) Close() {
	close(s.done)
}

func (s *stdinSource) Next(ctx context.Context, feedback string) (string, error) {
	if feedback != "" {
		fmt.Fprintf(s.out, "[feedback] %s\n", feedback)
	}
	fmt.Fprint(s.out, "droidpilot> ")

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			select {
			case err := <-s.err:
				return "", err
			default:
			}
			return "", io.EOF
		}
		return line, nil
	}
}
