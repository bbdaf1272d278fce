package checksla

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/helpdesk-kit/helpdesk/internal/cli"
	"github.com/helpdesk-kit/helpdesk/internal/service"
)

// Sweeper runs one escalation sweep.
type Sweeper interface {
	Run(ctx context.Context, now time.Time) (service.EscalationResult, error)
}

// NewCommand returns the check_sla command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check_sla",
		Aliases: []string{"check-sla"},
		Short:   "Check for SLA breaches and auto-escalate tickets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := cli.Bootstrap(ctx)
			if err != nil {
				return err
			}
			defer container.Logger.Sync() //nolint:errcheck
			defer container.Close()

			return runSweep(ctx, cmd.OutOrStdout(), container.Escalation, time.Now().UTC())
		},
	}
}

// runSweep prints one line per escalated ticket and a summary. Tickets that
// failed are reported but do not fail the command.
func runSweep(ctx context.Context, out io.Writer, sweeper Sweeper, now time.Time) error {
	result, err := sweeper.Run(ctx, now)
	for _, id := range result.Escalated {
		fmt.Fprintf(out, "Escalated ticket #%s\n", id)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "Failed to escalate ticket #%s: %v\n", failure.TicketID, failure.Err)
	}
	if err != nil {
		return fmt.Errorf("sla sweep: %w", err)
	}
	if result.Skipped {
		fmt.Fprintln(out, "Skipped. Another sweep holds the lock.")
		return nil
	}
	fmt.Fprintf(out, "Done. Escalated %d ticket(s).\n", result.Count())
	return nil
}
