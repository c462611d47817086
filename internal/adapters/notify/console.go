package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// ConsoleNotifier prints the run summary to a terminal
type ConsoleNotifier struct {
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

// NewConsoleNotifier creates a console notifier writing to stdout
func NewConsoleNotifier(logger *zap.Logger, verbose bool) *ConsoleNotifier {
	return NewConsoleNotifierTo(os.Stdout, logger, verbose)
}

// NewConsoleNotifierTo creates a console notifier writing to out
func NewConsoleNotifierTo(out io.Writer, logger *zap.Logger, verbose bool) *ConsoleNotifier {
	return &ConsoleNotifier{
		out:     out,
		logger:  logger,
		verbose: verbose,
	}
}

// Name implements ports.Notifier
func (n *ConsoleNotifier) Name() string {
	return "console"
}

// Notify prints the outcome counts and, when verbose, one row per ticket
func (n *ConsoleNotifier) Notify(_ context.Context, report *core.RunReport) error {
	counts := report.Counts()

	fmt.Fprintf(n.out, "\n=== Triage Run %s ===\n", report.RunID)
	fmt.Fprintf(n.out, "Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(n.out, "Duration: %v\n", report.Duration())
	fmt.Fprintf(n.out, "Tickets: %d\n", len(report.Results))
	fmt.Fprintf(n.out, "Replied: %d  Unhandled: %d  Excluded: %d  Failed: %d\n",
		counts[core.OutcomeReplied],
		counts[core.OutcomeUnhandled],
		counts[core.OutcomeExcluded],
		counts[core.OutcomeFailed])

	if !n.verbose || len(report.Results) == 0 {
		return nil
	}

	fmt.Fprintf(n.out, "\n=== Tickets ===\n")
	w := tabwriter.NewWriter(n.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKET\tLABEL\tOUTCOME\tMACRO\tERROR")
	for _, result := range report.Results {
		macro := "-"
		if result.MacroID != 0 {
			macro = fmt.Sprintf("%d", result.MacroID)
		}
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			result.Ticket.ID,
			result.Ticket.ClassificationLabel(),
			result.Outcome,
			macro,
			errText)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write ticket table: %w", err)
	}
	return nil
}
