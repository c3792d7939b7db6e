package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Summarize the persistent operation log",
		Long: `Summarize the persistent operation log: success and rejection counts,
the most frequent rejection reasons, and per-kind operation counts.`,
		Example: `  tokenops audit
  tokenops audit --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLogger, err := c.openAuditLogger()
			if err != nil {
				return err
			}
			if closeLogger != nil {
				defer closeLogger()
			}

			summary := logger.GetAuditSummary()

			if c.jsonOutput {
				return c.outputJSON(summary)
			}

			c.printf("Succeeded: %d\n", summary.SucceededCount)
			c.printf("Rejected:  %d\n", summary.RejectedCount)

			if len(summary.TopRejectionReasons) > 0 {
				c.printf("\nTop rejection reasons:\n")
				for _, stat := range summary.TopRejectionReasons {
					c.printf("  %5d  %s\n", stat.Count, stat.Reason)
				}
			}
			if len(summary.OperationCounts) > 0 {
				c.printf("\nOperations by kind:\n")
				for _, stat := range summary.OperationCounts {
					c.printf("  %5d  %s\n", stat.Count, stat.Kind)
				}
			}
			return nil
		},
	}
	return cmd
}
