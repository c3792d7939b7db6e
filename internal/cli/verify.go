package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/harness"
	"github.com/helios-labs/tokenops/pkg/models"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	var delayStr string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the adversarial security scenario catalog",
		Long: `Run the adversarial scenario catalog against the deployed token.

Scenarios execute strictly sequentially: the operator and attacker
identities share fee-paying objects that must be re-observed between
mutating operations. An operation that was expected to be blocked but went
through is classified as a vulnerability; a single vulnerability fails the
whole run.

Scenarios requiring the attacker identity are skipped when none is
configured.`,
		Example: `  tokenops verify
  tokenops verify --delay 5s --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()

			delay, err := time.ParseDuration(c.cfg.Harness.Delay)
			if err != nil {
				return fmt.Errorf("invalid harness delay %q: %w", c.cfg.Harness.Delay, err)
			}
			if delayStr != "" {
				delay, err = time.ParseDuration(delayStr)
				if err != nil {
					return fmt.Errorf("invalid --delay %q: %w", delayStr, err)
				}
			}

			env := &harness.Env{
				Network:      c.cfg.Network,
				PackageID:    c.cfg.Token.PackageID,
				Operator:     o.operator,
				Attacker:     o.attackerExecutor(o.timeout()),
				OperatorAddr: c.cfg.Signer.Address,
				Builder:      o.builder,
				Locator:      o.locator,
				Query:        o.rpc,
				Decimals:     c.cfg.Token.Decimals,
			}

			h := harness.New(env, harness.Catalog(), delay)
			report, err := h.Run(cmd.Context())
			if err != nil {
				return err
			}

			if c.jsonOutput {
				if err := c.outputJSON(report); err != nil {
					return err
				}
			} else {
				c.printReport(report)
			}

			if !report.OverallPassed {
				return fmt.Errorf("security verification failed: %d vulnerabilities, %d failed", report.Vulnerabilities, report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&delayStr, "delay", "", "inter-scenario delay, e.g. 5s (default from config)")
	return cmd
}

func (c *CLI) printReport(report *models.SecurityReport) {
	c.printf("Security verification report %s\n", report.ReportID)
	c.printf("Network: %s  Package: %s\n", report.Network, report.PackageID)
	c.printf("Duration: %s\n\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	for _, sc := range report.Scenarios {
		c.printf("  [%-13s] %s\n", sc.Classification, sc.Name)
		if sc.Detail != "" {
			c.printf("                  %s\n", sc.Detail)
		}
	}

	c.printf("\nPassed: %d  Failed: %d  Vulnerabilities: %d  Skipped: %d  Informational: %d\n",
		report.Passed, report.Failed, report.Vulnerabilities, report.Skipped, report.Informational)
	if report.OverallPassed {
		c.printf("Overall: PASSED\n")
	} else {
		c.printf("Overall: FAILED\n")
	}
}
