// Package cli provides the command-line interface for tokenops.
// The CLI is a control interface for privileged token ledger operations:
// mint, burn, capability transfer, admin handoff, pause control, and the
// security verification harness.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/config"
	"github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/pkg/models"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitCapability = 2
	ExitLedger     = 3
	ExitInternal   = 4
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	// Global flags
	configPath string
	network    string
	jsonOutput bool
	quiet      bool
	debug      bool
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		c.reportError(err)
		return errors.ExitCode(err)
	}
	return ExitSuccess
}

// reportError prints a failed command's error before the process exits.
// Cobra error printing is silenced on the root command, so this is the
// single place a failure reaches the operator: the error message with its
// Reason and Suggestion lines on stderr, or a models.ErrorResponse on
// stdout when --json is set.
func (c *CLI) reportError(err error) {
	if c.jsonOutput {
		resp := models.ErrorResponse{
			Error: err.Error(),
			Code:  errors.ExitCode(err),
		}
		if ops, ok := errors.AsOps(err); ok {
			resp.Error = ops.Message
			resp.Reason = ops.Reason
			resp.Suggestion = ops.Suggestion
		}
		if jsonErr := c.outputJSON(resp); jsonErr == nil {
			return
		}
	}
	c.errorf("Error: %v\n", err)
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenops",
		Short: "Tokenops - capability-gated token ledger operations",
		Long: `Tokenops drives privileged operations against a capability-gated token ledger.

It provides:
  • Exact decimal/base-unit amount handling
  • Capability object discovery with a manifest fallback
  • A canonical, versioned call layout for every privileged operation
  • An adversarial security verification harness

Every mutating operation names the capabilities it used and is recorded
in a persistent audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.tokenops/config.yaml)")
	cmd.PersistentFlags().StringVar(&c.network, "network", "", "network name (overrides config)")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "verbose debug logs")

	// Command groups
	cmd.AddCommand(c.newMintCmd())
	cmd.AddCommand(c.newBurnCmd())
	cmd.AddCommand(c.newTransferCapCmd())
	cmd.AddCommand(c.newChangeAdminCmd())
	cmd.AddCommand(c.newPauseCmd())
	cmd.AddCommand(c.newUnpauseCmd())
	cmd.AddCommand(c.newStatusCmd())
	cmd.AddCommand(c.newVerifyCmd())
	cmd.AddCommand(c.newAuditCmd())
	cmd.AddCommand(c.newVersionCmd())

	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// Override with flags
	if c.network != "" {
		c.cfg.Network = c.network
	}

	return nil
}

// Helper functions for output

func (c *CLI) printf(format string, args ...interface{}) {
	if !c.quiet {
		fmt.Printf(format, args...)
	}
}

func (c *CLI) println(args ...interface{}) {
	if !c.quiet {
		fmt.Println(args...)
	}
}

func (c *CLI) errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func (c *CLI) debugf(format string, args ...interface{}) {
	if c.debug {
		fmt.Printf("[DEBUG] "+format, args...)
	}
}

func (c *CLI) outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
