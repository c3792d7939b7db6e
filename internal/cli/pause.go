package cli

import (
	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/operation"
)

func (c *CLI) newPauseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause all token operations",
		Long: `Pause all token operations on the ledger.

A non-empty --reason is mandatory and is rejected locally before any
network interaction; the reason is recorded on the shared pause state for
auditability.`,
		Example: `  tokenops pause --reason "suspicious mint activity under investigation"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPauseToggle(cmd, operation.KindPause, reason)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the pause state (required)")
	return cmd
}

func (c *CLI) newUnpauseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:     "unpause",
		Short:   "Resume token operations",
		Long:    "Resume token operations. The reason requirement is the same as for pause.",
		Example: `  tokenops unpause --reason "incident 2024-117 resolved"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPauseToggle(cmd, operation.KindUnpause, reason)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the pause state (required)")
	return cmd
}

func (c *CLI) runPauseToggle(cmd *cobra.Command, kind operation.Kind, reason string) error {
	o, err := c.newOpsContext()
	if err != nil {
		return err
	}
	defer o.Close()
	ctx := cmd.Context()

	registry, err := o.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	if err != nil {
		return err
	}
	pause, err := o.locator.ResolveShared(ctx, capability.KindPauseState)
	if err != nil {
		return err
	}

	var req *operation.Request
	if kind == operation.KindPause {
		req, err = o.builder.BuildPause(registry, pause, reason)
	} else {
		req, err = o.builder.BuildUnpause(registry, pause, reason)
	}
	if err != nil {
		return err
	}

	result, err := o.operator.Submit(ctx, req)
	if err != nil {
		return err
	}
	if rerr := result.Err(); rerr != nil {
		return rerr
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"operation_id": req.ID,
			"digest":       result.Digest,
			"kind":         string(kind),
			"reason":       reason,
		})
	}
	if kind == operation.KindPause {
		c.printf("Token operations paused: %s\n", reason)
	} else {
		c.printf("Token operations resumed: %s\n", reason)
	}
	c.printf("Transaction: %s\n", result.Digest)
	return nil
}
