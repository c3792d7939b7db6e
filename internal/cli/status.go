package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/pkg/models"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	var verifyLayout bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the deployed token's current state",
		Long: `Show the current state of the deployed token: pause state, registry
administrator, total supply, and the operator's resolved capabilities.

With --verify-layout, a mint is dry-run against the live deployed
interface to confirm the configured call layout before any mutating use.
Nothing is committed.`,
		Example: `  tokenops status
  tokenops status --verify-layout
  tokenops status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()
			ctx := cmd.Context()

			report := models.StatusReport{
				Network:       c.cfg.Network,
				PackageID:     c.cfg.Token.PackageID,
				SignerAddress: c.cfg.Signer.Address,
				Capabilities:  map[string]string{},
				LayoutVersion: o.builder.Layout().Version(),
			}

			pause, err := o.locator.ResolveShared(ctx, capability.KindPauseState)
			if err != nil {
				return err
			}
			pauseObj, err := o.rpc.GetObject(ctx, pause.ObjectID)
			if err != nil {
				return err
			}
			if paused, ok := pauseObj.Fields["paused"].(bool); ok {
				report.Paused = paused
			}
			if reason, ok := pauseObj.Fields["reason"].(string); ok {
				report.PauseReason = reason
			}

			registry, err := o.locator.ResolveShared(ctx, capability.KindAdminRegistry)
			if err != nil {
				return err
			}
			registryObj, err := o.rpc.GetObject(ctx, registry.ObjectID)
			if err != nil {
				return err
			}
			if admin, ok := registryObj.Fields["admin"].(string); ok {
				report.Admin = admin
			}
			if supply, ok := registryObj.Fields["total_supply"].(float64); ok {
				report.TotalSupply = amount.ToDisplay(amount.Amount(supply), c.cfg.Token.Decimals)
			}

			balance, err := o.rpc.Balance(ctx, c.cfg.Signer.Address, c.cfg.Token.CoinType)
			if err == nil {
				report.SignerBalance = amount.ToDisplay(amount.Amount(balance), c.cfg.Token.Decimals)
			}

			for _, kind := range []capability.Kind{capability.KindTreasury, capability.KindAdmin, capability.KindUpgrade} {
				ref, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, kind)
				if err != nil {
					continue
				}
				report.Capabilities[kind.String()] = ref.ObjectID
			}
			report.Capabilities[capability.KindAdminRegistry.String()] = registry.ObjectID
			report.Capabilities[capability.KindPauseState.String()] = pause.ObjectID

			if verifyLayout {
				if err := c.verifyLayout(cmd, o, registry, pause); err != nil {
					return err
				}
				report.LayoutVerified = true
			}

			if c.jsonOutput {
				return c.outputJSON(report)
			}

			c.printf("Network:       %s\n", report.Network)
			c.printf("Package:       %s\n", report.PackageID)
			c.printf("Paused:        %v\n", report.Paused)
			if report.PauseReason != "" {
				c.printf("Pause reason:  %s\n", report.PauseReason)
			}
			c.printf("Admin:         %s\n", report.Admin)
			if report.TotalSupply != "" {
				c.printf("Total supply:  %s\n", report.TotalSupply)
			}
			c.printf("Signer:        %s\n", report.SignerAddress)
			if report.SignerBalance != "" {
				c.printf("Balance:       %s\n", report.SignerBalance)
			}
			c.printf("Call layout:   v%d", report.LayoutVersion)
			if report.LayoutVerified {
				c.printf(" (verified against live interface)")
			}
			c.printf("\n\nCapabilities:\n")
			for _, kind := range capability.AllKinds() {
				id, ok := report.Capabilities[kind.String()]
				if !ok {
					continue
				}
				c.printf("  %-15s %s\n", kind.String(), id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verifyLayout, "verify-layout", false, "dry-run a mint to confirm the call layout against the live interface")
	return cmd
}

// verifyLayout dry-runs a minimal mint against the deployed interface. A
// layout mismatch surfaces as an arity or type error from the node, mapped
// through the usual taxonomy.
func (c *CLI) verifyLayout(cmd *cobra.Command, o *opsContext, registry, pause capability.Ref) error {
	ctx := cmd.Context()

	treasury, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, capability.KindTreasury)
	if err != nil {
		return err
	}

	one, err := amount.ToBaseUnits("1", c.cfg.Token.Decimals)
	if err != nil {
		return err
	}
	req, err := o.builder.BuildMint(treasury, registry, pause, one, c.cfg.Signer.Address)
	if err != nil {
		return err
	}
	if err := o.operator.VerifyLayout(ctx, req); err != nil {
		return fmt.Errorf("call layout v%d rejected by the deployed interface: %w", o.builder.Layout().Version(), err)
	}
	return nil
}
