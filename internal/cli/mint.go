package cli

import (
	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
)

func (c *CLI) newMintCmd() *cobra.Command {
	var (
		amountStr string
		recipient string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens to a recipient",
		Long: `Mint tokens to a recipient address.

The amount is a plain decimal in display units and is converted to base
units exactly; excess decimal places beyond the token's precision are
truncated, never rounded. The minted coin is transferred to the recipient
in the same atomic request.`,
		Example: `  tokenops mint --amount 1.5 --to 0x7c3e...
  tokenops mint --amount 1000000 --to 0x7c3e... --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()
			ctx := cmd.Context()

			amt, err := amount.ToBaseUnits(amountStr, c.cfg.Token.Decimals)
			if err != nil {
				return err
			}

			treasury, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, capability.KindTreasury)
			if err != nil {
				return err
			}
			registry, err := o.locator.ResolveShared(ctx, capability.KindAdminRegistry)
			if err != nil {
				return err
			}
			pause, err := o.locator.ResolveShared(ctx, capability.KindPauseState)
			if err != nil {
				return err
			}

			req, err := o.builder.BuildMint(treasury, registry, pause, amt, recipient)
			if err != nil {
				return err
			}

			if dryRun {
				if err := o.operator.VerifyLayout(ctx, req); err != nil {
					return err
				}
				c.println("Dry run passed: mint call layout accepted by the deployed interface")
				return nil
			}

			c.debugf("submitting mint %s (%d base units) to %s\n", req.ID, uint64(amt), recipient)
			result, err := o.operator.Submit(ctx, req)
			if err != nil {
				return err
			}
			if rerr := result.Err(); rerr != nil {
				return rerr
			}

			if c.jsonOutput {
				return c.outputJSON(map[string]interface{}{
					"operation_id":      req.ID,
					"digest":            result.Digest,
					"amount_base_units": uint64(amt),
					"recipient":         recipient,
				})
			}
			c.printf("Minted %s tokens (%d base units) to %s\n", amount.ToDisplay(amt, c.cfg.Token.Decimals), uint64(amt), recipient)
			c.printf("Transaction: %s\n", result.Digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "amount in display units (required)")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient address (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "verify the call layout without committing effects")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("to")

	return cmd
}
