package cli

import (
	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/capability"
)

func (c *CLI) newTransferCapCmd() *cobra.Command {
	var (
		kindStr  string
		newOwner string
	)

	cmd := &cobra.Command{
		Use:   "transfer-cap",
		Short: "Transfer a capability object to a new owner",
		Long: `Transfer ownership of a capability object.

Transferring the admin capability does NOT update the registry's recorded
administrator: registry pointer and capability possession move
independently. A complete admin handoff is 'change-admin' followed by
'transfer-cap --kind admin'.`,
		Example: `  tokenops transfer-cap --kind treasury --to 0x7c3e...
  tokenops transfer-cap --kind admin --to 0x7c3e...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()
			ctx := cmd.Context()

			kind, err := capability.ParseKind(kindStr)
			if err != nil {
				return err
			}

			ref, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, kind)
			if err != nil {
				return err
			}

			req, err := o.builder.BuildTransferCapability(ref, newOwner)
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
					"capability":   ref.ObjectID,
					"kind":         kind.String(),
					"new_owner":    newOwner,
				})
			}
			c.printf("Transferred %s capability %s to %s\n", kind, ref.ObjectID, newOwner)
			c.printf("Transaction: %s\n", result.Digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindStr, "kind", "", "capability kind: treasury, admin, upgrade (required)")
	cmd.Flags().StringVar(&newOwner, "to", "", "new owner address (required)")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("to")

	return cmd
}

func (c *CLI) newChangeAdminCmd() *cobra.Command {
	var (
		newAdmin    string
		transferCap bool
	)

	cmd := &cobra.Command{
		Use:   "change-admin",
		Short: "Update the registry's recorded administrator",
		Long: `Update the administrator address recorded in the shared admin registry.

This changes the registry pointer only. With --transfer-cap the admin
capability object is also transferred to the new administrator in a second
operation, completing the handoff. The two submissions are separate
transactions: if the second fails, the registry already points at the new
admin while the capability remains with the old one, and the failure
report says so explicitly.`,
		Example: `  tokenops change-admin --to 0x7c3e...
  tokenops change-admin --to 0x7c3e... --transfer-cap`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()
			ctx := cmd.Context()

			treasury, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, capability.KindTreasury)
			if err != nil {
				return err
			}
			adminCap, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, capability.KindAdmin)
			if err != nil {
				return err
			}
			registry, err := o.locator.ResolveShared(ctx, capability.KindAdminRegistry)
			if err != nil {
				return err
			}

			req, err := o.builder.BuildAdminChange(treasury, adminCap, registry, newAdmin)
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
			c.printf("Registry administrator updated to %s\n", newAdmin)
			c.printf("Transaction: %s\n", result.Digest)

			if !transferCap {
				c.println("Note: the admin capability object was not transferred; run 'transfer-cap --kind admin' to complete the handoff.")
				return nil
			}

			capReq, err := o.builder.BuildTransferCapability(adminCap, newAdmin)
			if err != nil {
				return err
			}
			capResult, err := o.operator.Submit(ctx, capReq)
			if err != nil {
				c.errorf("registry now points at %s but the admin capability transfer did not complete: %v\n", newAdmin, err)
				return err
			}
			if rerr := capResult.Err(); rerr != nil {
				c.errorf("registry now points at %s but the admin capability transfer was rejected\n", newAdmin)
				return rerr
			}
			c.printf("Admin capability %s transferred to %s\n", adminCap.ObjectID, newAdmin)
			c.printf("Transaction: %s\n", capResult.Digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&newAdmin, "to", "", "new administrator address (required)")
	cmd.Flags().BoolVar(&transferCap, "transfer-cap", false, "also transfer the admin capability object")
	cmd.MarkFlagRequired("to")

	return cmd
}
