package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/operation"
)

func (c *CLI) newBurnCmd() *cobra.Command {
	var (
		amountStr string
		coinID    string
	)

	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Burn tokens from an owned coin",
		Long: `Burn tokens from a coin owned by the operator.

With --amount, a coin of exactly that value is split off and burned in one
atomic request; the split never survives a failed burn. Without --amount
the whole coin object is burned. Without --coin, the operator's
largest-balance coin of the configured type is used.`,
		Example: `  tokenops burn --amount 0.5
  tokenops burn --coin 0x9a41...
  tokenops burn --coin 0x9a41... --amount 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.newOpsContext()
			if err != nil {
				return err
			}
			defer o.Close()
			ctx := cmd.Context()

			var amt *amount.Amount
			if amountStr != "" {
				parsed, err := amount.ToBaseUnits(amountStr, c.cfg.Token.Decimals)
				if err != nil {
					return err
				}
				amt = &parsed
			}

			coin, err := c.selectCoin(ctx, o, coinID)
			if err != nil {
				return err
			}

			treasury, err := o.locator.ResolveOwned(ctx, c.cfg.Signer.Address, capability.KindTreasury)
			if err != nil {
				return err
			}
			pause, err := o.locator.ResolveShared(ctx, capability.KindPauseState)
			if err != nil {
				return err
			}

			req, err := o.builder.BuildBurn(treasury, pause, coin, amt)
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

			burned := coin.Balance
			if req.Amount != nil {
				burned = uint64(*req.Amount)
			}
			if c.jsonOutput {
				return c.outputJSON(map[string]interface{}{
					"operation_id":      req.ID,
					"digest":            result.Digest,
					"coin":              coin.ObjectID,
					"burned_base_units": burned,
					"whole_object":      req.Amount == nil,
				})
			}
			if req.Amount == nil {
				c.printf("Burned coin %s entirely (%d base units)\n", coin.ObjectID, burned)
			} else {
				c.printf("Burned %s tokens (%d base units) from coin %s\n",
					amount.ToDisplay(amount.Amount(burned), c.cfg.Token.Decimals), burned, coin.ObjectID)
			}
			c.printf("Transaction: %s\n", result.Digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "amount to burn in display units (default: whole coin)")
	cmd.Flags().StringVar(&coinID, "coin", "", "coin object id (default: largest-balance coin)")

	return cmd
}

// selectCoin resolves the burn input. An explicit id is fetched and checked;
// otherwise the operator's largest-balance coin of the configured type wins.
func (c *CLI) selectCoin(ctx context.Context, o *opsContext, coinID string) (operation.CoinRef, error) {
	if coinID != "" {
		obj, err := o.rpc.GetObject(ctx, coinID)
		if err != nil {
			return operation.CoinRef{}, err
		}
		balance, _ := obj.Fields["balance"].(float64)
		return operation.CoinRef{
			ObjectID: obj.ObjectID,
			Balance:  uint64(balance),
			Version:  obj.Version,
			Digest:   obj.Digest,
		}, nil
	}

	coins, err := o.rpc.Coins(ctx, c.cfg.Signer.Address, c.cfg.Token.CoinType)
	if err != nil {
		return operation.CoinRef{}, err
	}
	if len(coins) == 0 {
		return operation.CoinRef{}, fmt.Errorf("no coins of type %s owned by %s", c.cfg.Token.CoinType, c.cfg.Signer.Address)
	}

	best := coins[0]
	for _, coin := range coins[1:] {
		if coin.Balance > best.Balance {
			best = coin
		}
	}
	return operation.CoinRef{
		ObjectID: best.ObjectID,
		Balance:  best.Balance,
		Version:  best.Version,
		Digest:   best.Digest,
	}, nil
}
