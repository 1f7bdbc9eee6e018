package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/interchain-infra/balances"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/flags"
	"github.com/smartcontractkit/interchain-infra/pkg/commands/text"
)

var (
	balancesShort = "Show the native balance of an account on every chain"

	balancesExample = text.Examples(`
		# Show the balance of the deployer on every chain of the testnet environment
		infractl balances -e environments/testnet -a 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
	`)
)

type balancesFlags struct {
	address string
}

func (c *Commands) Balances() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "balances",
		Short:   balancesShort,
		Example: balancesExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := balancesFlags{
				address: flags.MustString(cmd.Flags().GetString("address")),
			}

			return c.runBalances(cmd, f)
		},
	}

	cmd.Flags().StringP("address", "a", "", "Account address (required)")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func (c *Commands) runBalances(cmd *cobra.Command, f balancesFlags) error {
	if !common.IsHexAddress(f.address) {
		return fmt.Errorf("invalid address %q", f.address)
	}

	e, err := c.loadEnvironment(cmd)
	if err != nil {
		return err
	}

	dial := c.deps.DialerFactory(c.lggr, e.Settings)

	bals, err := balances.Fetch(cmd.Context(), c.lggr, e, dial, common.HexToAddress(f.address))
	if err != nil {
		return fmt.Errorf("failed to fetch balances on %s: %w", e.Name, err)
	}

	renderBalances(cmd.OutOrStdout(), bals)

	return nil
}
