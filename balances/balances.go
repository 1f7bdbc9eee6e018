// Package balances reads the native balance of an account on every chain of an environment.
package balances

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/interchain-infra/chain/evm"
	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/concurrency"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// Balance is the native balance of an account on a chain.
type Balance struct {
	Selector uint64   `json:"selector"`
	Chain    string   `json:"chain"`
	Wei      *big.Int `json:"wei"`
}

// Ether returns the balance in ether, without trailing zeros.
func (b Balance) Ether() string {
	return FormatEther(b.Wei)
}

// FormatEther formats an amount of wei as a decimal amount of ether.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	s := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether)).FloatString(18)
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}

// Fetch returns the balance of address on every EVM network of e, in network order. At most
// e.Concurrency() chains are queried at a time.
func Fetch(
	ctx context.Context, lggr logger.Logger, e *config.Environment, dial evm.Dialer, address common.Address,
) ([]Balance, error) {
	lggr = lggr.Named("balances")

	networks := e.Networks.FilterWith(network.ChainFamilyFilter(chainsel.FamilyEVM)).Networks()

	return concurrency.Map(ctx, e.Concurrency(), networks, func(ctx context.Context, n network.Network, _ int) (Balance, error) {
		chainName := n.ChainName()

		client, err := dial(ctx, n)
		if err != nil {
			return Balance{}, fmt.Errorf("chain %s: %w", chainName, err)
		}
		defer client.Close()

		wei, err := client.BalanceAt(ctx, address, nil)
		if err != nil {
			return Balance{}, fmt.Errorf("chain %s: failed to get balance of %s: %w", chainName, address, err)
		}

		lggr.Debugw("Fetched balance", "chain", chainName, "address", address, "wei", wei)

		return Balance{Selector: n.ChainSelector, Chain: chainName, Wei: wei}, nil
	})
}
