package evm

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/ethclient"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

// Dialer opens a Client for a network.
type Dialer func(ctx context.Context, n network.Network) (Client, error)

// NewDialer returns a Dialer which connects to every RPC of a network and wraps them in a
// MultiClient.
func NewDialer(lggr logger.Logger, retryConfig RetryConfig) Dialer {
	return func(ctx context.Context, n network.Network) (Client, error) {
		return Dial(ctx, lggr, n, retryConfig)
	}
}

// Dial connects to the RPCs of n in order and returns a MultiClient over those that could be
// dialed. Endpoints that fail to dial are logged and skipped.
func Dial(ctx context.Context, lggr logger.Logger, n network.Network, retryConfig RetryConfig) (*MultiClient, error) {
	family, err := n.ChainFamily()
	if err != nil {
		return nil, err
	}
	if family != chainsel.FamilyEVM {
		return nil, fmt.Errorf("chain %d is not an EVM chain (family %q)", n.ChainSelector, family)
	}

	chainName := n.ChainName()

	clients := make([]Client, 0, len(n.RPCs))
	for i, rpc := range n.RPCs {
		client, err := dialWithRetry(ctx, lggr, chainName, rpc, retryConfig)
		if err != nil {
			lggr.Warnf("failed to dial client %d for RPC '%s' - %s (%d), trying with the next one: %v", i, rpc.RPCName, chainName, n.ChainSelector, err)

			continue
		}

		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no valid RPC clients created for chain %s", chainName)
	}

	return NewMultiClient(lggr, chainName, retryConfig, clients...)
}

func dialWithRetry(
	ctx context.Context, lggr logger.Logger, chainName string, rpc network.RPC, retryConfig RetryConfig,
) (*ethclient.Client, error) {
	endpoint := rpc.PreferredEndpoint()

	var client *ethclient.Client
	err := retry.Do(func() error {
		dialCtx, cancel := ensureTimeout(ctx, retryConfig.Timeout)
		defer cancel()

		var err error
		lggr.Debugf("chain %q: rpc: %q: dialing endpoint '%s'", chainName, rpc.RPCName, endpoint)
		client, err = ethclient.DialContext(dialCtx, endpoint)

		return err
	},
		retry.Context(ctx),
		retry.Attempts(max(retryConfig.Attempts, 1)),
		retry.Delay(retryConfig.Delay),
		retry.DelayType(retry.FixedDelay),
	)
	if err != nil {
		return nil, errors.Join(err, fmt.Errorf("failed to dial endpoint '%s' for RPC %s for chain %s after retries", endpoint, rpc.RPCName, chainName))
	}

	return client, nil
}
