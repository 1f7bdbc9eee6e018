package evm

import (
	"testing"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

func Test_Dial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		give        network.Network
		wantErr     string
		wantClients int
	}{
		{
			name: "dials every http endpoint",
			give: network.Network{
				Type:          network.NetworkTypeMainnet,
				ChainSelector: chainsel.ETHEREUM_MAINNET.Selector,
				RPCs: []network.RPC{
					{RPCName: "a", HTTPURL: "http://127.0.0.1:1"},
					{RPCName: "b", HTTPURL: "http://127.0.0.1:2"},
				},
			},
			wantClients: 2,
		},
		{
			name: "skips endpoints that cannot be dialed",
			give: network.Network{
				Type:          network.NetworkTypeMainnet,
				ChainSelector: chainsel.ETHEREUM_MAINNET.Selector,
				RPCs: []network.RPC{
					{RPCName: "bad", HTTPURL: "unknown://scheme"},
					{RPCName: "good", HTTPURL: "http://127.0.0.1:1"},
				},
			},
			wantClients: 1,
		},
		{
			name: "no endpoint could be dialed",
			give: network.Network{
				Type:          network.NetworkTypeMainnet,
				ChainSelector: chainsel.ETHEREUM_MAINNET.Selector,
				RPCs:          []network.RPC{{RPCName: "bad", HTTPURL: "unknown://scheme"}},
			},
			wantErr: "no valid RPC clients created for chain " + chainsel.ETHEREUM_MAINNET.Name,
		},
		{
			name: "non EVM chain",
			give: network.Network{
				Type:          network.NetworkTypeMainnet,
				ChainSelector: chainsel.SOLANA_MAINNET.Selector,
				RPCs:          []network.RPC{{RPCName: "sol", HTTPURL: "http://127.0.0.1:1"}},
			},
			wantErr: "is not an EVM chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dial := NewDialer(logger.Test(t), testRetryConfig(1))

			got, err := dial(t.Context(), tt.give)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			defer got.Close()

			mc, ok := got.(*MultiClient)
			require.True(t, ok)
			assert.Len(t, mc.clients(), tt.wantClients)
		})
	}
}
