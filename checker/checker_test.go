package checker

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/interchain-infra/chain/evm"
	"github.com/smartcontractkit/interchain-infra/config"
	"github.com/smartcontractkit/interchain-infra/config/env"
	"github.com/smartcontractkit/interchain-infra/config/network"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

var (
	ethSel     = chainsel.ETHEREUM_MAINNET.Selector
	polygonSel = chainsel.POLYGON_MAINNET.Selector
	solanaSel  = chainsel.SOLANA_MAINNET.Selector

	mailbox = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	router  = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

type fakeClient struct {
	chainID *big.Int
	code    map[common.Address][]byte
	err     error
	closed  atomic.Bool
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, f.err
}

func (f *fakeClient) BlockNumber(context.Context) (uint64, error) {
	return 1, f.err
}

func (f *fakeClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(0), f.err
}

func (f *fakeClient) CodeAt(_ context.Context, addr common.Address, _ *big.Int) ([]byte, error) {
	return f.code[addr], f.err
}

func (f *fakeClient) Close() {
	f.closed.Store(true)
}

func fakeDialer(clients map[uint64]*fakeClient) evm.Dialer {
	return func(_ context.Context, n network.Network) (evm.Client, error) {
		c, ok := clients[n.ChainSelector]
		if !ok {
			return nil, errors.New("no such chain")
		}

		return c, nil
	}
}

func testNetwork(sel uint64) network.Network {
	return network.Network{
		Type:          network.NetworkTypeMainnet,
		ChainSelector: sel,
		RPCs:          []network.RPC{{RPCName: "rpc", HTTPURL: "http://localhost:8545"}},
	}
}

func testEnvironment(book config.AddressBook, sels ...uint64) *config.Environment {
	networks := make([]network.Network, 0, len(sels))
	for _, sel := range sels {
		networks = append(networks, testNetwork(sel))
	}

	return &config.Environment{
		Name:      "mainnet",
		Networks:  network.NewConfig(networks),
		Settings:  &env.Config{Concurrency: 2},
		Addresses: book,
	}
}

func Test_Check(t *testing.T) {
	t.Parallel()

	deployed := []byte{0x60, 0x80}

	tests := []struct {
		name    string
		book    config.AddressBook
		clients map[uint64]*fakeClient
		want    []Violation
	}{
		{
			name: "healthy environment",
			book: config.AddressBook{
				ethSel:     {"Mailbox": mailbox},
				polygonSel: {"Mailbox": mailbox, "Router": router},
			},
			clients: map[uint64]*fakeClient{
				ethSel:     {chainID: big.NewInt(1), code: map[common.Address][]byte{mailbox: deployed}},
				polygonSel: {chainID: big.NewInt(137), code: map[common.Address][]byte{mailbox: deployed, router: deployed}},
			},
			want: []Violation{},
		},
		{
			name: "wrong chain id and missing code",
			book: config.AddressBook{
				polygonSel: {"Router": router, "Mailbox": mailbox},
			},
			clients: map[uint64]*fakeClient{
				ethSel:     {chainID: big.NewInt(5)},
				polygonSel: {chainID: big.NewInt(137), code: map[common.Address][]byte{}},
			},
			want: []Violation{
				{
					Selector: ethSel,
					Chain:    chainsel.ETHEREUM_MAINNET.Name,
					Kind:     KindChainIDMismatch,
					Actual:   "5",
					Expected: "1",
				},
				{
					Selector: polygonSel,
					Chain:    chainsel.POLYGON_MAINNET.Name,
					Kind:     KindMissingCode,
					Contract: "Mailbox",
					Actual:   "no code",
					Expected: "code at " + mailbox.Hex(),
				},
				{
					Selector: polygonSel,
					Chain:    chainsel.POLYGON_MAINNET.Name,
					Kind:     KindMissingCode,
					Contract: "Router",
					Actual:   "no code",
					Expected: "code at " + router.Hex(),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := testEnvironment(tt.book, ethSel, polygonSel)

			got, err := Check(t.Context(), logger.Test(t), e, fakeDialer(tt.clients))
			require.NoError(t, err)

			assert.Equal(t, "mainnet", got.Env)
			assert.Equal(t, []uint64{ethSel, polygonSel}, got.Chains)
			assert.Equal(t, tt.want, got.Violations)
			assert.Equal(t, len(tt.want) == 0, got.OK())

			for _, c := range tt.clients {
				assert.True(t, c.closed.Load())
			}
		})
	}
}

func Test_Check_SkipsNonEVMNetworks(t *testing.T) {
	t.Parallel()

	e := testEnvironment(nil, ethSel, solanaSel)
	clients := map[uint64]*fakeClient{ethSel: {chainID: big.NewInt(1)}}

	got, err := Check(t.Context(), logger.Test(t), e, fakeDialer(clients))
	require.NoError(t, err)
	assert.Equal(t, []uint64{ethSel}, got.Chains)
	assert.True(t, got.OK())
}

func Test_Check_RPCErrorAborts(t *testing.T) {
	t.Parallel()

	errRPC := errors.New("connection refused")

	tests := []struct {
		name    string
		clients map[uint64]*fakeClient
		wantErr string
	}{
		{
			name: "rpc call fails",
			clients: map[uint64]*fakeClient{
				ethSel:     {chainID: big.NewInt(1)},
				polygonSel: {err: errRPC},
			},
			wantErr: "chain " + chainsel.POLYGON_MAINNET.Name + ": failed to get chain id: connection refused",
		},
		{
			name: "dial fails",
			clients: map[uint64]*fakeClient{
				ethSel: {chainID: big.NewInt(1)},
			},
			wantErr: "chain " + chainsel.POLYGON_MAINNET.Name + ": no such chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := testEnvironment(nil, ethSel, polygonSel)

			got, err := Check(t.Context(), logger.Nop(), e, fakeDialer(tt.clients))
			require.EqualError(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func Test_Violation_String(t *testing.T) {
	t.Parallel()

	v := Violation{Chain: "ethereum-mainnet", Kind: KindChainIDMismatch, Actual: "5", Expected: "1"}
	assert.Equal(t, "ethereum-mainnet: chain_id_mismatch: expected 1, got 5", v.String())

	v = Violation{Chain: "ethereum-mainnet", Kind: KindMissingCode, Contract: "Mailbox", Actual: "no code", Expected: "code"}
	assert.Equal(t, "ethereum-mainnet: missing_code Mailbox: expected code, got no code", v.String())
}
