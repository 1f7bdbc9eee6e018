package network

import (
	"os"
	"path/filepath"
	"testing"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	ethereum = Network{
		Type:          NetworkTypeMainnet,
		ChainSelector: chainsel.ETHEREUM_MAINNET.Selector,
		RPCs:          []RPC{{RPCName: "eth", HTTPURL: "https://eth.example"}},
	}
	polygon = Network{
		Type:          NetworkTypeMainnet,
		ChainSelector: chainsel.POLYGON_MAINNET.Selector,
		RPCs:          []RPC{{RPCName: "polygon", HTTPURL: "https://polygon.example"}},
	}
	sepolia = Network{
		Type:          NetworkTypeTestnet,
		ChainSelector: chainsel.ETHEREUM_TESTNET_SEPOLIA.Selector,
		RPCs:          []RPC{{RPCName: "sepolia", HTTPURL: "https://sepolia.example"}},
	}
	solana = Network{
		Type:          NetworkTypeMainnet,
		ChainSelector: chainsel.SOLANA_MAINNET.Selector,
		RPCs:          []RPC{{RPCName: "solana", HTTPURL: "https://solana.example"}},
	}
)

func Test_Config_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    *Config
		wantErr string
	}{
		{
			name: "valid config",
			give: NewConfig([]Network{ethereum, polygon}),
		},
		{
			name: "invalid config",
			give: NewConfig([]Network{
				{
					Type:          NetworkTypeMainnet,
					ChainSelector: 1,
				},
			}),
			wantErr: "network 1: at least one RPC is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.give.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_Config_Accessors(t *testing.T) {
	t.Parallel()

	cfg := NewConfig([]Network{polygon, ethereum, sepolia})

	selectors := cfg.ChainSelectors()
	require.Len(t, selectors, 3)
	assert.IsIncreasing(t, selectors)

	networks := cfg.Networks()
	require.Len(t, networks, 3)
	for i, n := range networks {
		assert.Equal(t, selectors[i], n.ChainSelector)
	}

	got, err := cfg.NetworkBySelector(ethereum.ChainSelector)
	require.NoError(t, err)
	assert.Equal(t, ethereum, got)

	_, err = cfg.NetworkBySelector(7)
	require.EqualError(t, err, "network with selector 7 not found in configuration")
}

func Test_Config_Merge(t *testing.T) {
	t.Parallel()

	updated := ethereum
	updated.RPCs = []RPC{{RPCName: "eth-2", HTTPURL: "https://eth-2.example"}}

	cfg := NewConfig([]Network{ethereum})
	cfg.Merge(NewConfig([]Network{updated, polygon}))

	require.Len(t, cfg.Networks(), 2)

	got, err := cfg.NetworkBySelector(ethereum.ChainSelector)
	require.NoError(t, err)
	assert.Equal(t, "eth-2", got.RPCs[0].RPCName)
}

func Test_Config_FilterWith(t *testing.T) {
	t.Parallel()

	cfg := NewConfig([]Network{ethereum, polygon, sepolia, solana})

	tests := []struct {
		name    string
		filters []NetworkFilter
		want    []uint64
	}{
		{
			name: "no filters",
			want: cfg.ChainSelectors(),
		},
		{
			name:    "testnets",
			filters: []NetworkFilter{TypesFilter(NetworkTypeTestnet)},
			want:    []uint64{sepolia.ChainSelector},
		},
		{
			name:    "evm mainnets",
			filters: []NetworkFilter{TypesFilter(NetworkTypeMainnet), ChainFamilyFilter(chainsel.FamilyEVM)},
			want:    NewConfig([]Network{ethereum, polygon}).ChainSelectors(),
		},
		{
			name:    "selectors",
			filters: []NetworkFilter{ChainSelectorFilter(polygon.ChainSelector, solana.ChainSelector)},
			want:    NewConfig([]Network{polygon, solana}).ChainSelectors(),
		},
		{
			name:    "unknown family",
			filters: []NetworkFilter{ChainFamilyFilter("unknown")},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, cfg.FilterWith(tt.filters...).ChainSelectors())
		})
	}
}

func Test_Config_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := NewConfig([]Network{polygon, ethereum})

	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var got Config
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, cfg.Networks(), got.Networks())
}

func Test_Load(t *testing.T) {
	t.Parallel()

	yamlManifest := `
networks:
  - type: mainnet
    chain_selector: 5009297550715157269
    block_explorer:
      type: Etherscan
      url: https://etherscan.io
    rpcs:
      - rpc_name: primary
        preferred_url_scheme: http
        http_url: https://eth.example
        ws_url: wss://eth.example
`

	tomlManifest := `
[[networks]]
type = "mainnet"
chain_selector = 4051577828743386545

[[networks.rpcs]]
rpc_name = "polygon"
http_url = "https://polygon.example"
`

	invalidManifest := `
networks:
  - type: mainnet
    chain_selector: 5009297550715157269
`

	tests := []struct {
		name      string
		files     map[string]string
		wantSels  []uint64
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml",
			files:    map[string]string{"networks.yaml": yamlManifest},
			wantSels: []uint64{chainsel.ETHEREUM_MAINNET.Selector},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()

				n, err := cfg.NetworkBySelector(chainsel.ETHEREUM_MAINNET.Selector)
				require.NoError(t, err)
				assert.Equal(t, "https://etherscan.io", n.BlockExplorer.URL)
				assert.Equal(t, "wss://eth.example", n.RPCs[0].WSURL)
			},
		},
		{
			name:     "toml",
			files:    map[string]string{"networks.toml": tomlManifest},
			wantSels: []uint64{chainsel.POLYGON_MAINNET.Selector},
		},
		{
			name: "merges yaml and toml",
			files: map[string]string{
				"a.yml":  yamlManifest,
				"b.toml": tomlManifest,
			},
			wantSels: NewConfig([]Network{ethereum, polygon}).ChainSelectors(),
		},
		{
			name:    "invalid network",
			files:   map[string]string{"networks.yaml": invalidManifest},
			wantErr: "failed to validate networks configuration: network 5009297550715157269: at least one RPC is required",
		},
		{
			name:    "malformed yaml",
			files:   map[string]string{"networks.yaml": "networks: ["},
			wantErr: "failed to unmarshal networks YAML",
		},
		{
			name:    "malformed toml",
			files:   map[string]string{"networks.toml": "[[networks"},
			wantErr: "failed to unmarshal networks TOML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			paths := make([]string, 0, len(tt.files))
			for name, content := range tt.files {
				p := filepath.Join(dir, name)
				require.NoError(t, os.WriteFile(p, []byte(content), 0600))
				paths = append(paths, p)
			}

			cfg, err := Load(paths...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSels, cfg.ChainSelectors())

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func Test_Load_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "failed to read networks file")
}
