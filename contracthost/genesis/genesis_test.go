package genesis_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/config"
	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/genesis"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

func newHost() *host.Host {
	return host.NewHost(storage.NewMemStore(), host.DefaultConfig())
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	owner := host.MockAddress("osmo", "owner")
	router := host.ContractAddress("osmo", "swaprouter")
	alice := host.MockAddress("osmo", "alice")

	fixture := &config.Fixture{
		Balances: []config.BalanceFixture{{Address: alice, Denom: "uosmo", Amount: "1000000"}},
		Contracts: []config.ContractFixture{
			{
				Label:  "registry",
				Kind:   "registry",
				Sender: owner,
				Msg:    fmt.Sprintf(`{"owner":%q}`, owner),
				Executes: []string{
					`{"modify_chain_channel_links":{"operations":[{"operation":"set","source_chain":"osmosis","destination_chain":"cosmoshub","channel_id":"channel-0"}]}}`,
				},
			},
			{
				Label:  "xcs",
				Kind:   "crosschainswaps",
				Sender: owner,
				Msg:    fmt.Sprintf(`{"governor":%q,"swap_contract":%q,"registry_contract":"$registry"}`, owner, router),
			},
			{
				Label:  "fees",
				Kind:   "affiliateswap",
				Sender: owner,
				Msg:    fmt.Sprintf(`{"swap_contract":%q,"affiliate_addr":%q,"affiliate_bps":100}`, router, owner),
			},
		},
	}
	h := newHost()
	assert.NoError(t, genesis.Apply(ctx, h, fixture))
	assert.DeepEqual(t, h.Contracts(), []string{"fees", "registry", "xcs"})
	assert.Equal(t, h.Bank().Balance(alice, "uosmo").Amount.Uint64(), uint64(1_000_000))

	regAddr, ok := h.Address("registry")
	assert.True(t, ok)
	xcsAddr, _ := h.Address("xcs")
	cfg, err := h.Query(ctx, xcsAddr, []byte(`{"config":{}}`))
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(cfg), regAddr))

	channel, err := h.Query(ctx, regAddr, []byte(`{"get_channel_from_chain_pair":{"source_chain":"osmosis","destination_chain":"cosmoshub"}}`))
	assert.NoError(t, err)
	assert.Equal(t, string(channel), `"channel-0"`)
}

func TestApply_Errors(t *testing.T) {
	owner := host.MockAddress("osmo", "owner")
	tests := []struct {
		name    string
		fixture config.Fixture
		target  error
	}{
		{
			name: "unknown kind",
			fixture: config.Fixture{Contracts: []config.ContractFixture{
				{Label: "x", Kind: "cw20", Sender: owner, Msg: `{}`},
			}},
			target: genesis.ErrUnknownKind,
		},
		{
			name: "unknown placeholder",
			fixture: config.Fixture{Contracts: []config.ContractFixture{
				{Label: "xcs", Kind: "crosschainswaps", Sender: owner, Msg: `{"registry_contract":"$registry"}`},
			}},
			target: genesis.ErrUnknownLabel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := genesis.Apply(context.Background(), newHost(), &tt.fixture)
			assert.True(t, errors.Is(err, tt.target))
		})
	}

	t.Run("bad amount", func(t *testing.T) {
		err := genesis.Apply(context.Background(), newHost(), &config.Fixture{
			Balances: []config.BalanceFixture{{Address: owner, Denom: "uosmo", Amount: "-5"}},
		})
		assert.Error(t, err)
	})

	t.Run("rejected instantiate", func(t *testing.T) {
		err := genesis.Apply(context.Background(), newHost(), &config.Fixture{
			Contracts: []config.ContractFixture{{Label: "r", Kind: "registry", Sender: owner, Msg: `{"owner":"nope"}`}},
		})
		assert.Error(t, err)
	})
}

func TestNewContract(t *testing.T) {
	for _, kind := range []string{"ratelimiter", "registry", "affiliateswap", "crosschainswaps"} {
		c, err := genesis.NewContract(kind)
		assert.NoError(t, err)
		assert.NotNil(t, c)
	}
}

func TestApply_DevnetFixture(t *testing.T) {
	ctx := context.Background()
	fixture, err := config.NewFixtureLoader().LoadFromFile("../fixtures/devnet.toml")
	assert.NoError(t, err)

	h := newHost()
	assert.NoError(t, genesis.Apply(ctx, h, fixture))
	assert.DeepEqual(t, h.Contracts(), []string{"affiliateswap", "crosschainswaps", "ratelimiter", "registry"})

	alice := host.MockAddress("osmo", "alice")
	assert.Equal(t, h.Bank().Balance(alice, "uosmo").Amount.Uint64(), uint64(1_000_000_000))

	reg, _ := h.Address("registry")
	trace, err := h.Query(ctx, reg, []byte(`{"get_denom_trace":{"ibc_denom":"ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2"}}`))
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(trace), "uatom"))
}

func TestApply_ChainRegistrySeed(t *testing.T) {
	ctx := context.Background()
	owner := host.MockAddress("osmo", "owner")
	root := t.TempDir()
	files := map[string]string{
		"_IBC/cosmoshub-osmosis.json": `{"chain_1":{"chain_name":"cosmoshub"},"chain_2":{"chain_name":"osmosis"},"channels":[{"chain_1":{"channel_id":"channel-141","port_id":"transfer"},"chain_2":{"channel_id":"channel-0","port_id":"transfer"},"tags":{"status":"live"}}]}`,
		"cosmoshub/chain.json":        `{"chain_name":"cosmoshub","bech32_prefix":"cosmos"}`,
		"osmosis/chain.json":          `{"chain_name":"osmosis","bech32_prefix":"osmo"}`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	h := newHost()
	err := genesis.Apply(ctx, h, &config.Fixture{
		Contracts: []config.ContractFixture{
			{Label: "registry", Kind: "registry", Sender: owner, Msg: fmt.Sprintf(`{"owner":%q}`, owner)},
		},
		ChainRegistry: &config.ChainRegistryFixture{
			Dir:      root,
			Chains:   []string{"cosmoshub", "osmosis"},
			Registry: "registry",
			Sender:   owner,
		},
	})
	assert.NoError(t, err)

	reg, _ := h.Address("registry")
	out, err := h.Query(ctx, reg, []byte(`{"get_destination_chain_from_source_chain_via_channel":{"on_chain":"cosmoshub","via_channel":"channel-141"}}`))
	assert.NoError(t, err)
	assert.Equal(t, string(out), `"osmosis"`)
}
