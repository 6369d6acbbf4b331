package chainreg_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/chainreg"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

const cosmoshubOsmosis = `{
  "$schema": "../ibc_data.schema.json",
  "chain_1": {"chain_name": "cosmoshub", "client_id": "07-tendermint-259", "connection_id": "connection-257"},
  "chain_2": {"chain_name": "osmosis", "client_id": "07-tendermint-1", "connection_id": "connection-1"},
  "channels": [
    {
      "chain_1": {"channel_id": "channel-9", "port_id": "icahost"},
      "chain_2": {"channel_id": "channel-12", "port_id": "icacontroller-osmo"},
      "ordering": "ordered", "version": "ics27-1", "tags": {"status": "live"}
    },
    {
      "chain_1": {"channel_id": "channel-141", "port_id": "transfer"},
      "chain_2": {"channel_id": "channel-0", "port_id": "transfer"},
      "ordering": "unordered", "version": "ics20-1", "tags": {"preferred": true, "status": "live"}
    }
  ]
}`

const junoOsmosis = `{
  "chain_1": {"chain_name": "juno"},
  "chain_2": {"chain_name": "osmosis"},
  "channels": [
    {
      "chain_1": {"channel_id": "channel-0", "port_id": "transfer"},
      "chain_2": {"channel_id": "channel-42", "port_id": "transfer"},
      "ordering": "unordered", "version": "ics20-1", "tags": {"status": "killed"}
    }
  ]
}`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func registryTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"_IBC/cosmoshub-osmosis.json": cosmoshubOsmosis,
		"_IBC/juno-osmosis.json":      junoOsmosis,
		"_IBC/README.md":              "not a pair",
		"cosmoshub/chain.json":        `{"chain_name":"cosmoshub","chain_id":"cosmoshub-4","bech32_prefix":"cosmos","status":"live"}`,
		"osmosis/chain.json":          `{"chain_name":"osmosis","chain_id":"osmosis-1","bech32_prefix":"osmo","status":"live"}`,
		"juno/chain.json":             `{"chain_name":"juno","chain_id":"juno-1","bech32_prefix":"juno","status":"live"}`,
	})
}

func TestLoadIBC_FiltersByChain(t *testing.T) {
	root := registryTree(t)

	data, err := chainreg.LoadIBC(root, []string{"cosmoshub", "osmosis"})
	assert.NoError(t, err)
	assert.Equal(t, len(data), 1)
	assert.Equal(t, data[0].Chain1.ChainName, "cosmoshub")
	assert.Equal(t, len(data[0].Channels), 2)

	data, err = chainreg.LoadIBC(root, []string{"cosmoshub", "osmosis", "juno"})
	assert.NoError(t, err)
	assert.Equal(t, len(data), 2)

	_, err = chainreg.LoadIBC(t.TempDir(), []string{"osmosis"})
	assert.Error(t, err)
}

func TestChannelLinks(t *testing.T) {
	root := registryTree(t)
	data, err := chainreg.LoadIBC(root, []string{"cosmoshub", "osmosis"})
	assert.NoError(t, err)

	ops, err := chainreg.ChannelLinks(data)
	assert.NoError(t, err)
	assert.Equal(t, len(ops), 2)
	assert.Equal(t, ops[0].SourceChain, "cosmoshub")
	assert.Equal(t, *ops[0].ChannelID, "channel-141")
	assert.Equal(t, ops[1].SourceChain, "osmosis")
	assert.Equal(t, ops[1].DestinationChain, "cosmoshub")
	assert.Equal(t, *ops[1].ChannelID, "channel-0")
}

func TestChannelLinks_NoLiveTransferChannel(t *testing.T) {
	root := registryTree(t)
	data, err := chainreg.LoadIBC(root, []string{"cosmoshub", "osmosis", "juno"})
	assert.NoError(t, err)

	ops, err := chainreg.ChannelLinks(data)
	assert.True(t, errors.Is(err, chainreg.ErrNoTransferChannel))
	// the usable pair is still returned
	assert.Equal(t, len(ops), 2)
}

func TestPrefixes(t *testing.T) {
	chains := []chainreg.ChainData{
		{ChainName: "osmosis", Bech32Prefix: "osmo"},
		{ChainName: "noprefix"},
	}
	ops := chainreg.Prefixes(chains)
	assert.Equal(t, len(ops), 1)
	assert.Equal(t, ops[0].Prefix, "osmo")
	assert.Equal(t, ops[0].Operation, registry.OperationSet)
}

func TestMessages_SeedRegistry(t *testing.T) {
	ctx := context.Background()
	root := registryTree(t)
	msgs, err := chainreg.Messages(root, []string{"cosmoshub", "osmosis"})
	assert.NoError(t, err)
	assert.Equal(t, len(msgs), 2)

	h := host.NewHost(storage.NewMemStore(), host.DefaultConfig())
	owner := host.MockAddress("osmo", "owner")
	raw, err := json.Marshal(registry.InstantiateMsg{Owner: owner})
	assert.NoError(t, err)
	addr, _, err := h.Instantiate(ctx, "registry", registry.New(), owner, nil, raw)
	assert.NoError(t, err)
	for _, msg := range msgs {
		_, err := h.Execute(ctx, addr, owner, nil, msg)
		assert.NoError(t, err)
	}

	out, err := h.Query(ctx, addr, []byte(`{"get_channel_from_chain_pair":{"source_chain":"osmosis","destination_chain":"cosmoshub"}}`))
	assert.NoError(t, err)
	assert.Equal(t, string(out), `"channel-0"`)

	out, err = h.Query(ctx, addr, []byte(`{"get_chain_name_from_bech32_prefix":{"prefix":"cosmos"}}`))
	assert.NoError(t, err)
	assert.Equal(t, string(out), `"cosmoshub"`)
}

func TestMessages_MissingChain(t *testing.T) {
	_, err := chainreg.Messages(registryTree(t), []string{"osmosis", "stargaze"})
	assert.Error(t, err)
}

func TestDownload_LocalDir(t *testing.T) {
	src := registryTree(t)
	dst := filepath.Join(t.TempDir(), "chain-registry")
	assert.NoError(t, chainreg.Download(context.Background(), src, dst))

	data, err := chainreg.LoadIBC(dst, []string{"cosmoshub", "osmosis"})
	assert.NoError(t, err)
	assert.Equal(t, len(data), 1)
}
