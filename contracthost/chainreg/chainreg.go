// Package chainreg turns a checkout of the cosmos chain registry into the
// channel link and bech32 prefix operations of the registry contract.
package chainreg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
)

// DefaultSource is the upstream chain registry in go-getter form.
const DefaultSource = "github.com/cosmos/chain-registry"

var ErrNoTransferChannel = errors.New("no usable transfer channel")

// Download fetches a chain registry tree from src (git, http archive or a
// local dir) into dst.
func Download(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	client := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("failed to download chain registry: %w", err)
	}
	return nil
}

// LoadIBC reads <root>/_IBC and keeps the files whose two chains are both in chains.
func LoadIBC(root string, chains []string) ([]IBCData, error) {
	dir := filepath.Join(root, "_IBC")
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain registry: %w", err)
	}

	var out []IBCData
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		pair := strings.SplitN(strings.TrimSuffix(name, ".json"), "-", 2)
		if len(pair) != 2 || !slices.Contains(chains, pair[0]) || !slices.Contains(chains, pair[1]) {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var data IBCData
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// LoadChains reads <root>/<chain>/chain.json for every requested chain.
func LoadChains(root string, chains []string) ([]ChainData, error) {
	out := make([]ChainData, 0, len(chains))
	for _, chain := range chains {
		body, err := os.ReadFile(filepath.Join(root, chain, "chain.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to read chain %s: %w", chain, err)
		}
		var data ChainData
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chain %s: %w", chain, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// transferChannel picks the ics20 channel of a pair: the preferred one if
// tagged, otherwise the first live one.
func transferChannel(data IBCData) (ChannelData, error) {
	var candidates []ChannelData
	for _, ch := range data.Channels {
		if ch.Chain1.PortID != "transfer" || ch.Chain2.PortID != "transfer" {
			continue
		}
		if ch.Tags.Status != "" && ch.Tags.Status != "live" {
			continue
		}
		if ch.Tags.Preferred {
			return ch, nil
		}
		candidates = append(candidates, ch)
	}
	if len(candidates) == 0 {
		return ChannelData{}, fmt.Errorf("%s-%s: %w", data.Chain1.ChainName, data.Chain2.ChainName, ErrNoTransferChannel)
	}
	return candidates[0], nil
}

// ChannelLinks emits a set operation for both directions of every pair.
// Pairs without a usable transfer channel are skipped and reported in the
// returned error.
func ChannelLinks(data []IBCData) ([]registry.ConnectionInput, error) {
	var (
		ops  []registry.ConnectionInput
		errs []error
	)
	for _, d := range data {
		ch, err := transferChannel(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c1, c2 := ch.Chain1.ChannelID, ch.Chain2.ChannelID
		ops = append(ops,
			registry.ConnectionInput{
				Operation:        registry.OperationSet,
				SourceChain:      d.Chain1.ChainName,
				DestinationChain: d.Chain2.ChainName,
				ChannelID:        &c1,
			},
			registry.ConnectionInput{
				Operation:        registry.OperationSet,
				SourceChain:      d.Chain2.ChainName,
				DestinationChain: d.Chain1.ChainName,
				ChannelID:        &c2,
			},
		)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].SourceChain != ops[j].SourceChain {
			return ops[i].SourceChain < ops[j].SourceChain
		}
		return ops[i].DestinationChain < ops[j].DestinationChain
	})
	return ops, errors.Join(errs...)
}

func Prefixes(chains []ChainData) []registry.ChainToBech32PrefixInput {
	ops := make([]registry.ChainToBech32PrefixInput, 0, len(chains))
	for _, c := range chains {
		if c.Bech32Prefix == "" {
			continue
		}
		ops = append(ops, registry.ChainToBech32PrefixInput{
			Operation: registry.OperationSet,
			ChainName: c.ChainName,
			Prefix:    c.Bech32Prefix,
		})
	}
	return ops
}

// Messages builds the registry execute messages seeding prefixes and channel
// links for chains from the registry checkout at root.
func Messages(root string, chains []string) ([][]byte, error) {
	chainData, err := LoadChains(root, chains)
	if err != nil {
		return nil, err
	}
	ibcData, err := LoadIBC(root, chains)
	if err != nil {
		return nil, err
	}
	links, err := ChannelLinks(ibcData)
	if err != nil {
		return nil, err
	}

	var msgs [][]byte
	if prefixes := Prefixes(chainData); len(prefixes) > 0 {
		raw, err := json.Marshal(registry.ExecuteMsg{ModifyBech32Prefixes: &registry.Bech32PrefixOperations{Operations: prefixes}})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, raw)
	}
	if len(links) > 0 {
		raw, err := json.Marshal(registry.ExecuteMsg{ModifyChainChannelLinks: &registry.ConnectionOperations{Operations: links}})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, raw)
	}
	return msgs, nil
}
