package ratelimiter

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// Packet is the ICS-20 packet the chain hands to the sudo entry point.
type Packet struct {
	Sequence           uint64              `json:"sequence"`
	SourcePort         string              `json:"source_port"`
	SourceChannel      string              `json:"source_channel"`
	DestinationPort    string              `json:"destination_port"`
	DestinationChannel string              `json:"destination_channel"`
	Data               FungibleTokenData   `json:"data"`
	TimeoutHeight      *PacketTimeoutBlock `json:"timeout_height,omitempty"`
	TimeoutTimestamp   *uint64             `json:"timeout_timestamp,omitempty"`
}

type PacketTimeoutBlock struct {
	RevisionNumber *uint64 `json:"revision_number,omitempty"`
	RevisionHeight *uint64 `json:"revision_height,omitempty"`
}

type FungibleTokenData struct {
	Denom    string `json:"denom"`
	Amount   string `json:"amount"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

func (p Packet) Funds() (sdkmath.Uint, error) {
	amount, err := types.ParseAmount(p.Data.Amount)
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("packet %d: %w: %w", p.Sequence, ErrInvalidInput, err)
	}
	return amount, nil
}

// Path returns the rate limited path the packet moves through: the source
// channel for sends, the destination channel for receives, paired with the
// denom as it is known on this chain.
func (p Packet) Path(direction Direction) Path {
	if direction == Out {
		return NewPath(p.SourceChannel, p.LocalDenom(Out))
	}
	return NewPath(p.DestinationChannel, p.LocalDenom(In))
}

// LocalDenom resolves the packet denom to the denom held on this chain.
func (p Packet) LocalDenom(direction Direction) string {
	denom := p.Data.Denom
	if direction == Out {
		if strings.HasPrefix(denom, registry.TransferPort+"/") {
			return registry.HashDenomTrace(denom)
		}
		return denom
	}

	// A token coming back through the channel it left on carries our
	// outbound prefix; stripping it yields the original local denom.
	returning := p.SourcePort + "/" + p.SourceChannel + "/"
	if strings.HasPrefix(denom, returning) {
		return registry.ParseDenomTrace(strings.TrimPrefix(denom, returning)).IBCDenom()
	}
	return registry.HashDenomTrace(p.DestinationPort + "/" + p.DestinationChannel + "/" + denom)
}
