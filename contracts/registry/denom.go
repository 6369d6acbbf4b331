package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	TransferPort  = "transfer"
	channelPrefix = "channel-"
)

// HashDenomTrace computes the local ibc/ denom of a full denom trace
// such as "transfer/channel-0/uatom".
func HashDenomTrace(trace string) string {
	hash := sha256.Sum256([]byte(trace))
	return fmt.Sprintf("ibc/%s", strings.ToUpper(hex.EncodeToString(hash[:])))
}

// DenomTrace is a parsed "port/channel/.../base_denom" path.
type DenomTrace struct {
	Path      string `json:"path"`
	BaseDenom string `json:"base_denom"`
}

// Hops returns the channels of the trace, outermost first.
func (d DenomTrace) Hops() []string {
	if d.Path == "" {
		return nil
	}
	segments := strings.Split(d.Path, "/")
	channels := make([]string, 0, len(segments)/2)
	for i := 0; i+1 < len(segments); i += 2 {
		channels = append(channels, segments[i+1])
	}
	return channels
}

func (d DenomTrace) FullPath() string {
	if d.Path == "" {
		return d.BaseDenom
	}
	return d.Path + "/" + d.BaseDenom
}

// IBCDenom returns the hashed local denom, or the base denom when the trace has no hops.
func (d DenomTrace) IBCDenom() string {
	if d.Path == "" {
		return d.BaseDenom
	}
	return HashDenomTrace(d.FullPath())
}

// ParseDenomTrace splits a full trace into its port/channel pairs and base denom.
// Base denoms may themselves contain slashes (e.g. factory denoms).
func ParseDenomTrace(full string) DenomTrace {
	segments := strings.Split(full, "/")
	var hops []string
	i := 0
	for ; i+1 < len(segments); i += 2 {
		if segments[i] != TransferPort || !IsChannelID(segments[i+1]) {
			break
		}
		hops = append(hops, segments[i], segments[i+1])
	}
	return DenomTrace{
		Path:      strings.Join(hops, "/"),
		BaseDenom: strings.Join(segments[i:], "/"),
	}
}

// IsChannelID reports whether s has the form "channel-N".
func IsChannelID(s string) bool {
	return ValidateChannelID(s) == nil
}

func ValidateChannelID(s string) error {
	if !strings.HasPrefix(s, channelPrefix) {
		return fmt.Errorf("invalid channel id %q: missing %q prefix: %w", s, channelPrefix, ErrInvalidInput)
	}
	if _, err := strconv.ParseUint(strings.TrimPrefix(s, channelPrefix), 10, 64); err != nil {
		return fmt.Errorf("invalid channel id %q: %w", s, ErrInvalidInput)
	}
	return nil
}
