package host

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

// API exposes the address helpers a contract may call.
type API interface {
	AddrValidate(addr string) error
}

// Bech32API validates addresses against a single chain prefix.
type Bech32API struct {
	Prefix string
}

// AddrValidate checks the checksum, the prefix and the payload length of a bech32 address.
//
// Params:
//   - addr: the address to validate
//
// Returns:
//   - error: if the address is not a valid account (20 bytes) or contract (32 bytes) address
func (a Bech32API) AddrValidate(addr string) error {
	prefix, err := Bech32Prefix(addr)
	if err != nil {
		return err
	}
	if prefix != a.Prefix {
		return fmt.Errorf("invalid address %s: expected prefix %s, got %s", addr, a.Prefix, prefix)
	}
	return nil
}

// Bech32Prefix validates addr as a cosmos address of any chain and returns its human readable part.
func Bech32Prefix(addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("address is empty")
	}
	if strings.ToLower(addr) != addr {
		return "", fmt.Errorf("invalid address %s: must be lowercase", addr)
	}

	prefix, data, err := bech32.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("invalid bech32 address %s: %w", addr, err)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("invalid bech32 payload in %s: %w", addr, err)
	}
	if len(raw) != 20 && len(raw) != 32 {
		return "", fmt.Errorf("invalid address length %d for %s", len(raw), addr)
	}
	return prefix, nil
}

// MockAddress derives a deterministic, valid account address from a label.
func MockAddress(prefix, label string) string {
	sum := sha256.Sum256([]byte(label))
	return encodeAddress(prefix, sum[:20])
}

// ContractAddress derives the address a contract instance is registered under.
func ContractAddress(prefix, label string) string {
	sum := sha256.Sum256([]byte("contract/" + label))
	return encodeAddress(prefix, sum[:])
}

func encodeAddress(prefix string, raw []byte) string {
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return ""
	}
	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return ""
	}
	return addr
}
