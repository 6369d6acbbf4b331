package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrKeyTooLong rejects a key part whose length does not fit its two byte prefix.
var ErrKeyTooLong = errors.New("key part too long")

// KeyCodec turns a typed map key into the bytes stored after the map namespace and back.
type KeyCodec[K any] interface {
	Encode(key K) ([]byte, error)
	Decode(raw []byte) (K, error)
}

// Pair is a composite (string, string) key, such as (channel_id, denom).
type Pair struct {
	First  string
	Second string
}

// ChannelSeq is a composite (channel, sequence) key used for in-flight packets.
type ChannelSeq struct {
	Channel  string
	Sequence uint64
}

type stringKey struct{}

type pairKey struct{}

type channelSeqKey struct{}

var (
	StringKey     KeyCodec[string]     = stringKey{}
	PairKey       KeyCodec[Pair]       = pairKey{}
	ChannelSeqKey KeyCodec[ChannelSeq] = channelSeqKey{}
)

func (stringKey) Encode(key string) ([]byte, error) {
	return lengthPrefixed([]byte(key))
}

func (stringKey) Decode(raw []byte) (string, error) {
	part, rest, err := splitLengthPrefixed(raw)
	if err != nil {
		return "", err
	}
	if len(rest) != 0 {
		return "", fmt.Errorf("trailing bytes in string key")
	}
	return string(part), nil
}

func (pairKey) Encode(key Pair) ([]byte, error) {
	first, err := lengthPrefixed([]byte(key.First))
	if err != nil {
		return nil, err
	}
	second, err := lengthPrefixed([]byte(key.Second))
	if err != nil {
		return nil, err
	}
	return append(first, second...), nil
}

func (pairKey) Decode(raw []byte) (Pair, error) {
	first, rest, err := splitLengthPrefixed(raw)
	if err != nil {
		return Pair{}, err
	}
	second, rest, err := splitLengthPrefixed(rest)
	if err != nil {
		return Pair{}, err
	}
	if len(rest) != 0 {
		return Pair{}, fmt.Errorf("trailing bytes in pair key")
	}
	return Pair{First: string(first), Second: string(second)}, nil
}

func (channelSeqKey) Encode(key ChannelSeq) ([]byte, error) {
	channel, err := lengthPrefixed([]byte(key.Channel))
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint64(channel, key.Sequence), nil
}

func (channelSeqKey) Decode(raw []byte) (ChannelSeq, error) {
	channel, rest, err := splitLengthPrefixed(raw)
	if err != nil {
		return ChannelSeq{}, err
	}
	if len(rest) != 8 {
		return ChannelSeq{}, fmt.Errorf("invalid sequence length %d", len(rest))
	}
	return ChannelSeq{Channel: string(channel), Sequence: binary.BigEndian.Uint64(rest)}, nil
}

func lengthPrefixed(b []byte) ([]byte, error) {
	if len(b) > math.MaxUint16 {
		return nil, fmt.Errorf("%d bytes: %w", len(b), ErrKeyTooLong)
	}
	out := make([]byte, 2, 2+len(b))
	binary.BigEndian.PutUint16(out, uint16(len(b)))
	return append(out, b...), nil
}

func splitLengthPrefixed(raw []byte) ([]byte, []byte, error) {
	if len(raw) < 2 {
		return nil, nil, fmt.Errorf("key too short")
	}
	n := int(binary.BigEndian.Uint16(raw[:2]))
	if len(raw) < 2+n {
		return nil, nil, fmt.Errorf("key length %d exceeds remaining %d bytes", n, len(raw)-2)
	}
	return raw[2 : 2+n], raw[2+n:], nil
}

// prefixEnd returns the smallest key greater than every key starting with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
