package utils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashToHex renders a 32-byte value as 0x-prefixed hex, the storage and API
// representation used for commitments, nullifiers, and roots.
func HashToHex(h [32]byte) string {
	return hexutil.Encode(h[:])
}

// HexToHash parses a 0x-prefixed hex string into a 32-byte value.
func HexToHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex value: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// BytesToHex renders arbitrary bytes as 0x-prefixed hex.
func BytesToHex(b []byte) string {
	return hexutil.Encode(b)
}

// HexToBytes parses a 0x-prefixed hex string.
func HexToBytes(s string) ([]byte, error) {
	return hexutil.Decode(s)
}
