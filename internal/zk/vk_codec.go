package zk

import (
	"fmt"

	"shieldpool/internal/protocol"
)

// vkHeaderLen covers alpha (64) plus the three G2 elements (128 each).
const vkHeaderLen = G1PointLen + 3*G2PointLen

// VerificationKeyFromBytes parses the serialized key:
// alpha(64) || beta(128) || gamma(128) || delta(128) || IC[0..n](64 each).
// The IC count is implied by the length and must be at least 2.
func VerificationKeyFromBytes(raw []byte) (*VerificationKey, error) {
	if len(raw) < vkHeaderLen+2*G1PointLen || (len(raw)-vkHeaderLen)%G1PointLen != 0 {
		return nil, fmt.Errorf("%w: bad verification key length %d", protocol.ErrInvalidProofFormat, len(raw))
	}

	var vk VerificationKey
	copy(vk.AlphaG1[:], raw[0:64])
	copy(vk.BetaG2[:], raw[64:192])
	copy(vk.GammaG2[:], raw[192:320])
	copy(vk.DeltaG2[:], raw[320:448])

	icCount := (len(raw) - vkHeaderLen) / G1PointLen
	vk.IC = make([]G1Point, icCount)
	for i := 0; i < icCount; i++ {
		copy(vk.IC[i][:], raw[vkHeaderLen+i*G1PointLen:])
	}
	return &vk, nil
}

// Bytes serializes the key into the wire format above.
func (vk *VerificationKey) Bytes() []byte {
	out := make([]byte, vkHeaderLen+len(vk.IC)*G1PointLen)
	copy(out[0:64], vk.AlphaG1[:])
	copy(out[64:192], vk.BetaG2[:])
	copy(out[192:320], vk.GammaG2[:])
	copy(out[320:448], vk.DeltaG2[:])
	for i := range vk.IC {
		copy(out[vkHeaderLen+i*G1PointLen:], vk.IC[i][:])
	}
	return out
}
