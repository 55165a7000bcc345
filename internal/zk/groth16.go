package zk

import (
	"fmt"

	"shieldpool/internal/protocol"
)

// ProofLen is the serialized Groth16 proof size: A (64) || B (128) || C (64).
const ProofLen = G1PointLen + G2PointLen + G1PointLen

// Proof is a Groth16 proof over BN254.
type Proof struct {
	A G1Point
	B G2Point
	C G1Point
}

// ProofFromBytes parses the fixed 256-byte wire encoding. Only the shape is
// checked here; point validation happens during verification.
func ProofFromBytes(raw []byte) (*Proof, error) {
	if len(raw) != ProofLen {
		return nil, fmt.Errorf("%w: got %d bytes", protocol.ErrInvalidProofFormat, len(raw))
	}
	var p Proof
	copy(p.A[:], raw[0:64])
	copy(p.B[:], raw[64:192])
	copy(p.C[:], raw[192:256])
	return &p, nil
}

// Bytes serializes the proof back to its wire encoding.
func (p *Proof) Bytes() []byte {
	out := make([]byte, ProofLen)
	copy(out[0:64], p.A[:])
	copy(out[64:192], p.B[:])
	copy(out[192:256], p.C[:])
	return out
}

// VerificationKey is the circuit-specific Groth16 verification key.
type VerificationKey struct {
	AlphaG1 G1Point
	BetaG2  G2Point
	GammaG2 G2Point
	DeltaG2 G2Point
	IC      []G1Point
}

// Validate checks the key's structure against the expected public input
// count: len(IC) must be publicInputCount+1 (and at least 2), alpha and
// every IC point after the constant term must be non-identity curve points,
// and the G2 components must be in field range. IC[0] may be the identity
// for degenerate circuits; callers that care should check IsSuspicious.
func (vk *VerificationKey) Validate(publicInputCount int) error {
	if len(vk.IC) < 2 {
		return fmt.Errorf("%w: IC vector has %d points, need at least 2", protocol.ErrInvalidPublicInputs, len(vk.IC))
	}
	if len(vk.IC) != publicInputCount+1 {
		return fmt.Errorf("%w: IC vector has %d points, expected %d", protocol.ErrInvalidPublicInputs, len(vk.IC), publicInputCount+1)
	}

	if vk.AlphaG1.IsIdentity() {
		return fmt.Errorf("%w: alpha is the identity", protocol.ErrInvalidProof)
	}
	if err := vk.AlphaG1.Validate(); err != nil {
		return err
	}
	for _, g2 := range []*G2Point{&vk.BetaG2, &vk.GammaG2, &vk.DeltaG2} {
		if g2.IsIdentity() {
			return fmt.Errorf("%w: G2 key element is the identity", protocol.ErrInvalidProof)
		}
		if err := g2.Validate(); err != nil {
			return err
		}
	}
	for i := range vk.IC {
		if i > 0 && vk.IC[i].IsIdentity() {
			return fmt.Errorf("%w: IC[%d] is the identity", protocol.ErrInvalidProof, i)
		}
		if err := vk.IC[i].Validate(); err != nil {
			return fmt.Errorf("IC[%d]: %w", i, err)
		}
	}
	return nil
}

// IsSuspicious reports structural red flags that Validate tolerates, such as
// an identity constant term.
func (vk *VerificationKey) IsSuspicious() bool {
	return len(vk.IC) > 0 && vk.IC[0].IsIdentity()
}

// computeVkX folds the public inputs into the key's IC basis:
// vk_x = IC[0] + sum(input_i * IC[i+1]).
func computeVkX(vk *VerificationKey, inputs [PublicInputCount][FieldElementLen]byte) (G1Point, error) {
	acc := vk.IC[0]
	for i := 0; i < PublicInputCount; i++ {
		term, err := vk.IC[i+1].ScalarMul(inputs[i])
		if err != nil {
			return G1Point{}, err
		}
		acc, err = acc.Add(&term)
		if err != nil {
			return G1Point{}, err
		}
	}
	return acc, nil
}

// VerifyWithdrawProof runs the full fail-closed Groth16 verification chain:
// input invariants, key structure, proof point validation, then the pairing
// equation e(-A,B) * e(alpha,beta) * e(vk_x,gamma) * e(C,delta) == 1.
// Every rejection path returns a typed error; nil means the proof is valid.
func VerifyWithdrawProof(vk *VerificationKey, proof *Proof, inputs *WithdrawPublicInputs) error {
	if verificationBypassed {
		return nil
	}

	if err := inputs.Validate(); err != nil {
		return err
	}
	if err := vk.Validate(PublicInputCount); err != nil {
		return err
	}

	if proof.A.IsIdentity() || proof.C.IsIdentity() {
		return fmt.Errorf("%w: proof G1 point is the identity", protocol.ErrInvalidProof)
	}
	if proof.B.IsIdentity() {
		return fmt.Errorf("%w: proof B is the identity", protocol.ErrInvalidProof)
	}
	if err := proof.A.Validate(); err != nil {
		return err
	}
	if err := proof.C.Validate(); err != nil {
		return err
	}
	if err := proof.B.Validate(); err != nil {
		return err
	}

	vkX, err := computeVkX(vk, inputs.ToFieldElements())
	if err != nil {
		return err
	}

	negA, err := proof.A.Negate()
	if err != nil {
		return err
	}

	ok, err := MultiPairingCheck([]PairingPair{
		{G1: negA, G2: proof.B},
		{G1: vk.AlphaG1, G2: vk.BetaG2},
		{G1: vkX, G2: vk.GammaG2},
		{G1: proof.C, G2: vk.DeltaG2},
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: pairing check failed", protocol.ErrInvalidProof)
	}
	return nil
}
