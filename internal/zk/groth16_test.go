package zk

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldpool/internal/protocol"
)

func TestProofCodec(t *testing.T) {
	raw := make([]byte, ProofLen)
	for i := range raw {
		raw[i] = byte(i)
	}

	proof, err := ProofFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, proof.Bytes())

	_, err = ProofFromBytes(raw[:255])
	assert.ErrorIs(t, err, protocol.ErrInvalidProofFormat)
	_, err = ProofFromBytes(append(raw, 0))
	assert.ErrorIs(t, err, protocol.ErrInvalidProofFormat)
	_, err = ProofFromBytes(nil)
	assert.ErrorIs(t, err, protocol.ErrInvalidProofFormat)
}

func TestVerificationKeyCodec(t *testing.T) {
	vk := testVK()
	raw := vk.Bytes()

	parsed, err := VerificationKeyFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, vk, parsed)

	_, err = VerificationKeyFromBytes(raw[:len(raw)-1])
	assert.ErrorIs(t, err, protocol.ErrInvalidProofFormat)

	// header plus a single IC point is below the minimum
	_, err = VerificationKeyFromBytes(raw[:vkHeaderLen+G1PointLen])
	assert.ErrorIs(t, err, protocol.ErrInvalidProofFormat)
}

func TestVerificationKeyValidate(t *testing.T) {
	vk := testVK()
	require.NoError(t, vk.Validate(PublicInputCount))

	// IC length must match input count + 1
	short := testVK()
	short.IC = short.IC[:3]
	assert.Error(t, short.Validate(PublicInputCount))

	identityAlpha := testVK()
	identityAlpha.AlphaG1 = G1Point{}
	assert.ErrorIs(t, identityAlpha.Validate(PublicInputCount), protocol.ErrInvalidProof)

	identityIC := testVK()
	identityIC.IC[3] = G1Point{}
	assert.ErrorIs(t, identityIC.Validate(PublicInputCount), protocol.ErrInvalidProof)

	offCurve := testVK()
	offCurve.IC[1][31] = 1
	offCurve.IC[1][63] = 1
	assert.ErrorIs(t, offCurve.Validate(PublicInputCount), protocol.ErrInvalidProof)

	// identity constant term is tolerated by Validate but flagged
	identityConstant := testVK()
	identityConstant.IC[0] = G1Point{}
	require.NoError(t, identityConstant.Validate(PublicInputCount))
	assert.True(t, identityConstant.IsSuspicious())
	assert.False(t, vk.IsSuspicious())
}

// Test key parameters: alpha = 3*G1, beta = 4*G2, gamma = delta = G2,
// IC[i] = (i+1)*G1.
const (
	tkAlpha uint64 = 3
	tkBeta  uint64 = 4
)

func testVK() *VerificationKey {
	vk := &VerificationKey{
		AlphaG1: g1Scalar(tkAlpha),
		BetaG2:  g2Scalar(tkBeta),
		GammaG2: g2Scalar(1),
		DeltaG2: g2Scalar(1),
		IC:      make([]G1Point, PublicInputCount+1),
	}
	for i := range vk.IC {
		vk.IC[i] = g1Scalar(uint64(i + 1))
	}
	return vk
}

// provedInputs builds a proof satisfying the pairing equation for testVK:
// with gamma = delta = G2 and known discrete logs everywhere, pick
// C = cc*G1 and B = bp*G2, then A = ((alpha*beta + vkx + cc) / bp) * G1.
func proveForTestVK(t *testing.T, inputs *WithdrawPublicInputs) *Proof {
	t.Helper()

	var vkx fr.Element
	vkx.SetUint64(1) // IC[0] scalar
	elems := inputs.ToFieldElements()
	for i := 0; i < PublicInputCount; i++ {
		var s, c, term fr.Element
		s.SetBytes(elems[i][:])
		c.SetUint64(uint64(i + 2)) // IC[i+1] scalar
		term.Mul(&s, &c)
		vkx.Add(&vkx, &term)
	}

	const cc, bp = 5, 7
	var total, tmp fr.Element
	total.SetUint64(tkAlpha * tkBeta)
	total.Add(&total, &vkx)
	tmp.SetUint64(cc)
	total.Add(&total, &tmp)

	var bpInv fr.Element
	bpInv.SetUint64(bp)
	bpInv.Inverse(&bpInv)

	var x fr.Element
	x.Mul(&total, &bpInv)

	g := g1Gen()
	var a bn254.G1Affine
	a.ScalarMultiplication(&g, x.BigInt(new(big.Int)))

	return &Proof{
		A: encodeG1(&a),
		B: g2Scalar(bp),
		C: g1Scalar(cc),
	}
}

func TestVerifyWithdrawProofValid(t *testing.T) {
	inputs := validInputs()
	proof := proveForTestVK(t, &inputs)

	require.NoError(t, VerifyWithdrawProof(testVK(), proof, &inputs))
}

func TestVerifyWithdrawProofRejectsTamperedInputs(t *testing.T) {
	inputs := validInputs()
	proof := proveForTestVK(t, &inputs)

	tampered := inputs
	tampered.Amount = inputs.Amount + 1
	err := VerifyWithdrawProof(testVK(), proof, &tampered)
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)

	otherRecipient := inputs
	otherRecipient.Recipient = U64ToFieldElement(999)
	err = VerifyWithdrawProof(testVK(), proof, &otherRecipient)
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)
}

func TestVerifyWithdrawProofRejectsTamperedProof(t *testing.T) {
	inputs := validInputs()
	proof := proveForTestVK(t, &inputs)
	proof.C = g1Scalar(6)

	err := VerifyWithdrawProof(testVK(), proof, &inputs)
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)
}

func TestVerifyWithdrawProofAllZeroProof(t *testing.T) {
	// the canonical forged proof: every point at infinity fails before
	// any pairing math runs
	inputs := validInputs()
	err := VerifyWithdrawProof(testVK(), &Proof{}, &inputs)
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)
}

func TestVerifyWithdrawProofInvalidInputsFirst(t *testing.T) {
	good := validInputs()
	proof := proveForTestVK(t, &good)

	bad := good
	bad.Amount = 0
	bad.RelayerFee = 0
	err := VerifyWithdrawProof(testVK(), proof, &bad)
	assert.ErrorIs(t, err, protocol.ErrInvalidAmount)
}
