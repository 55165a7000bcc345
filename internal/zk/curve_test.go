package zk

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldpool/internal/protocol"
)

func g1Gen() bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return g1
}

func g2Gen() bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	return g2
}

// g1Scalar returns k*G1 on the wire.
func g1Scalar(k uint64) G1Point {
	g := g1Gen()
	var out bn254.G1Affine
	out.ScalarMultiplication(&g, new(big.Int).SetUint64(k))
	return encodeG1(&out)
}

// g2Scalar returns k*G2 on the wire.
func g2Scalar(k uint64) G2Point {
	g := g2Gen()
	var out bn254.G2Affine
	out.ScalarMultiplication(&g, new(big.Int).SetUint64(k))
	return encodeG2(&out)
}

func TestG1RoundTrip(t *testing.T) {
	p := g1Scalar(1)
	a, err := decodeG1(&p)
	require.NoError(t, err)

	back := encodeG1(&a)
	assert.Equal(t, p, back)
}

func TestG1Identity(t *testing.T) {
	var p G1Point
	assert.True(t, p.IsIdentity())
	require.NoError(t, p.Validate())

	neg, err := p.Negate()
	require.NoError(t, err)
	assert.True(t, neg.IsIdentity())
}

func TestG1OffCurveRejected(t *testing.T) {
	var p G1Point
	p[31] = 1 // x = 1
	p[63] = 1 // y = 1, but 1 != 1 + 3

	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)
}

func TestG1OutOfRangeRejected(t *testing.T) {
	gen := g1Scalar(1)

	var p G1Point
	mod := fp.Modulus().Bytes()
	copy(p[32-len(mod):32], mod) // x = field modulus
	copy(p[32:64], gen[32:64])

	err := p.Validate()
	assert.ErrorIs(t, err, protocol.ErrInvalidProof)
}

func TestG1NegateCancels(t *testing.T) {
	p := g1Scalar(7)
	neg, err := p.Negate()
	require.NoError(t, err)

	sum, err := p.Add(&neg)
	require.NoError(t, err)
	assert.True(t, sum.IsIdentity())
}

func TestG1ScalarMulMatchesAdd(t *testing.T) {
	p := g1Scalar(1)

	doubled, err := p.Add(&p)
	require.NoError(t, err)

	byScalar, err := p.ScalarMul(U64ToFieldElement(2))
	require.NoError(t, err)
	assert.Equal(t, doubled, byScalar)
}

func TestG2Validate(t *testing.T) {
	q := g2Scalar(1)
	require.NoError(t, q.Validate())

	var identity G2Point
	require.NoError(t, identity.Validate())

	var bad G2Point
	mod := fp.Modulus().Bytes()
	copy(bad[32-len(mod):32], mod)
	assert.ErrorIs(t, bad.Validate(), protocol.ErrInvalidProof)
}

func TestMultiPairingCheckEmpty(t *testing.T) {
	ok, err := MultiPairingCheck(nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMultiPairingCheckCancellation(t *testing.T) {
	p := g1Scalar(1)
	q := g2Scalar(1)
	negP, err := p.Negate()
	require.NoError(t, err)

	// e(P, Q) * e(-P, Q) == 1
	ok, err := MultiPairingCheck([]PairingPair{
		{G1: p, G2: q},
		{G1: negP, G2: q},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// e(P, Q) * e(P, Q) != 1
	ok, err = MultiPairingCheck([]PairingPair{
		{G1: p, G2: q},
		{G1: p, G2: q},
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestU64ToFieldElement(t *testing.T) {
	e := U64ToFieldElement(0x0102030405060708)
	for i := 0; i < 24; i++ {
		assert.Zero(t, e[i])
	}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, e[24:32])

	assert.True(t, IsZeroElement(U64ToFieldElement(0)))
}
