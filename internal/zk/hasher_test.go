package zk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allHashers(t *testing.T) []Hasher {
	t.Helper()
	var hashers []Hasher
	for _, name := range []string{AlgorithmPoseidon2, AlgorithmKeccak256} {
		h, err := NewHasher(name)
		require.NoError(t, err)
		hashers = append(hashers, h)
	}
	return hashers
}

func TestNewHasherUnknown(t *testing.T) {
	_, err := NewHasher("sha3")
	assert.Error(t, err)
}

func TestTwoToOneDeterministicAndNonCommutative(t *testing.T) {
	left := U64ToFieldElement(100)
	right := U64ToFieldElement(200)

	for _, h := range allHashers(t) {
		first := h.TwoToOne(left, right)
		second := h.TwoToOne(left, right)
		assert.Equal(t, first, second, h.Algorithm())

		swapped := h.TwoToOne(right, left)
		assert.NotEqual(t, first, swapped, "%s: hash must be order sensitive", h.Algorithm())
	}
}

func TestCommitBindsAllFields(t *testing.T) {
	secret := U64ToFieldElement(1)
	preimage := U64ToFieldElement(2)

	for _, h := range allHashers(t) {
		base := h.Commit(secret, preimage, 500)

		assert.NotEqual(t, base, h.Commit(U64ToFieldElement(9), preimage, 500), h.Algorithm())
		assert.NotEqual(t, base, h.Commit(secret, U64ToFieldElement(9), 500), h.Algorithm())
		assert.NotEqual(t, base, h.Commit(secret, preimage, 501), h.Algorithm())
	}
}

func TestNullifyBindsBothInputsInOrder(t *testing.T) {
	preimage := U64ToFieldElement(42)
	secret := U64ToFieldElement(43)

	for _, h := range allHashers(t) {
		base := h.Nullify(preimage, secret)
		assert.NotEqual(t, base, h.Nullify(U64ToFieldElement(44), secret), h.Algorithm())
		assert.NotEqual(t, base, h.Nullify(preimage, U64ToFieldElement(44)), h.Algorithm())

		// (preimage, secret) and (secret, preimage) are different notes
		assert.NotEqual(t, base, h.Nullify(secret, preimage), h.Algorithm())
	}
}

func TestHashDomainsDoNotCollide(t *testing.T) {
	a := U64ToFieldElement(7)
	b := U64ToFieldElement(3)

	for _, h := range allHashers(t) {
		// the same two limbs must hash differently per purpose
		nullifier := h.Nullify(a, b)
		node := h.TwoToOne(a, b)
		assert.NotEqual(t, nullifier, node, "%s: nullifier and node domains overlap", h.Algorithm())
	}
}

func TestKeccakCommitUsesFieldEncodedAmount(t *testing.T) {
	secret := U64ToFieldElement(1)
	preimage := U64ToFieldElement(2)

	// the amount limb is the full 32-byte field encoding, same as the
	// poseidon2 path, not a raw 8-byte integer
	amt := U64ToFieldElement(500)
	expected := reduceToField(ethcrypto.Keccak256(
		[]byte{byte(domainCommit)}, secret[:], preimage[:], amt[:]))
	assert.Equal(t, expected, KeccakHasher{}.Commit(secret, preimage, 500))
}

func TestHashOutputsAreFieldElements(t *testing.T) {
	inputs := [][32]byte{
		U64ToFieldElement(0),
		U64ToFieldElement(1),
		{0xff, 0xff, 0xff, 0xff}, // over the modulus once low bytes fill
	}

	for _, h := range allHashers(t) {
		for _, a := range inputs {
			for _, b := range inputs {
				out := h.TwoToOne(a, b)
				var e fr.Element
				require.NoError(t, e.SetBytesCanonical(out[:]),
					"%s output must be a canonical scalar", h.Algorithm())
			}
		}
	}
}

func TestHasherOversizedInputReduced(t *testing.T) {
	// inputs at or above the modulus reduce instead of failing
	var big [32]byte
	for i := range big {
		big[i] = 0xff
	}

	for _, h := range allHashers(t) {
		out := h.TwoToOne(big, big)
		var e fr.Element
		require.NoError(t, e.SetBytesCanonical(out[:]), h.Algorithm())
	}
}
