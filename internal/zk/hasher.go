package zk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Hasher is the commitment and nullifier hashing strategy of a pool. All
// outputs are 32-byte big-endian BN254 scalar-field elements; inputs that
// exceed the field modulus are reduced into it. Every method is
// deterministic, and TwoToOne must not be commutative.
type Hasher interface {
	// Algorithm names the hash family, stable for config and storage.
	Algorithm() string

	// TwoToOne compresses two child hashes into a parent node hash.
	TwoToOne(left, right [FieldElementLen]byte) [FieldElementLen]byte

	// Commit derives a note commitment from its opening,
	// (secret, nullifier_preimage, amount).
	Commit(secret, nullifierPreimage [FieldElementLen]byte, amount uint64) [FieldElementLen]byte

	// Nullify derives the spend nullifier, (nullifier_preimage, secret).
	// The argument order is part of the contract; it is what the
	// withdrawal circuit computes.
	Nullify(nullifierPreimage, secret [FieldElementLen]byte) [FieldElementLen]byte
}

// Hash algorithm names accepted in pool configuration.
const (
	AlgorithmPoseidon2 = "poseidon2"
	AlgorithmKeccak256 = "keccak256"
)

// NewHasher returns the Hasher for a configured algorithm name.
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case AlgorithmPoseidon2:
		return Poseidon2Hasher{}, nil
	case AlgorithmKeccak256:
		return KeccakHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// Initial chaining values giving each hash purpose its own domain. A node
// hash can never collide with a commitment or nullifier over the same limbs.
const (
	domainNode      uint64 = 0
	domainCommit    uint64 = 1
	domainNullifier uint64 = 2
)

var perm2 = poseidon2.NewPermutation(2, 6, 50)

// Poseidon2Hasher is the default pool hash: the width-2 Poseidon2
// permutation (t=2, rF=6, rP=50) over the BN254 scalar field, absorbed in a
// Merkle-Damgard chain seeded with a per-domain tag. Matches the parameters
// the circuit-side gadget uses.
type Poseidon2Hasher struct{}

func (Poseidon2Hasher) Algorithm() string { return AlgorithmPoseidon2 }

// chainPoseidon2 absorbs limbs one at a time: the state is (cv, m), and the
// next chaining value is S1 + m after the permutation.
func chainPoseidon2(domain uint64, limbs ...[FieldElementLen]byte) [FieldElementLen]byte {
	var cv fr.Element
	cv.SetUint64(domain)

	for i := range limbs {
		var m fr.Element
		m.SetBytes(limbs[i][:])

		st := []fr.Element{cv, m}
		if err := perm2.Permutation(st); err != nil {
			// only reachable with a state width other than t
			panic(fmt.Sprintf("poseidon2 permutation: %v", err))
		}
		cv.Add(&st[1], &m)
	}
	return cv.Bytes()
}

func (Poseidon2Hasher) TwoToOne(left, right [FieldElementLen]byte) [FieldElementLen]byte {
	return chainPoseidon2(domainNode, left, right)
}

func (Poseidon2Hasher) Commit(secret, nullifierPreimage [FieldElementLen]byte, amount uint64) [FieldElementLen]byte {
	return chainPoseidon2(domainCommit, secret, nullifierPreimage, U64ToFieldElement(amount))
}

func (Poseidon2Hasher) Nullify(nullifierPreimage, secret [FieldElementLen]byte) [FieldElementLen]byte {
	return chainPoseidon2(domainNullifier, nullifierPreimage, secret)
}

// KeccakHasher is the interim hash family the protocol launched with before
// the algebraic hash landed. Kept for pools created under it and for tests.
// Domain separation uses a leading tag byte; outputs are reduced into the
// scalar field so they remain valid public inputs.
type KeccakHasher struct{}

func (KeccakHasher) Algorithm() string { return AlgorithmKeccak256 }

func reduceToField(digest []byte) [FieldElementLen]byte {
	var e fr.Element
	e.SetBytes(digest)
	return e.Bytes()
}

func (KeccakHasher) TwoToOne(left, right [FieldElementLen]byte) [FieldElementLen]byte {
	return reduceToField(ethcrypto.Keccak256([]byte{byte(domainNode)}, left[:], right[:]))
}

func (KeccakHasher) Commit(secret, nullifierPreimage [FieldElementLen]byte, amount uint64) [FieldElementLen]byte {
	// the amount limb uses the same 32-byte field encoding as the
	// poseidon2 path
	amt := U64ToFieldElement(amount)
	return reduceToField(ethcrypto.Keccak256([]byte{byte(domainCommit)}, secret[:], nullifierPreimage[:], amt[:]))
}

func (KeccakHasher) Nullify(nullifierPreimage, secret [FieldElementLen]byte) [FieldElementLen]byte {
	return reduceToField(ethcrypto.Keccak256([]byte{byte(domainNullifier)}, nullifierPreimage[:], secret[:]))
}
