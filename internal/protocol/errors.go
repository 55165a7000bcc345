// Package protocol defines the shielded-pool error taxonomy shared by the
// crypto core, the merkle tree, and the orchestration layer. Error codes are
// stable across versions for client compatibility.
package protocol

import "errors"

// Proof errors.
var (
	// ErrInvalidProof means verification failed: a point is off-curve, an
	// identity where none is allowed, or the pairing check returned false.
	ErrInvalidProof = errors.New("invalid proof: verification failed")

	// ErrInvalidProofFormat means the proof bytes have the wrong shape.
	ErrInvalidProofFormat = errors.New("invalid proof format: expected 256 bytes (A: 64, B: 128, C: 64)")

	// ErrInvalidPublicInputs means the public input vector does not match the
	// verification key (wrong count) or fails its own invariants.
	ErrInvalidPublicInputs = errors.New("invalid public inputs for proof verification")

	// ErrVerificationKeyNotSet means no configured verification key exists
	// for the pool.
	ErrVerificationKeyNotSet = errors.New("verification key not configured for this pool")

	// ErrVerificationKeyLocked means the key has been permanently locked and
	// can no longer be replaced.
	ErrVerificationKeyLocked = errors.New("verification key is locked")
)

// Merkle tree errors.
var (
	ErrInvalidMerkleRoot      = errors.New("merkle root not in recent history")
	ErrMerkleTreeFull         = errors.New("merkle tree is full")
	ErrInvalidTreeDepth       = errors.New("tree depth must be between 4 and 24")
	ErrInvalidRootHistorySize = errors.New("root history size below protocol minimum")
)

// Nullifier errors.
var (
	ErrNullifierAlreadySpent = errors.New("nullifier already spent")
	ErrInvalidNullifier      = errors.New("invalid nullifier: cannot be all zeros")
)

// Amount / commitment errors.
var (
	ErrInvalidAmount           = errors.New("invalid amount: must be greater than zero")
	ErrInsufficientBalance     = errors.New("insufficient vault balance")
	ErrRelayerFeeExceedsAmount = errors.New("relayer fee exceeds withdrawal amount")
	ErrInvalidCommitment       = errors.New("invalid commitment: cannot be all zeros")
	ErrDuplicateCommitment     = errors.New("commitment already exists in tree")
)

// State / authorization errors.
var (
	ErrUnauthorized       = errors.New("unauthorized: caller is not pool authority")
	ErrPoolPaused         = errors.New("pool is paused")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrPoolAlreadyExists  = errors.New("pool already exists")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrNotImplemented     = errors.New("feature not implemented in this version")
)
