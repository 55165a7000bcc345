package zk

import (
	"fmt"

	"shieldpool/internal/protocol"
)

// PublicInputCount is the number of public signals the withdrawal circuit
// exposes. The verification key must carry exactly PublicInputCount+1 IC
// points.
const PublicInputCount = 6

// WithdrawPublicInputs is the ordered public signal set bound into a
// withdrawal proof. Order is fixed by the circuit:
// [merkle_root, nullifier_hash, recipient, amount, relayer, relayer_fee].
type WithdrawPublicInputs struct {
	MerkleRoot    [FieldElementLen]byte
	NullifierHash [FieldElementLen]byte
	Recipient     [FieldElementLen]byte
	Amount        uint64
	Relayer       [FieldElementLen]byte
	RelayerFee    uint64
}

// Validate enforces the input invariants that hold before any proof math:
// non-zero root and nullifier, a positive amount, and a fee that does not
// exceed it. A fee equal to the amount is valid; the recipient then nets
// zero.
func (in *WithdrawPublicInputs) Validate() error {
	if IsZeroElement(in.MerkleRoot) {
		return fmt.Errorf("%w: merkle root is zero", protocol.ErrInvalidPublicInputs)
	}
	if IsZeroElement(in.NullifierHash) {
		return protocol.ErrInvalidNullifier
	}
	if in.Amount == 0 {
		return protocol.ErrInvalidAmount
	}
	if in.RelayerFee > in.Amount {
		return protocol.ErrRelayerFeeExceedsAmount
	}
	return nil
}

// NetAmount returns the amount paid to the recipient after the relayer fee.
func (in *WithdrawPublicInputs) NetAmount() (uint64, error) {
	if in.RelayerFee > in.Amount {
		return 0, protocol.ErrArithmeticOverflow
	}
	return in.Amount - in.RelayerFee, nil
}

// ToFieldElements flattens the inputs into the circuit's signal order as
// 32-byte big-endian scalars. The u64 values occupy the trailing 8 bytes.
func (in *WithdrawPublicInputs) ToFieldElements() [PublicInputCount][FieldElementLen]byte {
	return [PublicInputCount][FieldElementLen]byte{
		in.MerkleRoot,
		in.NullifierHash,
		in.Recipient,
		U64ToFieldElement(in.Amount),
		in.Relayer,
		U64ToFieldElement(in.RelayerFee),
	}
}
