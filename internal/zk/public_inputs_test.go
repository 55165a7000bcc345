package zk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldpool/internal/protocol"
)

func validInputs() WithdrawPublicInputs {
	return WithdrawPublicInputs{
		MerkleRoot:    U64ToFieldElement(11),
		NullifierHash: U64ToFieldElement(22),
		Recipient:     U64ToFieldElement(33),
		Amount:        100,
		Relayer:       U64ToFieldElement(44),
		RelayerFee:    5,
	}
}

func TestPublicInputsValidate(t *testing.T) {
	in := validInputs()
	require.NoError(t, in.Validate())

	zeroRoot := validInputs()
	zeroRoot.MerkleRoot = [32]byte{}
	assert.ErrorIs(t, zeroRoot.Validate(), protocol.ErrInvalidPublicInputs)

	zeroNullifier := validInputs()
	zeroNullifier.NullifierHash = [32]byte{}
	assert.ErrorIs(t, zeroNullifier.Validate(), protocol.ErrInvalidNullifier)

	zeroAmount := validInputs()
	zeroAmount.Amount = 0
	zeroAmount.RelayerFee = 0
	assert.ErrorIs(t, zeroAmount.Validate(), protocol.ErrInvalidAmount)

	feeTooHigh := validInputs()
	feeTooHigh.RelayerFee = feeTooHigh.Amount + 1
	assert.ErrorIs(t, feeTooHigh.Validate(), protocol.ErrRelayerFeeExceedsAmount)

	// fee equal to amount is a valid relayer-takes-all withdrawal
	feeAll := validInputs()
	feeAll.RelayerFee = feeAll.Amount
	require.NoError(t, feeAll.Validate())
}

func TestPublicInputsNetAmount(t *testing.T) {
	in := validInputs()
	net, err := in.NetAmount()
	require.NoError(t, err)
	assert.Equal(t, uint64(95), net)

	in.RelayerFee = in.Amount
	net, err = in.NetAmount()
	require.NoError(t, err)
	assert.Zero(t, net)

	in.RelayerFee = in.Amount + 1
	_, err = in.NetAmount()
	assert.ErrorIs(t, err, protocol.ErrArithmeticOverflow)
}

func TestPublicInputsFieldElementOrder(t *testing.T) {
	in := validInputs()
	elems := in.ToFieldElements()

	assert.Equal(t, in.MerkleRoot, elems[0])
	assert.Equal(t, in.NullifierHash, elems[1])
	assert.Equal(t, in.Recipient, elems[2])
	assert.Equal(t, U64ToFieldElement(100), elems[3])
	assert.Equal(t, in.Relayer, elems[4])
	assert.Equal(t, U64ToFieldElement(5), elems[5])
}
