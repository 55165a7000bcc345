package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldpool/internal/protocol"
	"shieldpool/internal/zk"
)

func u64Leaf(v uint64) [32]byte {
	return zk.U64ToFieldElement(v)
}

func newTestTree(t *testing.T, depth, history int) *Tree {
	t.Helper()
	tree, err := NewWithHasher(depth, history, zk.KeccakHasher{})
	require.NoError(t, err)
	return tree
}

func TestNewDepthBounds(t *testing.T) {
	for _, depth := range []int{MinDepth, 10, MaxDepth} {
		_, err := NewWithHasher(depth, MinRootHistorySize, zk.KeccakHasher{})
		assert.NoError(t, err, "depth %d", depth)
	}
	for _, depth := range []int{0, MinDepth - 1, MaxDepth + 1} {
		_, err := NewWithHasher(depth, MinRootHistorySize, zk.KeccakHasher{})
		assert.ErrorIs(t, err, protocol.ErrInvalidTreeDepth, "depth %d", depth)
	}
}

func TestNewHistoryBounds(t *testing.T) {
	_, err := NewWithHasher(MinDepth, MinRootHistorySize-1, zk.KeccakHasher{})
	assert.ErrorIs(t, err, protocol.ErrInvalidRootHistorySize)
}

func TestEmptyTreeRoot(t *testing.T) {
	tree := newTestTree(t, MinDepth, MinRootHistorySize)

	// the empty root is the depth-fold hash of the zero leaf and is
	// already a known root
	h := zk.KeccakHasher{}
	expected := [32]byte{}
	for i := 0; i < MinDepth; i++ {
		expected = h.TwoToOne(expected, expected)
	}
	assert.Equal(t, expected, tree.Root())
	assert.True(t, tree.IsKnownRoot(expected))
	assert.Zero(t, tree.NextLeafIndex())
	assert.Equal(t, uint64(16), tree.Capacity())
}

func TestInsertDeterministic(t *testing.T) {
	a := newTestTree(t, 8, MinRootHistorySize)
	b := newTestTree(t, 8, MinRootHistorySize)

	for i := uint64(1); i <= 10; i++ {
		idxA, rootA, err := a.Insert(u64Leaf(i))
		require.NoError(t, err)
		idxB, rootB, err := b.Insert(u64Leaf(i))
		require.NoError(t, err)

		assert.Equal(t, idxA, idxB)
		assert.Equal(t, rootA, rootB)
		assert.Equal(t, i-1, idxA)
	}
}

func TestInsertOrderSensitive(t *testing.T) {
	a := newTestTree(t, 8, MinRootHistorySize)
	b := newTestTree(t, 8, MinRootHistorySize)

	_, _, err := a.Insert(u64Leaf(1))
	require.NoError(t, err)
	_, _, err = a.Insert(u64Leaf(2))
	require.NoError(t, err)

	_, _, err = b.Insert(u64Leaf(2))
	require.NoError(t, err)
	_, _, err = b.Insert(u64Leaf(1))
	require.NoError(t, err)

	assert.NotEqual(t, a.Root(), b.Root())
}

func TestTreeFull(t *testing.T) {
	tree := newTestTree(t, MinDepth, MinRootHistorySize)

	for i := uint64(0); i < tree.Capacity(); i++ {
		_, _, err := tree.Insert(u64Leaf(i + 1))
		require.NoError(t, err)
	}

	_, _, err := tree.Insert(u64Leaf(999))
	assert.ErrorIs(t, err, protocol.ErrMerkleTreeFull)
	assert.Equal(t, tree.Capacity(), tree.NextLeafIndex())
}

func TestIsKnownRootRejectsZero(t *testing.T) {
	tree := newTestTree(t, MinDepth, MinRootHistorySize)
	assert.False(t, tree.IsKnownRoot([32]byte{}))
}

func TestRootHistoryWindow(t *testing.T) {
	tree := newTestTree(t, 8, MinRootHistorySize)

	_, firstRoot, err := tree.Insert(u64Leaf(1))
	require.NoError(t, err)

	var recentRoots [][32]byte
	for i := uint64(2); i <= uint64(MinRootHistorySize); i++ {
		_, root, err := tree.Insert(u64Leaf(i))
		require.NoError(t, err)
		recentRoots = append(recentRoots, root)
	}

	// firstRoot still occupies a history slot
	assert.True(t, tree.IsKnownRoot(firstRoot))

	// one more insert cycles the buffer past it
	_, _, err = tree.Insert(u64Leaf(1000))
	require.NoError(t, err)
	assert.False(t, tree.IsKnownRoot(firstRoot))

	for _, root := range recentRoots {
		assert.True(t, tree.IsKnownRoot(root))
	}
	assert.True(t, tree.IsKnownRoot(tree.Root()))
}

func TestSnapshotRestore(t *testing.T) {
	tree := newTestTree(t, 8, MinRootHistorySize)
	for i := uint64(1); i <= 5; i++ {
		_, _, err := tree.Insert(u64Leaf(i))
		require.NoError(t, err)
	}

	restored, err := Restore(tree.Snapshot(), zk.KeccakHasher{}.TwoToOne)
	require.NoError(t, err)

	assert.Equal(t, tree.Root(), restored.Root())
	assert.Equal(t, tree.NextLeafIndex(), restored.NextLeafIndex())

	// both continue identically
	_, rootA, err := tree.Insert(u64Leaf(6))
	require.NoError(t, err)
	_, rootB, err := restored.Insert(u64Leaf(6))
	require.NoError(t, err)
	assert.Equal(t, rootA, rootB)
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	tree := newTestTree(t, 8, MinRootHistorySize)

	bad := tree.Snapshot()
	bad.Depth = MaxDepth + 1
	_, err := Restore(bad, zk.KeccakHasher{}.TwoToOne)
	assert.ErrorIs(t, err, protocol.ErrInvalidTreeDepth)

	bad = tree.Snapshot()
	bad.RootHistory = bad.RootHistory[:MinRootHistorySize-1]
	_, err = Restore(bad, zk.KeccakHasher{}.TwoToOne)
	assert.ErrorIs(t, err, protocol.ErrInvalidRootHistorySize)

	// truncated subtree cache must fail closed, not panic on insert
	bad = tree.Snapshot()
	bad.FilledSubtrees = bad.FilledSubtrees[:3]
	_, err = Restore(bad, zk.KeccakHasher{}.TwoToOne)
	assert.ErrorIs(t, err, protocol.ErrInvalidTreeDepth)
}
