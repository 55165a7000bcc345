// Package merkle implements the pool's append-only incremental Merkle tree.
// Insertion touches one node per level using cached filled subtrees and
// precomputed zero hashes, and every new root is kept in a circular history
// so withdrawals can reference a recent root while deposits keep landing.
package merkle

import (
	"fmt"

	"shieldpool/internal/protocol"
	"shieldpool/internal/zk"
)

// Depth and history bounds.
const (
	MinDepth = 4
	MaxDepth = 24

	// MinRootHistorySize is the protocol floor. A shorter window lets a
	// deposit burst invalidate in-flight withdrawal proofs.
	MinRootHistorySize     = 30
	DefaultRootHistorySize = 200
)

// HashFn is the node compression function, (left, right) -> parent.
type HashFn func(left, right [32]byte) [32]byte

// Tree is an incremental Merkle tree of fixed depth. It is not safe for
// concurrent use; callers serialize access per pool.
type Tree struct {
	depth          int
	hash           HashFn
	zeros          [][32]byte
	filledSubtrees [][32]byte
	rootHistory    [][32]byte
	rootIndex      int
	nextLeafIndex  uint64
	currentRoot    [32]byte
}

// New builds an empty tree. zeros[0] is the all-zero leaf and each level's
// zero hash is the hash of two copies of the level below; the empty root is
// zeros[depth].
func New(depth, rootHistorySize int, hash HashFn) (*Tree, error) {
	if depth < MinDepth || depth > MaxDepth {
		return nil, protocol.ErrInvalidTreeDepth
	}
	if rootHistorySize < MinRootHistorySize {
		return nil, protocol.ErrInvalidRootHistorySize
	}

	zeros := make([][32]byte, depth+1)
	for i := 1; i <= depth; i++ {
		zeros[i] = hash(zeros[i-1], zeros[i-1])
	}

	filled := make([][32]byte, depth)
	copy(filled, zeros[:depth])

	t := &Tree{
		depth:          depth,
		hash:           hash,
		zeros:          zeros,
		filledSubtrees: filled,
		rootHistory:    make([][32]byte, rootHistorySize),
		currentRoot:    zeros[depth],
	}
	t.rootHistory[0] = t.currentRoot
	return t, nil
}

// NewWithHasher builds a tree over a pool hash strategy.
func NewWithHasher(depth, rootHistorySize int, h zk.Hasher) (*Tree, error) {
	return New(depth, rootHistorySize, h.TwoToOne)
}

// Insert appends a leaf and returns its index and the resulting root.
func (t *Tree) Insert(leaf [32]byte) (uint64, [32]byte, error) {
	if t.nextLeafIndex >= t.Capacity() {
		return 0, [32]byte{}, protocol.ErrMerkleTreeFull
	}

	current := leaf
	idx := t.nextLeafIndex
	for level := 0; level < t.depth; level++ {
		if idx%2 == 0 {
			// left child: remember it for the future right sibling,
			// pair with the zero subtree for now
			t.filledSubtrees[level] = current
			current = t.hash(current, t.zeros[level])
		} else {
			current = t.hash(t.filledSubtrees[level], current)
		}
		idx /= 2
	}

	leafIndex := t.nextLeafIndex
	t.nextLeafIndex++
	t.currentRoot = current
	t.rootIndex = (t.rootIndex + 1) % len(t.rootHistory)
	t.rootHistory[t.rootIndex] = current
	return leafIndex, current, nil
}

// Root returns the latest root.
func (t *Tree) Root() [32]byte { return t.currentRoot }

// IsKnownRoot reports whether the root is the current root or still inside
// the history window. The zero root is never known; it would otherwise
// match unwritten history slots.
func (t *Tree) IsKnownRoot(root [32]byte) bool {
	if root == ([32]byte{}) {
		return false
	}
	if root == t.currentRoot {
		return true
	}
	for i := range t.rootHistory {
		if t.rootHistory[i] == root {
			return true
		}
	}
	return false
}

// NextLeafIndex returns the index the next inserted leaf will occupy, which
// is also the number of leaves inserted so far.
func (t *Tree) NextLeafIndex() uint64 { return t.nextLeafIndex }

// Capacity returns the maximum number of leaves, 2^depth.
func (t *Tree) Capacity() uint64 { return 1 << uint(t.depth) }

// Depth returns the tree depth.
func (t *Tree) Depth() int { return t.depth }

// Snapshot is the serializable tree state, persisted per pool.
type Snapshot struct {
	Depth          int        `json:"depth"`
	FilledSubtrees [][32]byte `json:"filled_subtrees"`
	RootHistory    [][32]byte `json:"root_history"`
	RootIndex      int        `json:"root_index"`
	NextLeafIndex  uint64     `json:"next_leaf_index"`
	CurrentRoot    [32]byte   `json:"current_root"`
}

// Snapshot captures the mutable state. Zero hashes are recomputed on
// restore, not stored.
func (t *Tree) Snapshot() Snapshot {
	s := Snapshot{
		Depth:          t.depth,
		FilledSubtrees: make([][32]byte, len(t.filledSubtrees)),
		RootHistory:    make([][32]byte, len(t.rootHistory)),
		RootIndex:      t.rootIndex,
		NextLeafIndex:  t.nextLeafIndex,
		CurrentRoot:    t.currentRoot,
	}
	copy(s.FilledSubtrees, t.filledSubtrees)
	copy(s.RootHistory, t.rootHistory)
	return s
}

// Restore rebuilds a tree from a snapshot and the pool's hash function.
func Restore(s Snapshot, hash HashFn) (*Tree, error) {
	if s.Depth < MinDepth || s.Depth > MaxDepth {
		return nil, protocol.ErrInvalidTreeDepth
	}
	if len(s.FilledSubtrees) != s.Depth {
		return nil, fmt.Errorf("%w: snapshot has %d filled subtrees for depth %d",
			protocol.ErrInvalidTreeDepth, len(s.FilledSubtrees), s.Depth)
	}
	if len(s.RootHistory) < MinRootHistorySize {
		return nil, protocol.ErrInvalidRootHistorySize
	}

	zeros := make([][32]byte, s.Depth+1)
	for i := 1; i <= s.Depth; i++ {
		zeros[i] = hash(zeros[i-1], zeros[i-1])
	}

	t := &Tree{
		depth:          s.Depth,
		hash:           hash,
		zeros:          zeros,
		filledSubtrees: make([][32]byte, len(s.FilledSubtrees)),
		rootHistory:    make([][32]byte, len(s.RootHistory)),
		rootIndex:      s.RootIndex,
		nextLeafIndex:  s.NextLeafIndex,
		currentRoot:    s.CurrentRoot,
	}
	copy(t.filledSubtrees, s.FilledSubtrees)
	copy(t.rootHistory, s.RootHistory)
	return t, nil
}
