package merkle

import (
	"anoma.net/arm"
	"anoma.net/arm/journal"
)

var emptyRoots = func() [Depth + 1]journal.Digest {
	var out [Depth + 1]journal.Digest
	for i := 1; i <= Depth; i++ {
		out[i] = Hash(out[i-1], out[i-1])
	}
	return out
}()

// EmptyRoot returns the root of a tree with no leaves.
func EmptyRoot() journal.Digest { return emptyRoots[Depth] }

// Tree is an append-only commitment tree of depth Depth. Unset leaves are the
// zero digest. Tree is not safe for concurrent mutation.
type Tree struct {
	leaves []journal.Digest
}

// New returns a tree holding leaves in order.
func New(leaves ...journal.Digest) *Tree {
	t := &Tree{}
	t.leaves = append(t.leaves, leaves...)
	return t
}

// Append adds leaf and returns its index.
func (t *Tree) Append(leaf journal.Digest) int {
	t.leaves = append(t.leaves, leaf)
	return len(t.leaves) - 1
}

func (t *Tree) Len() int { return len(t.leaves) }

// levels returns every populated level, leaves first.
func (t *Tree) levels() [][]journal.Digest {
	out := make([][]journal.Digest, Depth+1)
	out[0] = t.leaves
	for d := 0; d < Depth; d++ {
		cur := out[d]
		next := make([]journal.Digest, (len(cur)+1)/2)
		for j := range next {
			right := emptyRoots[d]
			if 2*j+1 < len(cur) {
				right = cur[2*j+1]
			}
			next[j] = Hash(cur[2*j], right)
		}
		out[d+1] = next
	}
	return out
}

// Root returns the current root.
func (t *Tree) Root() journal.Digest {
	if len(t.leaves) == 0 {
		return EmptyRoot()
	}
	return t.levels()[Depth][0]
}

// Path returns the inclusion path of the leaf at index.
func (t *Tree) Path(index int) (Path, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, arm.Precondition("ARM-PRE-011", "leaf index out of range")
	}
	lv := t.levels()
	p := make(Path, Depth)
	idx := index
	for d := 0; d < Depth; d++ {
		sib := idx ^ 1
		s := emptyRoots[d]
		if sib < len(lv[d]) {
			s = lv[d][sib]
		}
		p[d] = Node{Sibling: s, IsRight: idx%2 == 0}
		idx /= 2
	}
	return p, nil
}

// CompactRoot returns the root of the smallest tree holding leaves, pairing
// an odd node with the empty subtree of its level. It commits to the tags of
// one action. No leaves give the zero digest.
func CompactRoot(leaves []journal.Digest) journal.Digest {
	if len(leaves) == 0 {
		return journal.Digest{}
	}
	cur := append([]journal.Digest(nil), leaves...)
	for d := 0; len(cur) > 1; d++ {
		next := make([]journal.Digest, (len(cur)+1)/2)
		for j := range next {
			right := emptyRoots[d]
			if 2*j+1 < len(cur) {
				right = cur[2*j+1]
			}
			next[j] = Hash(cur[2*j], right)
		}
		cur = next
	}
	return cur[0]
}
