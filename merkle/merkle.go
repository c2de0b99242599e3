// Package merkle implements the fixed-depth commitment tree and its
// inclusion paths.
package merkle

import (
	"crypto/sha256"

	"anoma.net/arm"
	"anoma.net/arm/journal"
)

// Depth is the protocol's commitment tree depth. A valid inclusion path has
// exactly Depth nodes.
const Depth = 32

// Node is one step of an inclusion path. IsRight reports whether Sibling is
// the right-hand child at that level.
type Node struct {
	Sibling journal.Digest
	IsRight bool
}

// Path is an inclusion path ordered from the leaf upward.
type Path []Node

// Hash returns the parent of left and right.
func Hash(left, right journal.Digest) journal.Digest {
	h := sha256.New()
	_, _ = h.Write(left[:])
	_, _ = h.Write(right[:])
	var d journal.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Root folds leaf up the path and returns the resulting root. It does not
// check the path length; see CheckDepth.
func (p Path) Root(leaf journal.Digest) journal.Digest {
	cur := leaf
	for _, n := range p {
		if n.IsRight {
			cur = Hash(cur, n.Sibling)
		} else {
			cur = Hash(n.Sibling, cur)
		}
	}
	return cur
}

// CheckDepth fails unless p has exactly Depth nodes.
func (p Path) CheckDepth() error {
	if len(p) != Depth {
		return arm.Precondition("ARM-PRE-010", "merkle path length does not match the tree depth")
	}
	return nil
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
