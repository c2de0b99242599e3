package merkle

import (
	"testing"

	"anoma.net/arm"
	"anoma.net/arm/journal"
)

func leaf(b byte) journal.Digest {
	var d journal.Digest
	d[0] = b
	return d
}

func TestTree_PathsFoldToRoot(t *testing.T) {
	tree := New(leaf(1), leaf(2), leaf(3))
	tree.Append(leaf(4))
	tree.Append(leaf(5))
	root := tree.Root()
	for i := 0; i < tree.Len(); i++ {
		p, err := tree.Path(i)
		if err != nil {
			t.Fatalf("Path(%d): %v", i, err)
		}
		if err := p.CheckDepth(); err != nil {
			t.Fatalf("CheckDepth: %v", err)
		}
		if got := p.Root(leaf(byte(i + 1))); got != root {
			t.Fatalf("leaf %d: path root mismatch", i)
		}
		if got := p.Root(leaf(99)); got == root {
			t.Fatalf("leaf %d: wrong leaf folded to root", i)
		}
	}
}

func TestTree_EmptyAndSingle(t *testing.T) {
	if New().Root() != EmptyRoot() {
		t.Fatalf("empty tree root mismatch")
	}
	tree := New(leaf(7))
	if tree.Root() == EmptyRoot() {
		t.Fatalf("expected root to change after append")
	}
	if _, err := tree.Path(1); !arm.IsKind(err, arm.KindPrecondition) {
		t.Fatalf("expected out-of-range error, got %v", err)
	}
}

func TestPath_IsRightOrientation(t *testing.T) {
	a, b := leaf(1), leaf(2)
	p := Path{{Sibling: b, IsRight: true}}
	if p.Root(a) != Hash(a, b) {
		t.Fatalf("IsRight sibling must be hashed on the right")
	}
	p = Path{{Sibling: a, IsRight: false}}
	if p.Root(b) != Hash(a, b) {
		t.Fatalf("left sibling must be hashed on the left")
	}
}

func TestPath_CheckDepth(t *testing.T) {
	if err := make(Path, Depth-1).CheckDepth(); arm.RuleID(err) != "ARM-PRE-010" {
		t.Fatalf("expected ARM-PRE-010, got %v", err)
	}
}

func TestCompactRoot(t *testing.T) {
	if CompactRoot(nil) != (journal.Digest{}) {
		t.Fatalf("expected zero root for no leaves")
	}
	if CompactRoot([]journal.Digest{leaf(1)}) != leaf(1) {
		t.Fatalf("single leaf is its own root")
	}
	want := Hash(Hash(leaf(1), leaf(2)), Hash(leaf(3), journal.Digest{}))
	if got := CompactRoot([]journal.Digest{leaf(1), leaf(2), leaf(3)}); got != want {
		t.Fatalf("unexpected root")
	}
	if CompactRoot([]journal.Digest{leaf(2), leaf(1)}) == CompactRoot([]journal.Digest{leaf(1), leaf(2)}) {
		t.Fatalf("leaf order must matter")
	}
}
