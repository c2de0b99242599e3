package proving

import (
	"errors"
	"testing"
	"time"
)

type countingVerifier struct {
	calls  int
	result bool
	err    error
}

func (v *countingVerifier) Verify(proof, instance []byte, vk VerifyingKey) (bool, error) {
	v.calls++
	return v.result, v.err
}

func TestCachingVerifier_HitAndExpiry(t *testing.T) {
	next := &countingVerifier{result: true}
	c := NewCachingVerifier(next, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	vk := VerifyingKey{1, 2}
	for i := 0; i < 3; i++ {
		ok, err := c.Verify([]byte("p"), []byte("i"), vk)
		if err != nil || !ok {
			t.Fatalf("Verify: ok=%v err=%v", ok, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one backend call, got %d", next.calls)
	}

	if _, err := c.Verify([]byte("p"), []byte("i2"), vk); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("expected a miss for a different instance, got %d calls", next.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Verify([]byte("p"), []byte("i"), vk); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if next.calls != 3 {
		t.Fatalf("expected expired entry to be re-verified, got %d calls", next.calls)
	}
}

func TestCachingVerifier_ErrorsNotCached(t *testing.T) {
	next := &countingVerifier{err: errors.New("backend down")}
	c := NewCachingVerifier(next, 0)
	for i := 0; i < 2; i++ {
		if _, err := c.Verify(nil, nil, nil); err == nil {
			t.Fatalf("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("expected errors to bypass the cache, got %d calls", next.calls)
	}
}

func TestCachingVerifier_Sweep(t *testing.T) {
	next := &countingVerifier{result: false}
	c := NewCachingVerifier(next, time.Second)
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }
	_, _ = c.Verify([]byte("a"), nil, nil)
	_, _ = c.Verify([]byte("b"), nil, nil)
	if n := c.Sweep(); n != 0 {
		t.Fatalf("expected nothing to sweep, removed %d", n)
	}
	now = now.Add(time.Hour)
	if n := c.Sweep(); n != 2 {
		t.Fatalf("expected 2 expired entries, removed %d", n)
	}
}

func TestVerifyingKey_Equal(t *testing.T) {
	a := VerifyingKey{1, 2, 3}
	if !a.Equal(a.Clone()) {
		t.Fatalf("expected clone to be equal")
	}
	if a.Equal(VerifyingKey{3, 2, 1}) {
		t.Fatalf("word order must matter")
	}
	if a.ID() == (VerifyingKey{3, 2, 1}).ID() {
		t.Fatalf("word order must change the id")
	}
}
