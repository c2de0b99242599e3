package journal

import (
	"bytes"
	"testing"

	"anoma.net/arm"
)

func TestDigestWords_RoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i)
	}
	w := d.Words()
	if len(w) != DigestWords {
		t.Fatalf("expected %d words, got %d", DigestWords, len(w))
	}
	if w[0] != 0x03020100 {
		t.Fatalf("expected little-endian first word, got %#x", w[0])
	}
	back, err := DigestFromWords(w)
	if err != nil {
		t.Fatalf("DigestFromWords: %v", err)
	}
	if back != d {
		t.Fatalf("round trip mismatch")
	}
	if _, err := DigestFromWords(w[:7]); !arm.IsKind(err, arm.KindDecode) {
		t.Fatalf("expected decode error for short words, got %v", err)
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	var d Digest
	d[31] = 0xaa

	var w Writer
	w.WriteDigest(d)
	w.WriteBool(true)
	w.WriteWords([]uint32{1, 2, 512})
	w.WriteBytes([]byte("hello"))
	w.WriteU32(7)

	r := NewReader(w.Bytes())
	if got := r.ReadDigest(); got != d {
		t.Fatalf("digest mismatch")
	}
	if !r.ReadBool() {
		t.Fatalf("expected true")
	}
	words := r.ReadWords()
	if len(words) != 3 || words[2] != 512 {
		t.Fatalf("unexpected words %v", words)
	}
	if b := r.ReadBytes(); !bytes.Equal(b, []byte("hello")) {
		t.Fatalf("unexpected bytes %q", b)
	}
	if r.ReadU32() != 7 {
		t.Fatalf("unexpected trailing word")
	}
	if err := r.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}
}

func TestReadWords_EmptyIsNil(t *testing.T) {
	var w Writer
	w.WriteWords(nil)
	w.WriteWords([]uint32{})
	r := NewReader(w.Bytes())
	for i := 0; i < 2; i++ {
		if got := r.ReadWords(); got != nil {
			t.Fatalf("vector %d: expected nil, got %#v", i, got)
		}
	}
	if err := r.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}
}

func TestReader_RejectsMalformed(t *testing.T) {
	if err := NewReader([]byte{1, 2, 3}).Done(); arm.RuleID(err) != "ARM-DEC-032" {
		t.Fatalf("expected unaligned journal error, got %v", err)
	}

	r := NewReader(make([]byte, 16))
	_ = r.ReadDigest()
	if err := r.Done(); arm.RuleID(err) != "ARM-DEC-033" {
		t.Fatalf("expected truncation error, got %v", err)
	}

	r = NewReader([]byte{2, 0, 0, 0})
	_ = r.ReadBool()
	if err := r.Err(); err == nil {
		t.Fatalf("expected non-boolean word to be rejected")
	}

	r = NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	if r.ReadWords() != nil || r.Err() == nil {
		t.Fatalf("expected oversized vector length to be rejected")
	}

	r = NewReader(make([]byte, 8))
	_ = r.ReadU32()
	if err := r.Done(); arm.RuleID(err) != "ARM-DEC-034" {
		t.Fatalf("expected trailing bytes error, got %v", err)
	}
}

func TestBytesToWords(t *testing.T) {
	w, err := BytesToWords([]byte{1, 0, 0, 0, 0, 1, 0, 0})
	if err != nil {
		t.Fatalf("BytesToWords: %v", err)
	}
	if w[0] != 1 || w[1] != 256 {
		t.Fatalf("unexpected words %v", w)
	}
	if !bytes.Equal(WordsToBytes(w), []byte{1, 0, 0, 0, 0, 1, 0, 0}) {
		t.Fatalf("round trip mismatch")
	}
	if _, err := BytesToWords([]byte{1}); err == nil {
		t.Fatalf("expected error")
	}
}
