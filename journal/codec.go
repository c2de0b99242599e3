package journal

import (
	"encoding/binary"

	"anoma.net/arm"
)

// Writer appends journal words to an in-memory buffer.
type Writer struct {
	buf []byte
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU32(1)
		return
	}
	w.WriteU32(0)
}

func (w *Writer) WriteDigest(d Digest) {
	w.buf = append(w.buf, d[:]...)
}

// WriteWords writes a length-prefixed word vector.
func (w *Writer) WriteWords(v []uint32) {
	w.WriteU32(uint32(len(v)))
	for _, x := range v {
		w.WriteU32(x)
	}
}

// WriteBytes writes a length-prefixed byte string padded to a word boundary.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
	for len(w.buf)%WordSize != 0 {
		w.buf = append(w.buf, 0)
	}
}

// Bytes returns the encoded journal. The caller must not modify it while
// continuing to write.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader consumes a journal produced by Writer. The first failure sticks:
// later reads return zero values and Err reports the original error.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader over b.
func NewReader(b []byte) *Reader {
	r := &Reader{buf: b}
	if len(b)%WordSize != 0 {
		r.err = arm.NewError(arm.KindDecode, "ARM-DEC-032", "journal length is not a multiple of 4")
	}
	return r
}

func (r *Reader) fail(msg string) {
	if r.err == nil {
		r.err = arm.NewError(arm.KindDecode, "ARM-DEC-033", msg)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.fail("journal truncated")
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) ReadU32() uint32 {
	b := r.take(WordSize)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadBool reads a word that must be 0 or 1.
func (r *Reader) ReadBool() bool {
	v := r.ReadU32()
	if v > 1 {
		r.fail("journal boolean is neither 0 nor 1")
		return false
	}
	return v == 1
}

func (r *Reader) ReadDigest() Digest {
	var d Digest
	if b := r.take(DigestSize); b != nil {
		copy(d[:], b)
	}
	return d
}

// ReadWords reads a length-prefixed word vector. An empty vector reads as
// nil, matching how the bridge decodes an empty blob.
func (r *Reader) ReadWords() []uint32 {
	n := r.ReadU32()
	if r.err != nil || n == 0 {
		return nil
	}
	if uint64(n)*WordSize > uint64(len(r.buf)-r.off) {
		r.fail("journal vector length exceeds remaining input")
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.ReadU32()
	}
	return out
}

func (r *Reader) ReadBytes() []byte {
	n := r.ReadU32()
	if r.err != nil {
		return nil
	}
	padded := (uint64(n) + WordSize - 1) / WordSize * WordSize
	if padded > uint64(len(r.buf)-r.off) {
		r.fail("journal byte string exceeds remaining input")
		return nil
	}
	b := r.take(int(padded))
	if b == nil {
		return nil
	}
	for _, p := range b[n:] {
		if p != 0 {
			r.fail("journal byte string padding is not zero")
			return nil
		}
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return out
}

func (r *Reader) Err() error { return r.err }

// Done returns the first read error, or an error if input remains.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return arm.NewError(arm.KindDecode, "ARM-DEC-034", "trailing bytes after journal")
	}
	return nil
}
