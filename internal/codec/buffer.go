// Package codec packs fixed-width structures into byte slices without
// padding. All multi-byte fields are little-endian on disk.
package codec

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
)

// Writer appends fixed-width little-endian fields to a pre-sized buffer.
// Errors are sticky: after an overflow every Put becomes a no-op and Err
// reports the failure.
type Writer struct {
	buf []byte
	off int
	err error
}

// NewWriter wraps buf for encoding starting at offset 0.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) ensure(n int) bool {
	if w.err != nil {
		return false
	}
	if w.off+n > len(w.buf) {
		w.err = errors.Wrapf(status.ErrBadLength,
			"encoding overruns buffer: need %d bytes at offset %d of %d",
			n, w.off, len(w.buf))
		return false
	}
	return true
}

func (w *Writer) PutUint8(v uint8) {
	if w.ensure(1) {
		w.buf[w.off] = v
		w.off++
	}
}

func (w *Writer) PutUint16(v uint16) {
	if w.ensure(2) {
		binary.LittleEndian.PutUint16(w.buf[w.off:], v)
		w.off += 2
	}
}

func (w *Writer) PutUint32(v uint32) {
	if w.ensure(4) {
		binary.LittleEndian.PutUint32(w.buf[w.off:], v)
		w.off += 4
	}
}

func (w *Writer) PutUint64(v uint64) {
	if w.ensure(8) {
		binary.LittleEndian.PutUint64(w.buf[w.off:], v)
		w.off += 8
	}
}

func (w *Writer) PutBytes(v []byte) {
	if w.ensure(len(v)) {
		copy(w.buf[w.off:], v)
		w.off += len(v)
	}
}

// Offset returns the number of bytes encoded so far.
func (w *Writer) Offset() int {
	return w.off
}

// Err returns the first overflow encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Reader consumes fixed-width little-endian fields from a buffer. Errors are
// sticky and underruns return zero values.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader wraps buf for decoding starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.buf) {
		r.err = errors.Wrapf(status.ErrBadLength,
			"decoding overruns buffer: need %d bytes at offset %d of %d",
			n, r.off, len(r.buf))
		return false
	}
	return true
}

func (r *Reader) Uint8() uint8 {
	if !r.ensure(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *Reader) Uint16() uint16 {
	if !r.ensure(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *Reader) Uint32() uint32 {
	if !r.ensure(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *Reader) Uint64() uint64 {
	if !r.ensure(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *Reader) Bytes(n int) []byte {
	if !r.ensure(n) {
		return nil
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v
}

// Offset returns the number of bytes decoded so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of bytes not yet consumed.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Err returns the first underrun encountered, if any.
func (r *Reader) Err() error {
	return r.err
}
