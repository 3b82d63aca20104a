// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package strbuf provides a capacity-bounded UTF-8 string buffer.
//
// The buffer holds the byte encoding of a valid UTF-8 string and never
// reallocates. Appends are all-or-nothing: an append that does not fit in
// the remaining capacity fails with an error marked
// container.ErrCapacityExceeded without writing a partial (and therefore
// invalid) encoding.
package strbuf

import (
	"unicode/utf8"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Buf is a bounded UTF-8 string buffer over the storage backend S. Capacity
// and length are measured in bytes. Use NewFixed or NewInline rather than
// naming the type directly.
type Buf[S any, PS storage.Storage[byte, S]] struct {
	len   uint32
	store S
}

// NewFixed returns an empty heap-backed buffer with the given byte capacity.
func NewFixed(capacity uint32) (*Buf[storage.Heap[byte], *storage.Heap[byte]], error) {
	b := &Buf[storage.Heap[byte], *storage.Heap[byte]]{}
	if err := b.init(capacity); err != nil {
		return nil, err
	}
	return b, nil
}

// NewInline returns an empty inline buffer whose byte capacity is the length
// of the array type A, which must be [N]byte with N >= 1.
func NewInline[A any]() (*Buf[storage.Inline[byte, A], *storage.Inline[byte, A]], error) {
	n, err := storage.InlineLen[byte, A]()
	if err != nil {
		return nil, err
	}
	b := &Buf[storage.Inline[byte, A], *storage.Inline[byte, A]]{}
	if err := b.init(n); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buf[S, PS]) init(capacity uint32) error {
	return PS(&b.store).Init(capacity)
}

// Len returns the current length in bytes.
func (b *Buf[S, PS]) Len() int {
	return int(b.len)
}

// RuneCount returns the current length in code points.
func (b *Buf[S, PS]) RuneCount() int {
	return utf8.RuneCount(b.Bytes())
}

// Cap returns the fixed capacity in bytes.
func (b *Buf[S, PS]) Cap() int {
	return int(PS(&b.store).Capacity())
}

// Empty returns true iff the buffer holds no bytes.
func (b *Buf[S, PS]) Empty() bool {
	return b.len == 0
}

// AppendRune appends the UTF-8 encoding of r. It fails with an error marked
// container.ErrCapacityExceeded when the full encoding does not fit, and
// rejects invalid scalar values (surrogates, out-of-range code points)
// without writing anything.
func (b *Buf[S, PS]) AppendRune(r rune) error {
	if !utf8.ValidRune(r) {
		return errors.Newf("invalid UTF-8 scalar value %#U", r)
	}
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	return b.append(enc[:n])
}

// AppendString appends s, which must be valid UTF-8. The append is
// all-or-nothing: on any failure the buffer is unchanged.
func (b *Buf[S, PS]) AppendString(s string) error {
	if !utf8.ValidString(s) {
		return errors.Newf("appended string is not valid UTF-8")
	}
	return b.append([]byte(s))
}

// AppendBytes appends p, which must be a valid UTF-8 byte run. The append is
// all-or-nothing: on any failure the buffer is unchanged.
func (b *Buf[S, PS]) AppendBytes(p []byte) error {
	if !utf8.Valid(p) {
		return errors.Newf("appended bytes are not valid UTF-8")
	}
	return b.append(p)
}

func (b *Buf[S, PS]) append(p []byte) error {
	st := PS(&b.store)
	if uint64(b.len)+uint64(len(p)) > uint64(st.Capacity()) {
		return container.CapacityExceededf(
			"append of %d bytes exceeds capacity %d (length %d)", len(p), st.Capacity(), b.len)
	}
	copy(st.Slice(b.len, b.len+uint32(len(p))), p)
	b.len += uint32(len(p))
	return nil
}

// PopRune removes and returns the last code point. ok is false when the
// buffer is empty.
func (b *Buf[S, PS]) PopRune() (r rune, ok bool) {
	if b.len == 0 {
		return 0, false
	}
	r, size := utf8.DecodeLastRune(b.Bytes())
	b.len -= uint32(size)
	return r, true
}

// At returns the byte at index i. It fails with an error marked
// container.ErrOutOfBounds when i >= Len(). Note that i is a byte index and
// may point into the middle of a multi-byte encoding.
func (b *Buf[S, PS]) At(i int) (byte, error) {
	if i < 0 || uint32(i) >= b.len {
		return 0, container.OutOfBoundsf("index %d out of range for length %d", i, b.len)
	}
	return *PS(&b.store).Slot(uint32(i)), nil
}

// Clear removes all bytes. Capacity is unchanged.
func (b *Buf[S, PS]) Clear() {
	b.len = 0
}

// Bytes returns the buffer contents as a byte slice sharing the buffer's
// storage. The slice is invalidated by any mutation of the buffer.
func (b *Buf[S, PS]) Bytes() []byte {
	return PS(&b.store).Slice(0, b.len)
}

// String returns a copy of the buffer contents.
func (b *Buf[S, PS]) String() string {
	return string(b.Bytes())
}

// Clone returns a copy of the buffer in fresh storage of matching capacity.
func (b *Buf[S, PS]) Clone() (*Buf[S, PS], error) {
	c := &Buf[S, PS]{}
	if err := c.init(PS(&b.store).Capacity()); err != nil {
		return nil, err
	}
	copy(PS(&c.store).Slice(0, b.len), b.Bytes())
	c.len = b.len
	return c, nil
}

// Release drops the contents and, for the heap variant, the backing
// allocation. The buffer must not be used afterwards.
func (b *Buf[S, PS]) Release() {
	b.len = 0
	PS(&b.store).Release()
}

// Iter returns an iterator over the buffer's code points in order. The
// buffer must not be mutated while iterating.
func (b *Buf[S, PS]) Iter() Iterator[S, PS] {
	return Iterator[S, PS]{b: b}
}

// SafeFormat implements redact.SafeFormatter. Contents are considered
// unsafe; only the shape is reported.
func (b *Buf[S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("strbuf[len=%d cap=%d]", b.len, PS(&b.store).Capacity())
}

// Iterator yields a buffer's code points in order.
type Iterator[S any, PS storage.Storage[byte, S]] struct {
	b   *Buf[S, PS]
	pos uint32
	cur rune
}

// Next advances to the next code point, returning false when the sequence is
// exhausted.
func (it *Iterator[S, PS]) Next() bool {
	if it.pos >= it.b.len {
		return false
	}
	r, size := utf8.DecodeRune(PS(&it.b.store).Slice(it.pos, it.b.len))
	it.cur = r
	it.pos += uint32(size)
	return true
}

// Cur returns the code point at the iterator's position.
func (it *Iterator[S, PS]) Cur() rune {
	return it.cur
}
