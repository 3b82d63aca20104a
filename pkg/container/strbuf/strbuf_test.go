// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package strbuf

import (
	"testing"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestAppendAndString(t *testing.T) {
	b, err := NewFixed(16)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("héllo"))
	require.NoError(t, b.AppendRune('!'))
	require.Equal(t, "héllo!", b.String())
	require.Equal(t, 7, b.Len()) // é is two bytes
	require.Equal(t, 6, b.RuneCount())
}

func TestAppendRuneDoesNotSplitEncoding(t *testing.T) {
	b, err := NewFixed(4)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("abc"))

	// One byte is free, but the encoding of 'é' needs two; nothing may be
	// written.
	err = b.AppendRune('é')
	require.True(t, errors.Is(err, container.ErrCapacityExceeded))
	require.Equal(t, "abc", b.String())
	require.Equal(t, 3, b.Len())

	require.NoError(t, b.AppendRune('d'))
	require.Equal(t, "abcd", b.String())
}

func TestAppendStringAllOrNothing(t *testing.T) {
	b, err := NewFixed(4)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("ab"))

	err = b.AppendString("cde")
	require.True(t, errors.Is(err, container.ErrCapacityExceeded))
	require.Equal(t, "ab", b.String())
}

func TestAppendRejectsInvalidUTF8(t *testing.T) {
	b, err := NewFixed(8)
	require.NoError(t, err)

	require.Error(t, b.AppendBytes([]byte{0xff, 0xfe}))
	require.Error(t, b.AppendString("ok\xc3")) // truncated encoding
	require.Error(t, b.AppendRune(0xD800))     // surrogate
	require.Equal(t, 0, b.Len())
}

func TestPopRune(t *testing.T) {
	b, err := NewFixed(8)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("aé"))

	r, ok := b.PopRune()
	require.True(t, ok)
	require.Equal(t, 'é', r)
	require.Equal(t, "a", b.String())

	r, ok = b.PopRune()
	require.True(t, ok)
	require.Equal(t, 'a', r)

	_, ok = b.PopRune()
	require.False(t, ok)
}

func TestInlineBuf(t *testing.T) {
	b, err := NewInline[[4]byte]()
	require.NoError(t, err)
	require.Equal(t, 4, b.Cap())
	require.NoError(t, b.AppendString("héz"))
	require.True(t, errors.Is(b.AppendRune('x'), container.ErrCapacityExceeded))
	require.Equal(t, "héz", b.String())
}

func TestBufIterAndAt(t *testing.T) {
	b, err := NewFixed(16)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("añe"))

	var runes []rune
	for it := b.Iter(); it.Next(); {
		runes = append(runes, it.Cur())
	}
	require.Equal(t, []rune{'a', 'ñ', 'e'}, runes)

	c, err := b.At(0)
	require.NoError(t, err)
	require.Equal(t, byte('a'), c)
	_, err = b.At(b.Len())
	require.True(t, errors.Is(err, container.ErrOutOfBounds))
}

func TestBufClearAndClone(t *testing.T) {
	b, err := NewFixed(8)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("abc"))

	c, err := b.Clone()
	require.NoError(t, err)

	b.Clear()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 8, b.Cap())
	require.Equal(t, "abc", c.String())
}
