package mapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTime(t *testing.T) {
	assert.True(t, FileTime(0).IsZero())
	assert.True(t, time.Unix(0, 0).Equal(FileTime(fileTimeEpochDelta)))
	assert.True(t, time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC).Equal(FileTime(1)))

	// 100ns ticks below a microsecond are dropped
	assert.True(t, time.Unix(1, 1000).Equal(FileTime(fileTimeEpochDelta+10_000_019)))
	assert.Equal(t, time.UTC, FileTime(fileTimeEpochDelta).Location())
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		typ  uint16
		want string
	}{
		{"utf16", []byte{'H', 0, 'i', 0}, PtypString, "Hi"},
		{"utf16 nul terminated", []byte{'H', 0, 'i', 0, 0, 0}, PtypString, "Hi"},
		{"utf16 odd length", []byte{'H', 0, 'i'}, PtypString, "H"},
		{"utf16 non ascii", []byte{0xE9, 0x00, 0xAC, 0x20}, PtypString, "é€"},
		{"string8", []byte{'c', 'a', 'f', 0xE9, 0}, PtypString8, "café"},
		{"string8 euro", []byte{0x80}, PtypString8, "€"},
		{"multiple string", []byte{'a', 0}, MultipleFlag | PtypString, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.in, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeString([]byte{1, 2}, PtypBinary)
	assert.ErrorIs(t, err, ErrNotString)
}
