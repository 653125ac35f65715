package mapi

import (
	"bytes"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16 decodes little endian UTF-16 text. A dangling odd byte is
// dropped.
func DecodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeString decodes the content of a String or String8 property stream.
// String8 content is read as Windows-1252, the code page Outlook writes when
// no other is recorded. Trailing NUL characters are removed.
func DecodeString(b []byte, propType uint16) (string, error) {
	switch propType &^ MultipleFlag {
	case PtypString:
		s, err := DecodeUTF16(b)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(s, "\x00"), nil
	case PtypString8:
		out, err := charmap.Windows1252.NewDecoder().Bytes(bytes.TrimRight(b, "\x00"))
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", ErrNotString
	}
}

// ticks between 1601-01-01 and 1970-01-01, in 100ns units
const fileTimeEpochDelta = 116444736000000000

// FileTime converts a count of 100 nanosecond intervals since 1601-01-01 UTC
// to a time.Time with microsecond precision. Zero maps to the zero time.
func FileTime(ticks uint64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	micros := int64(ticks / 10)
	base := int64(fileTimeEpochDelta / 10)
	return time.UnixMicro(micros - base).UTC()
}
