package mscfb

import (
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf16"
)

const MAX_NAME_LEN int = 31

type Ordering int

const (
	OrderLess Ordering = iota
	OrderEqual
	OrderGreater
)

func ValidateName(name string) error {
	if strings.ContainsAny(name, "/\\:!") {
		return fmt.Errorf("name contains one of /\\:! characters: %v", name)
	}
	if len(utf16.Encode([]rune(name))) > MAX_NAME_LEN {
		return fmt.Errorf("name is longer than %v UTF-16 code units: %v", MAX_NAME_LEN, name)
	}

	return nil
}

// CompareNames orders names the way CFB sibling trees do: shorter UTF-16
// names first, then code unit by code unit after upper casing.
func CompareNames(nameLeft, nameRight string) Ordering {
	left := utf16.Encode([]rune(nameLeft))
	right := utf16.Encode([]rune(nameRight))

	if len(left) != len(right) {
		if len(left) < len(right) {
			return OrderLess
		}
		return OrderGreater
	}

	for i := range left {
		l := unicode.ToUpper(rune(left[i]))
		r := unicode.ToUpper(rune(right[i]))
		if l < r {
			return OrderLess
		}
		if l > r {
			return OrderGreater
		}
	}

	return OrderEqual
}

func NameChainFromPath(s string) []string {
	s = path.Clean(s)
	if s == "" {
		return []string{}
	}

	if s[0] == '/' {
		s = s[1:]
	}

	if s == "" {
		return []string{}
	}

	if strings.HasPrefix(s, "..") {
		return []string{}
	}

	return strings.Split(s, "/")
}

func PathFromNameChain(names []string) string {
	return "/" + strings.Join(names, "/")
}
