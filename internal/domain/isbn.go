package domain

import (
	"errors"
	"strings"
)

// ErrInvalidISBN is returned when an ISBN fails normalization or its
// checksum.
var ErrInvalidISBN = errors.New("invalid ISBN")

// NormalizeISBN strips hyphens and spaces from an ISBN-10 or ISBN-13 and
// validates the checksum. The compact form is returned so storage and
// uniqueness checks always operate on the same representation.
func NormalizeISBN(raw string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	switch len(compact) {
	case 10:
		if !validISBN10(compact) {
			return "", ErrInvalidISBN
		}
	case 13:
		if !validISBN13(compact) {
			return "", ErrInvalidISBN
		}
	default:
		return "", ErrInvalidISBN
	}

	return strings.ToUpper(compact), nil
}

// validISBN10 checks the mod-11 checksum. The final position may be 'X',
// representing the value 10.
func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 checks the alternating 1/3-weighted mod-10 checksum.
func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
