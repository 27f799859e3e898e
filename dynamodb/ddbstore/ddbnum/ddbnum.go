// Package ddbnum handles DynamoDB numbers as exact decimals.
//
// A Number is kept as a digit string and an exponent, so values that a
// float64 can not tell apart stay distinct and "-0", "0" and "0.0" are the
// same number. AppendKey encodes a number into bytes whose order is the
// numeric order, for use in sorted key-value stores.
package ddbnum

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDigits is the number of significant digits DynamoDB keeps.
const MaxDigits = 38

// Magnitudes range from 1E-130 to 9.99...E+125. In 0.ddd × 10^exp form that
// is an exponent in [-129, 126].
const (
	minExponent = -129
	maxExponent = 126
)

var ErrInvalid = errors.New("invalid number")

// Number is 0.digits × 10^exp, negated when neg is set. Zero has no digits.
type Number struct {
	neg    bool
	digits string // no leading or trailing zeros
	exp    int
}

// Parse reads a decimal literal with an optional sign, fraction and exponent.
func Parse(s string) (Number, error) {
	in := s
	var n Number
	if s != "" && (s[0] == '-' || s[0] == '+') {
		n.neg = s[0] == '-'
		s = s[1:]
	}
	mant, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Number{}, fmt.Errorf("%w: %q has a bad exponent", ErrInvalid, in)
		}
		mant, exp = s[:i], e
	}
	intPart, frac, _ := strings.Cut(mant, ".")
	digits := intPart + frac
	if digits == "" {
		return Number{}, fmt.Errorf("%w: %q has no digits", ErrInvalid, in)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Number{}, fmt.Errorf("%w: %q", ErrInvalid, in)
		}
	}

	exp += len(intPart)
	trimmed := strings.TrimLeft(digits, "0")
	exp -= len(digits) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, "0")
	if trimmed == "" {
		return Number{}, nil
	}
	if len(trimmed) > MaxDigits {
		return Number{}, fmt.Errorf("%w: %q has more than %d significant digits", ErrInvalid, in, MaxDigits)
	}
	if exp < minExponent || exp > maxExponent {
		return Number{}, fmt.Errorf("%w: %q is out of range", ErrInvalid, in)
	}
	n.digits, n.exp = trimmed, exp
	return n, nil
}

// Sign returns -1, 0 or 1.
func (n Number) Sign() int {
	switch {
	case n.digits == "":
		return 0
	case n.neg:
		return -1
	}
	return 1
}

// Compare returns -1, 0 or 1 as n is less than, equal to or greater than o.
func (n Number) Compare(o Number) int {
	if s, t := n.Sign(), o.Sign(); s != t || s == 0 {
		return cmp.Compare(s, t)
	}
	c := cmp.Compare(n.exp, o.exp)
	if c == 0 {
		c = strings.Compare(n.digits, o.digits)
	}
	if n.neg {
		return -c
	}
	return c
}

// String renders n in plain notation without exponent.
func (n Number) String() string {
	if n.digits == "" {
		return "0"
	}
	var b strings.Builder
	if n.neg {
		b.WriteByte('-')
	}
	switch {
	case n.exp <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n.exp))
		b.WriteString(n.digits)
	case n.exp >= len(n.digits):
		b.WriteString(n.digits)
		b.WriteString(strings.Repeat("0", n.exp-len(n.digits)))
	default:
		b.WriteString(n.digits[:n.exp])
		b.WriteByte('.')
		b.WriteString(n.digits[n.exp:])
	}
	return b.String()
}

// Key layout:
//
//	zero:     [0x02]
//	positive: [0x03][exp+bias uint16][digits '0'-'9'][0x00]
//	negative: [0x01][^(exp+bias) uint16][9-digit each][0xFF]
//
// The terminators sort below (positive) or above (negative) every digit, so a
// shorter digit string orders correctly against a longer one it prefixes.
const (
	markerNegative byte = 0x01
	markerZero     byte = 0x02
	markerPositive byte = 0x03

	positiveEnd byte = 0x00
	negativeEnd byte = 0xFF

	expBias = 0x8000
)

// AppendKey appends the order-preserving encoding of n to b.
func (n Number) AppendKey(b []byte) []byte {
	switch n.Sign() {
	case 0:
		return append(b, markerZero)
	case 1:
		b = append(b, markerPositive)
		b = binary.BigEndian.AppendUint16(b, uint16(n.exp+expBias))
		b = append(b, n.digits...)
		return append(b, positiveEnd)
	}
	b = append(b, markerNegative)
	b = binary.BigEndian.AppendUint16(b, ^uint16(n.exp+expBias))
	for i := 0; i < len(n.digits); i++ {
		b = append(b, '9'-n.digits[i]+'0')
	}
	return append(b, negativeEnd)
}

// DecodeKey decodes the number at the start of b and returns it with the
// number of bytes it took.
func DecodeKey(b []byte) (Number, int, error) {
	if len(b) == 0 {
		return Number{}, 0, fmt.Errorf("%w: empty key", ErrInvalid)
	}
	var neg bool
	switch b[0] {
	case markerZero:
		return Number{}, 1, nil
	case markerPositive:
	case markerNegative:
		neg = true
	default:
		return Number{}, 0, fmt.Errorf("%w: unknown key marker 0x%02x", ErrInvalid, b[0])
	}
	if len(b) < 4 {
		return Number{}, 0, fmt.Errorf("%w: truncated key", ErrInvalid)
	}
	e, end := binary.BigEndian.Uint16(b[1:3]), positiveEnd
	if neg {
		e, end = ^e, negativeEnd
	}
	i := bytes.IndexByte(b[3:], end)
	if i <= 0 {
		return Number{}, 0, fmt.Errorf("%w: key has no digits", ErrInvalid)
	}
	digits := make([]byte, i)
	for j, c := range b[3 : 3+i] {
		if neg {
			c = '9' - c + '0'
		}
		if c < '0' || c > '9' {
			return Number{}, 0, fmt.Errorf("%w: bad digit in key", ErrInvalid)
		}
		digits[j] = c
	}
	return Number{neg: neg, digits: string(digits), exp: int(e) - expBias}, 3 + i + 1, nil
}
