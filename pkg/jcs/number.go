package jcs

import (
	"math"
	"strconv"
	"strings"
)

// appendNumber renders f with the ECMAScript Number-to-string algorithm
// RFC 8785 mandates: the shortest decimal that round-trips to the same
// double, plain form for 1e-6 <= |f| < 1e21 and exponent form outside
// that range. Negative zero renders as 0.
func appendNumber(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNonFiniteNumber
	}
	if f == 0 {
		return append(dst, '0'), nil
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return append(dst, trimExponent(s)...), nil
	}

	// The 'f' shortest form drops the decimal point for integral values,
	// so 100.0 and 100 both render as "100".
	return strconv.AppendFloat(dst, f, 'f', -1, 64), nil
}

// trimExponent rewrites Go's zero-padded exponent ("1e-06") into the
// unpadded ECMAScript form ("1e-6"). The sign is kept either way.
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	exp := s[i+2:]
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	return s[:i+2] + exp
}
