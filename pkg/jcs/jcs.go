// Package jcs produces the canonical byte form of JSON values as defined
// by RFC 8785 (JSON Canonicalization Scheme).
//
// Two semantically identical values always canonicalize to bit-identical
// bytes: object members are sorted by the UTF-16 code units of their
// NFC-normalized names, numbers use the ECMAScript shortest round-trip
// form, strings carry only the escapes the scheme mandates, and no
// whitespace is emitted. The output is the preimage ledger entries are
// hashed over, so any deviation breaks cross-platform verification.
//
// Every function is pure and safe for concurrent use.
package jcs

import "bytes"

// Canonicalize renders v as canonical UTF-8 bytes. It accepts anything
// FromAny accepts and fails with ErrUnsupportedType otherwise.
func Canonicalize(v any) ([]byte, error) {
	value, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return AppendCanonical(nil, value)
}

// CanonicalizeString is Canonicalize without the final byte conversion.
func CanonicalizeString(v any) (string, error) {
	out, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CanonicalizeBytes parses data as JSON text and re-renders it in
// canonical form. It is the entry point for normalizing third-party JSON
// before hashing or storage.
func CanonicalizeBytes(data []byte) ([]byte, error) {
	value, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return AppendCanonical(nil, value)
}

// IsCanonical reports whether data is already byte-for-byte canonical.
// Malformed input and canonicalization failures both report false; this
// function never returns an error.
func IsCanonical(data []byte) bool {
	value, err := Parse(data)
	if err != nil {
		return false
	}
	canonical, err := AppendCanonical(nil, value)
	if err != nil {
		return false
	}
	return bytes.Equal(canonical, data)
}

// AppendCanonical appends the canonical form of value to dst and returns
// the extended buffer. On error dst is returned unchanged in content but
// callers must not rely on its capacity.
func AppendCanonical(dst []byte, value Value) ([]byte, error) {
	return appendValue(dst, value, 0)
}
