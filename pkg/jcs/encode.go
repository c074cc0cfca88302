package jcs

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxDepth bounds recursion on adversarial deeply-nested input. It applies
// to both encoding and parsing.
const maxDepth = 1024

func appendValue(dst []byte, v Value, depth int) ([]byte, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}

	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		if v.boolean {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case KindNumber:
		return appendNumber(dst, v.number)
	case KindString:
		if !utf8.ValidString(v.str) {
			return nil, ErrInvalidUTF8
		}
		return appendString(dst, v.str), nil
	case KindArray:
		dst = append(dst, '[')
		for i, elem := range v.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			dst, err = appendValue(dst, elem, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindObject:
		return appendObject(dst, v.members, depth)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedType, int(v.kind))
	}
}

type sortedMember struct {
	key   string   // NFC form, as rendered
	key16 []uint16 // UTF-16 code units of key, precomputed for the sort
	value Value
}

func appendObject(dst []byte, members []Member, depth int) ([]byte, error) {
	sorted := make([]sortedMember, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if !utf8.ValidString(m.Key) {
			return nil, ErrInvalidUTF8
		}
		key := m.Key
		if !norm.NFC.IsNormalString(key) {
			key = norm.NFC.String(key)
		}
		// Two distinct source keys with one NFC form would make the
		// canonical output depend on which survives. Fail instead.
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousKey, key)
		}
		seen[key] = struct{}{}
		sorted = append(sorted, sortedMember{
			key:   key,
			key16: utf16.Encode([]rune(key)),
			value: m.Value,
		})
	}

	sort.Slice(sorted, func(i, j int) bool {
		return lessUTF16(sorted[i].key16, sorted[j].key16)
	})

	dst = append(dst, '{')
	for i, m := range sorted {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, m.key)
		dst = append(dst, ':')
		var err error
		dst, err = appendValue(dst, m.value, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

// lessUTF16 orders keys by raw UTF-16 code unit, the RFC 8785 tie-break.
// It differs from code-point order for supplementary-plane characters,
// whose surrogate halves sort below U+E000..U+FFFF.
func lessUTF16(a, b []uint16) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
