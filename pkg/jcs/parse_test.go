package jcs

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRoundTripsStructure(t *testing.T) {
	value, err := Parse([]byte(`{"b": [1, true, null], "a": "x"}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out, err := AppendCanonical(nil, value)
	if err != nil {
		t.Fatalf("AppendCanonical returned error: %v", err)
	}
	expected := `{"a":"x","b":[1,true,null]}`
	if string(out) != expected {
		t.Fatalf("expected %s, got %s", expected, string(out))
	}
}

func TestParseKeepsKeysAcrossNestedMembers(t *testing.T) {
	// Member keys must be copied out of the decoder token before the
	// member value is parsed; parsing the value reads further tokens.
	value, err := Parse([]byte(`{"outer":{"x":1,"y":[{"z":"v"}]},"second":2}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out, err := AppendCanonical(nil, value)
	if err != nil {
		t.Fatalf("AppendCanonical returned error: %v", err)
	}
	expected := `{"outer":{"x":1,"y":[{"z":"v"}]},"second":2}`
	if string(out) != expected {
		t.Fatalf("expected %s, got %s", expected, string(out))
	}
}

func TestParseDecodesEscapes(t *testing.T) {
	value, err := Parse([]byte(`"é\n"`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out, err := AppendCanonical(nil, value)
	if err != nil {
		t.Fatalf("AppendCanonical returned error: %v", err)
	}
	if string(out) != "\"é\\n\"" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []string{
		``,
		`{`,
		`{"a"}`,
		`[1,]`,
		`nul`,
		`"unterminated`,
	}
	for _, input := range cases {
		_, err := Parse([]byte(input))
		if !errors.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse for %q, got %v", input, err)
		}
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {"b":2}`))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseRejectsDuplicateNames(t *testing.T) {
	_, err := Parse([]byte(`{"a":1,"a":2}`))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseDepthLimit(t *testing.T) {
	input := strings.Repeat("[", maxDepth+2) + strings.Repeat("]", maxDepth+2)
	_, err := Parse([]byte(input))
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
}

func TestCanonicalizeBytesReportsParseError(t *testing.T) {
	_, err := CanonicalizeBytes([]byte(`not json`))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
