package jcs

import (
	"strings"
	"testing"
)

func formatString(t *testing.T, s string) string {
	t.Helper()
	out, err := Canonicalize(String(s))
	if err != nil {
		t.Fatalf("Canonicalize(%q) returned error: %v", s, err)
	}
	return string(out)
}

func TestStringQuoteAndBackslashEscapes(t *testing.T) {
	if got := formatString(t, `say "hi"`); got != `"say \"hi\""` {
		t.Fatalf("unexpected output %s", got)
	}
	if got := formatString(t, `a\b`); got != `"a\\b"` {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestStringNamedControlEscapes(t *testing.T) {
	if got := formatString(t, "\b\f\n\r\t"); got != `"\b\f\n\r\t"` {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestStringHexControlEscapes(t *testing.T) {
	if got := formatString(t, "\x00"); got != "\"\\u0000\"" {
		t.Fatalf("unexpected output %s", got)
	}
	if got := formatString(t, "\x1f"); got != "\"\\u001f\"" {
		t.Fatalf("unexpected output %s", got)
	}
	// U+000B has no named escape.
	if got := formatString(t, "\v"); got != "\"\\u000b\"" {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestStringNonASCIIStaysLiteral(t *testing.T) {
	input := "żółć über \U0001F680"
	got := formatString(t, input)
	if strings.Contains(got, `\u`) {
		t.Fatalf("non-ASCII text was escaped: %s", got)
	}
	if got != `"`+input+`"` {
		t.Fatalf("expected literal passthrough, got %s", got)
	}
}

func TestStringDeleteIsNotEscaped(t *testing.T) {
	// Escaping stops at U+001F; DEL passes through literally.
	if got := formatString(t, "\x7f"); got != "\"\x7f\"" {
		t.Fatalf("unexpected output %q", got)
	}
}
