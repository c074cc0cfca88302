package entryv1

import (
	"bytes"
	"testing"

	"github.com/attestly/policytrail/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entry := domain.Entry{
		EntryID:       "01H123",
		Timestamp:     123,
		Topic:         "access-review",
		SubjectID:     "grant_42",
		Kind:          domain.EntryKindDecision,
		Payload:       []byte(`{"allow":true}`),
		ParentHash:    "abc",
		SchemaVersion: "v1",
	}

	data, err := Encode(entry)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if decoded.EntryID != entry.EntryID || decoded.Timestamp != entry.Timestamp || decoded.Topic != entry.Topic || decoded.SubjectID != entry.SubjectID {
		t.Fatalf("decoded entry metadata mismatch: %+v", decoded)
	}
	if decoded.Kind != entry.Kind {
		t.Fatalf("expected kind %v, got %v", entry.Kind, decoded.Kind)
	}
	if !bytes.Equal(decoded.Payload, entry.Payload) {
		t.Fatalf("payload mismatch")
	}
	if decoded.ParentHash != entry.ParentHash {
		t.Fatalf("expected parent hash %q, got %q", entry.ParentHash, decoded.ParentHash)
	}
	if decoded.SchemaVersion != entry.SchemaVersion {
		t.Fatalf("expected schema version %q, got %q", entry.SchemaVersion, decoded.SchemaVersion)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	entry := domain.Entry{
		EntryID:   "01H123",
		Timestamp: 123,
		Topic:     "access-review",
		SubjectID: "grant_42",
		Kind:      domain.EntryKindDecision,
		Payload:   []byte(`{"allow":true}`),
	}

	first, err := Encode(entry)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	second, err := Encode(entry)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("expected deterministic encoding")
	}
}

func TestEncodeRejectsInvalidEntry(t *testing.T) {
	_, err := Encode(domain.Entry{EntryID: "01H123"})
	if err == nil {
		t.Fatal("expected error for incomplete entry")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}

func TestEncodeOmitsEmptyOptionalFields(t *testing.T) {
	withParent := domain.Entry{
		EntryID:    "01H123",
		Timestamp:  123,
		Topic:      "access-review",
		SubjectID:  "grant_42",
		Kind:       domain.EntryKindRevocation,
		ParentHash: "abc",
	}
	withoutParent := withParent
	withoutParent.ParentHash = ""

	first, err := Encode(withParent)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	second, err := Encode(withoutParent)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if len(second) >= len(first) {
		t.Fatalf("expected shorter envelope without parent hash: %d vs %d", len(second), len(first))
	}
}
