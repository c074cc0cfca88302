package evidence

import (
	"context"
	"errors"
	"testing"

	"github.com/attestly/policytrail/internal/domain"
)

type mapDecoder struct {
	entries map[string]domain.Entry
}

func (d mapDecoder) Decode(data []byte) (domain.Entry, error) {
	entry, ok := d.entries[string(data)]
	if !ok {
		return domain.Entry{}, errors.New("unknown entry bytes")
	}
	return entry, nil
}

type identityHasher struct{}

func (identityHasher) SumHex(data []byte) string {
	return string(data)
}

func TestLogOrdersChainHeadFirst(t *testing.T) {
	store := fakeReadStore{
		headHash: "e3",
		entries: []EntryBlob{
			{Bytes: []byte("e1")},
			{Bytes: []byte("e2")},
			{Bytes: []byte("e3")},
		},
	}
	decoder := mapDecoder{entries: map[string]domain.Entry{
		"e1": {EntryID: "01", Timestamp: 1, Kind: domain.EntryKindDecision},
		"e2": {EntryID: "02", Timestamp: 2, Kind: domain.EntryKindExecution, ParentHash: "e1"},
		"e3": {EntryID: "03", Timestamp: 3, Kind: domain.EntryKindAnnotation, ParentHash: "e2"},
	}}
	service := NewLogService(store, decoder, identityHasher{}, domain.StreamLayoutFlat)

	records, err := service.Log(context.Background(), "ledger", "access-review", "grant_42")
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].EntryID != "03" || records[1].EntryID != "02" || records[2].EntryID != "01" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[0].Kind != domain.EntryKindAnnotation {
		t.Fatalf("expected annotation at head, got %v", records[0].Kind)
	}
}

func TestLogMissingStreamReturnsError(t *testing.T) {
	service := NewLogService(fakeReadStore{}, fakeDecoder{}, fakeHasher{}, domain.StreamLayoutFlat)
	_, err := service.Log(context.Background(), "ledger", "access-review", "grant_42")
	if !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound, got %v", err)
	}
}

func TestLogDetectsBrokenChain(t *testing.T) {
	store := fakeReadStore{
		headHash: "e2",
		entries:  []EntryBlob{{Bytes: []byte("e2")}},
	}
	decoder := mapDecoder{entries: map[string]domain.Entry{
		"e2": {EntryID: "02", Timestamp: 2, Kind: domain.EntryKindDecision, ParentHash: "e1"},
	}}
	service := NewLogService(store, decoder, identityHasher{}, domain.StreamLayoutFlat)

	if _, err := service.Log(context.Background(), "ledger", "access-review", "grant_42"); err == nil {
		t.Fatal("expected error for missing parent entry")
	}
}
