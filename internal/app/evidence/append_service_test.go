package evidence

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/attestly/policytrail/internal/domain"
)

type fakeStore struct {
	parentHash string
	headErr    error
	appendErr  error
	result     AppendResult
	received   EntryWrite
}

func (f *fakeStore) LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	return f.parentHash, nil
}

func (f *fakeStore) AppendEntry(ctx context.Context, write EntryWrite) (AppendResult, error) {
	f.received = write
	if f.appendErr != nil {
		return AppendResult{}, f.appendErr
	}
	return f.result, nil
}

type fakeCanonicalizer struct {
	out []byte
	err error
}

func (f fakeCanonicalizer) Canonicalize(ctx context.Context, input []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeEncoder struct {
	out   []byte
	err   error
	entry domain.Entry
}

func (f *fakeEncoder) Encode(entry domain.Entry) ([]byte, error) {
	f.entry = entry
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeHasher struct {
	sum string
}

func (f fakeHasher) SumHex(data []byte) string {
	return f.sum
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakeIDGen struct {
	id  string
	err error
}

func (f fakeIDGen) NewID() (string, error) {
	return f.id, f.err
}

type fakeSchemaStore struct {
	schema []byte
	err    error
}

func (f fakeSchemaStore) LoadTopicSchema(ctx context.Context, repoPath, topic string) ([]byte, error) {
	return f.schema, f.err
}

type fakeValidator struct {
	err error
}

func (f fakeValidator) ValidateDocument(ctx context.Context, schema, doc []byte) error {
	return f.err
}

func newAppendService(store *fakeStore) *AppendService {
	return NewAppendService(store, nil, nil, fakeCanonicalizer{out: []byte(`{"a":1}`)}, &fakeEncoder{out: []byte("encoded")}, fakeHasher{sum: "hash"}, fakeClock{now: time.Unix(1, 2).UTC()}, fakeIDGen{id: "01H123"}, domain.StreamLayoutFlat)
}

func TestAppendRequiresTopic(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", " ", "subj", domain.EntryKindDecision, []byte(`{}`), "")
	if !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
}

func TestAppendRejectsInvalidTopic(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", "topic/..", "subj", domain.EntryKindDecision, []byte(`{}`), "")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestAppendRequiresSubject(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", "access-review", " ", domain.EntryKindDecision, []byte(`{}`), "")
	if !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("expected ErrSubjectRequired, got %v", err)
	}
}

func TestAppendRequiresPayload(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", "access-review", "subj", domain.EntryKindDecision, nil, "")
	if !errors.Is(err, ErrPayloadRequired) {
		t.Fatalf("expected ErrPayloadRequired, got %v", err)
	}
}

func TestAppendRevocationRejectsPayload(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", "access-review", "subj", domain.EntryKindRevocation, []byte(`{}`), "")
	if !errors.Is(err, domain.ErrUnexpectedPayload) {
		t.Fatalf("expected ErrUnexpectedPayload, got %v", err)
	}
}

func TestAppendRejectsInvalidKind(t *testing.T) {
	service := newAppendService(&fakeStore{})
	_, err := service.Append(context.Background(), "ledger", "access-review", "subj", domain.EntryKindUnknown, []byte(`{}`), "")
	if !errors.Is(err, domain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestAppendBuildsEntryAndWrites(t *testing.T) {
	store := &fakeStore{parentHash: "parent"}
	canonical := []byte(`{"a":1}`)
	encoder := &fakeEncoder{out: []byte("encoded")}
	service := NewAppendService(store, nil, nil, fakeCanonicalizer{out: canonical}, encoder, fakeHasher{sum: "hash"}, fakeClock{now: time.Unix(1, 2).UTC()}, fakeIDGen{id: "01H123"}, domain.StreamLayoutFlat)

	result, err := service.Append(context.Background(), "ledger", "access-review", "grant_42", domain.EntryKindDecision, []byte(`{"b":2}`), "v1")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if store.received.Entry.ParentHash != "parent" {
		t.Fatalf("expected parent hash %q, got %q", "parent", store.received.Entry.ParentHash)
	}
	if !bytes.Equal(store.received.Entry.Payload, canonical) {
		t.Fatalf("expected canonical payload")
	}
	if store.received.Entry.EntryID != "01H123" {
		t.Fatalf("expected entry id %q, got %q", "01H123", store.received.Entry.EntryID)
	}
	if store.received.Entry.SchemaVersion != "v1" {
		t.Fatalf("expected schema version %q, got %q", "v1", store.received.Entry.SchemaVersion)
	}

	if store.received.EntryHash != "hash" {
		t.Fatalf("expected entry hash %q, got %q", "hash", store.received.EntryHash)
	}
	if store.received.StateEntry.ParentHash != "" {
		t.Fatalf("expected state entry without parent hash, got %q", store.received.StateEntry.ParentHash)
	}
	if result.EntryHash != "hash" {
		t.Fatalf("expected result hash %q, got %q", "hash", result.EntryHash)
	}
	if result.EntryID != "01H123" {
		t.Fatalf("expected result entry id %q, got %q", "01H123", result.EntryID)
	}
}

func TestAppendValidatesAgainstTopicSchema(t *testing.T) {
	store := &fakeStore{}
	violation := errors.New("missing field")
	service := NewAppendService(store, fakeSchemaStore{schema: []byte(`{"type":"object"}`)}, fakeValidator{err: violation}, fakeCanonicalizer{out: []byte(`{"a":1}`)}, &fakeEncoder{out: []byte("encoded")}, fakeHasher{sum: "hash"}, fakeClock{now: time.Unix(1, 2).UTC()}, fakeIDGen{id: "01H123"}, domain.StreamLayoutFlat)

	_, err := service.Append(context.Background(), "ledger", "access-review", "grant_42", domain.EntryKindDecision, []byte(`{"a":1}`), "")
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestAppendSkipsSchemaCheckWithoutSchema(t *testing.T) {
	store := &fakeStore{}
	service := NewAppendService(store, fakeSchemaStore{}, fakeValidator{err: errors.New("should not run")}, fakeCanonicalizer{out: []byte(`{"a":1}`)}, &fakeEncoder{out: []byte("encoded")}, fakeHasher{sum: "hash"}, fakeClock{now: time.Unix(1, 2).UTC()}, fakeIDGen{id: "01H123"}, domain.StreamLayoutFlat)

	if _, err := service.Append(context.Background(), "ledger", "access-review", "grant_42", domain.EntryKindDecision, []byte(`{"a":1}`), ""); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
}
