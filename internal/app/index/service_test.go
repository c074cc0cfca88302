package index

import (
	"context"
	"errors"
	"testing"

	"github.com/attestly/policytrail/internal/domain"
)

type fakeSource struct {
	head    string
	headErr error
	streams []StreamHead
	err     error
}

func (f fakeSource) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	return f.head, f.headErr
}

func (f fakeSource) ListStreamHeads(ctx context.Context, repoPath string) ([]StreamHead, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.streams, nil
}

type fakeStoreTx struct {
	records    []EntryRecord
	state      State
	stateSet   bool
	committed  bool
	rolledBack bool
	upsertErr  error
}

func (f *fakeStoreTx) UpsertEntry(ctx context.Context, record EntryRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStoreTx) SetState(ctx context.Context, state State) error {
	f.state = state
	f.stateSet = true
	return nil
}

func (f *fakeStoreTx) Commit() error {
	f.committed = true
	return nil
}

func (f *fakeStoreTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeIndexStore struct {
	state    State
	stateErr error
	tx       *fakeStoreTx
	resets   int
}

func (f *fakeIndexStore) GetState(ctx context.Context) (State, error) {
	return f.state, f.stateErr
}

func (f *fakeIndexStore) Begin(ctx context.Context) (StoreTx, error) {
	if f.tx == nil {
		f.tx = &fakeStoreTx{}
	}
	return f.tx, nil
}

func (f *fakeIndexStore) Reset(ctx context.Context) error {
	f.resets++
	return nil
}

type mapDecoder struct {
	entries map[string]domain.Entry
	err     error
}

func (d mapDecoder) Decode(data []byte) (domain.Entry, error) {
	if d.err != nil {
		return domain.Entry{}, d.err
	}
	entry, ok := d.entries[string(data)]
	if !ok {
		return domain.Entry{}, errors.New("missing entry")
	}
	return entry, nil
}

type identityHasher struct{}

func (identityHasher) SumHex(data []byte) string {
	return "h_" + string(data)
}

type fakeReader struct {
	record  EntryRecord
	found   bool
	records []EntryRecord
	err     error
}

func (f fakeReader) GetEntry(ctx context.Context, topic, subjectID string) (EntryRecord, bool, error) {
	return f.record, f.found, f.err
}

func (f fakeReader) ListTopic(ctx context.Context, topic string) ([]EntryRecord, error) {
	return f.records, f.err
}

func testEntry(id, subject string, kind domain.EntryKind) domain.Entry {
	entry := domain.Entry{
		EntryID:   id,
		Timestamp: 42,
		Topic:     "access-review",
		SubjectID: subject,
		Kind:      kind,
	}
	if kind != domain.EntryKindRevocation {
		entry.Payload = []byte(`{"approved":true}`)
	}
	return entry
}

func TestSyncSkipsWhenHeadUnchanged(t *testing.T) {
	store := &fakeIndexStore{state: State{LastCommit: "c1"}}
	service := NewSyncService(fakeSource{head: "c1"}, store, mapDecoder{}, identityHasher{})

	result, err := service.Sync(context.Background(), "repo", SyncOptions{})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if !result.Skipped {
		t.Fatalf("expected skipped sync, got %+v", result)
	}
	if store.resets != 0 {
		t.Fatalf("expected no reset, got %d", store.resets)
	}
}

func TestSyncFailsOnEmptyLedger(t *testing.T) {
	service := NewSyncService(fakeSource{head: ""}, &fakeIndexStore{}, mapDecoder{}, identityHasher{})

	_, err := service.Sync(context.Background(), "repo", SyncOptions{})
	if !errors.Is(err, ErrEmptyLedger) {
		t.Fatalf("expected ErrEmptyLedger, got %v", err)
	}
}

func TestSyncUpsertsStreamHeads(t *testing.T) {
	store := &fakeIndexStore{}
	source := fakeSource{
		head: "c2",
		streams: []StreamHead{
			{StreamPath: "evidence/access-review/REC_a", Bytes: []byte("e1")},
			{StreamPath: "evidence/access-review/REC_b", Bytes: []byte("e2")},
		},
	}
	decoder := mapDecoder{entries: map[string]domain.Entry{
		"e1": testEntry("t1", "user-1", domain.EntryKindDecision),
		"e2": testEntry("t2", "user-2", domain.EntryKindRevocation),
	}}

	service := NewSyncService(source, store, decoder, identityHasher{})

	result, err := service.Sync(context.Background(), "repo", SyncOptions{})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Upserted != 2 || result.Revoked != 1 || result.Streams != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !store.tx.committed || !store.tx.stateSet {
		t.Fatalf("expected committed transaction with state, got %+v", store.tx)
	}
	if store.tx.state.LastCommit != "c2" {
		t.Fatalf("expected last commit c2, got %s", store.tx.state.LastCommit)
	}
	if len(store.tx.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(store.tx.records))
	}
	first := store.tx.records[0]
	if first.EntryHash != "h_e1" || first.SubjectID != "user-1" || first.Revoked {
		t.Fatalf("unexpected record: %+v", first)
	}
	second := store.tx.records[1]
	if !second.Revoked || second.Kind != "revocation" {
		t.Fatalf("expected revoked record, got %+v", second)
	}
}

func TestSyncFullResetsStore(t *testing.T) {
	store := &fakeIndexStore{state: State{LastCommit: "c1"}}
	service := NewSyncService(fakeSource{head: "c1"}, store, mapDecoder{}, identityHasher{})

	result, err := service.Sync(context.Background(), "repo", SyncOptions{Full: true})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if !result.Reset || store.resets != 1 {
		t.Fatalf("expected reset, got %+v", result)
	}
}

func TestSyncRollsBackOnDecodeFailure(t *testing.T) {
	store := &fakeIndexStore{}
	source := fakeSource{
		head:    "c2",
		streams: []StreamHead{{StreamPath: "evidence/access-review/REC_a", Bytes: []byte("e1")}},
	}
	decodeErr := errors.New("decode failed")

	service := NewSyncService(source, store, mapDecoder{err: decodeErr}, identityHasher{})

	_, err := service.Sync(context.Background(), "repo", SyncOptions{})
	if !errors.Is(err, decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if !store.tx.rolledBack {
		t.Fatalf("expected rollback, got %+v", store.tx)
	}
}

func TestLookupRequiresTopicAndSubject(t *testing.T) {
	service := NewQueryService(fakeReader{})

	if _, err := service.Lookup(context.Background(), " ", "user-1"); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
	if _, err := service.Lookup(context.Background(), "access-review", " "); !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("expected ErrSubjectRequired, got %v", err)
	}
}

func TestLookupReportsMissingRecord(t *testing.T) {
	service := NewQueryService(fakeReader{found: false})

	_, err := service.Lookup(context.Background(), "access-review", "user-1")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLookupReturnsRecord(t *testing.T) {
	record := EntryRecord{Topic: "access-review", SubjectID: "user-1", EntryID: "t1"}
	service := NewQueryService(fakeReader{record: record, found: true})

	got, err := service.Lookup(context.Background(), "access-review", "user-1")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got.EntryID != "t1" {
		t.Fatalf("unexpected record: %+v", got)
	}
}
