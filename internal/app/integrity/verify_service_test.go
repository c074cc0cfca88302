package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
)

const testStreamPath = "evidence/access-review/REC_deadbeef"

type fakeLister struct {
	streams []string
	err     error
}

func (f fakeLister) ListEvidenceStreams(ctx context.Context, repoPath string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.streams, nil
}

type fakeStore struct {
	head     string
	headErr  error
	entries  []evidence.EntryBlob
	entryErr error
}

func (f fakeStore) LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	return f.head, nil
}

func (f fakeStore) LoadStreamEntries(ctx context.Context, repoPath, streamPath string) ([]evidence.EntryBlob, error) {
	if f.entryErr != nil {
		return nil, f.entryErr
	}
	return f.entries, nil
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

type mapHasher struct {
	hashes map[string]string
}

func (h mapHasher) SumHex(data []byte) string {
	return h.hashes[string(data)]
}

type fakeChecker struct {
	canonical bool
}

func (f fakeChecker) IsCanonical(ctx context.Context, input []byte) bool {
	return f.canonical
}

func testEntry(id string, ts int64, parentHash string) domain.Entry {
	return domain.Entry{
		EntryID:    id,
		Timestamp:  ts,
		Topic:      "access-review",
		SubjectID:  "user-1",
		Kind:       domain.EntryKindDecision,
		Payload:    []byte(`{"approved":true}`),
		ParentHash: parentHash,
	}
}

func TestVerifyReportsMissingHead(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{head: ""},
		mapDecoder{},
		mapHasher{},
		nil,
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(result.Issues))
	}
	if result.Issues[0].Code != IssueHeadMissing {
		t.Fatalf("expected %s, got %s", IssueHeadMissing, result.Issues[0].Code)
	}
}

func TestVerifyAcceptsValidChain(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h2",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e1")},
				{Bytes: []byte("e2")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{
			"e1": testEntry("t1", 1, ""),
			"e2": testEntry("t2", 2, "h1"),
		}},
		mapHasher{hashes: map[string]string{
			"e1": "h1",
			"e2": "h2",
		}},
		nil,
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if result.Valid != 1 || len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", result)
	}
}

func TestVerifyDetectsOrphanEntries(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h2",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e1")},
				{Bytes: []byte("e2")},
				{Bytes: []byte("e3")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{
			"e1": testEntry("t1", 1, ""),
			"e2": testEntry("t2", 2, "h1"),
			"e3": testEntry("t3", 3, ""),
		}},
		mapHasher{hashes: map[string]string{
			"e1": "h1",
			"e2": "h2",
			"e3": "h3",
		}},
		nil,
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if result.Valid != 0 || len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", result)
	}
	if result.Issues[0].Code != IssueOrphanEntry {
		t.Fatalf("expected %s, got %s", IssueOrphanEntry, result.Issues[0].Code)
	}
}

func TestVerifyDetectsBrokenChain(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h2",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e2")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{
			"e2": testEntry("t2", 2, "h1"),
		}},
		mapHasher{hashes: map[string]string{
			"e2": "h2",
		}},
		nil,
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", result)
	}
	if result.Issues[0].Code != IssueChain {
		t.Fatalf("expected %s, got %s", IssueChain, result.Issues[0].Code)
	}
}

func TestVerifyReportsInvalidEntry(t *testing.T) {
	bad := testEntry("t1", 1, "")
	bad.SubjectID = ""

	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h1",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e1")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{"e1": bad}},
		mapHasher{hashes: map[string]string{"e1": "h1"}},
		nil,
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", result)
	}
	if result.Issues[0].Code != IssueEntryInvalid {
		t.Fatalf("expected %s, got %s", IssueEntryInvalid, result.Issues[0].Code)
	}
}

func TestVerifyDeepReportsNonCanonicalPayload(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h1",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e1")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{
			"e1": testEntry("t1", 1, ""),
		}},
		mapHasher{hashes: map[string]string{"e1": "h1"}},
		fakeChecker{canonical: false},
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{Deep: true})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if result.Valid != 0 || len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", result)
	}
	if result.Issues[0].Code != IssueNonCanonical {
		t.Fatalf("expected %s, got %s", IssueNonCanonical, result.Issues[0].Code)
	}
}

func TestVerifyShallowSkipsCanonicalCheck(t *testing.T) {
	service := NewVerifyService(
		fakeLister{streams: []string{testStreamPath}},
		fakeStore{
			head: "h1",
			entries: []evidence.EntryBlob{
				{Bytes: []byte("e1")},
			},
		},
		mapDecoder{entries: map[string]domain.Entry{
			"e1": testEntry("t1", 1, ""),
		}},
		mapHasher{hashes: map[string]string{"e1": "h1"}},
		fakeChecker{canonical: false},
	)

	result, err := service.Verify(context.Background(), "repo", VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if result.Valid != 1 || len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", result)
	}
}
