package gitvault

import (
	"bytes"
	"context"
	"path"
	"reflect"
	"sort"
	"testing"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/entryv1"
	"github.com/attestly/policytrail/internal/infra/hash"
)

func TestAppendEntryAndReadBack(t *testing.T) {
	ctx := context.Background()
	repoDir := t.TempDir()
	store := NewStore()
	if err := store.Init(ctx, repoDir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	entry := domain.Entry{
		EntryID:   "01HINT",
		Timestamp: 1,
		Topic:     "access-review",
		SubjectID: "grant_1",
		Kind:      domain.EntryKindDecision,
		Payload:   []byte(`{"allow":true}`),
	}
	streamPath, entryHash, entryBytes := writeEntry(t, ctx, store, repoDir, entry)

	headHash, err := store.LoadStreamHead(ctx, repoDir, streamPath)
	if err != nil {
		t.Fatalf("LoadStreamHead returned error: %v", err)
	}
	if headHash != entryHash {
		t.Fatalf("expected head hash %s, got %s", entryHash, headHash)
	}

	headEntry, err := store.LoadHeadEntry(ctx, repoDir, streamPath)
	if err != nil {
		t.Fatalf("LoadHeadEntry returned error: %v", err)
	}
	if !bytes.Equal(headEntry.Bytes, entryBytes) {
		t.Fatalf("unexpected head entry bytes")
	}

	entries, err := store.LoadStreamEntries(ctx, repoDir, streamPath)
	if err != nil {
		t.Fatalf("LoadStreamEntries returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !bytes.Equal(entries[0].Bytes, entryBytes) {
		t.Fatalf("unexpected entry bytes")
	}
}

func TestListEvidenceStreams(t *testing.T) {
	ctx := context.Background()
	repoDir := t.TempDir()
	store := NewStore()
	if err := store.Init(ctx, repoDir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	writeEntry(t, ctx, store, repoDir, domain.Entry{
		EntryID:   "01HINT1",
		Timestamp: 1,
		Topic:     "access-review",
		SubjectID: "grant_1",
		Kind:      domain.EntryKindDecision,
		Payload:   []byte(`{"allow":true}`),
	})
	writeEntry(t, ctx, store, repoDir, domain.Entry{
		EntryID:   "01HINT2",
		Timestamp: 2,
		Topic:     "access-review",
		SubjectID: "grant_2",
		Kind:      domain.EntryKindDecision,
		Payload:   []byte(`{"allow":false}`),
	})
	writeEntry(t, ctx, store, repoDir, domain.Entry{
		EntryID:   "01HINT3",
		Timestamp: 3,
		Topic:     "deploy-approval",
		SubjectID: "rel_1",
		Kind:      domain.EntryKindExecution,
		Payload:   []byte(`{"done":true}`),
	})

	streams, err := store.ListEvidenceStreams(ctx, repoDir)
	if err != nil {
		t.Fatalf("ListEvidenceStreams returned error: %v", err)
	}

	expected := []string{
		domain.StreamPath(domain.StreamLayoutSharded, "access-review", "grant_1"),
		domain.StreamPath(domain.StreamLayoutSharded, "access-review", "grant_2"),
		domain.StreamPath(domain.StreamLayoutSharded, "deploy-approval", "rel_1"),
	}
	sort.Strings(expected)

	if !reflect.DeepEqual(streams, expected) {
		t.Fatalf("expected streams %v, got %v", expected, streams)
	}
}

func TestReadBlob(t *testing.T) {
	ctx := context.Background()
	repoDir := t.TempDir()
	store := NewStore()
	if err := store.Init(ctx, repoDir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	entry := domain.Entry{
		EntryID:   "01HINTBLOB",
		Timestamp: 1,
		Topic:     "access-review",
		SubjectID: "grant_1",
		Kind:      domain.EntryKindDecision,
		Payload:   []byte(`{"allow":true}`),
	}
	streamPath, _, entryBytes := writeEntry(t, ctx, store, repoDir, entry)

	tree, err := loadMainTree(repoDir)
	if err != nil {
		t.Fatalf("loadMainTree returned error: %v", err)
	}

	entryPath := path.Join(normalizeTreePath(streamPath), domain.EntriesDirName, entryFileName(entry))
	treeEntry, err := tree.FindEntry(entryPath)
	if err != nil {
		t.Fatalf("FindEntry returned error: %v", err)
	}

	data, err := store.ReadBlob(ctx, repoDir, treeEntry.Hash.String())
	if err != nil {
		t.Fatalf("ReadBlob returned error: %v", err)
	}
	if !bytes.Equal(data, entryBytes) {
		t.Fatalf("unexpected blob bytes")
	}
}

func writeEntry(t *testing.T, ctx context.Context, store *Store, repoPath string, entry domain.Entry) (string, string, []byte) {
	t.Helper()

	encoder := entryv1.Encoder{}
	entryBytes, err := encoder.Encode(entry)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	entryHash := hash.SHA256{}.SumHex(entryBytes)
	streamPath := domain.StreamPath(domain.StreamLayoutSharded, entry.Topic, entry.SubjectID)

	_, err = store.AppendEntry(ctx, evidence.EntryWrite{
		RepoPath:   repoPath,
		StreamPath: streamPath,
		EntryBytes: entryBytes,
		EntryHash:  entryHash,
		Entry:      entry,
	})
	if err != nil {
		t.Fatalf("AppendEntry returned error: %v", err)
	}

	return streamPath, entryHash, entryBytes
}
