package inspect

import (
	"context"
	"errors"
	"testing"

	"github.com/attestly/policytrail/internal/domain"
)

type fakeReader struct {
	data []byte
	err  error
}

func (f fakeReader) ReadBlob(ctx context.Context, repoPath, objectHash string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeDecoder struct {
	entry domain.Entry
	err   error
}

func (f fakeDecoder) Decode(data []byte) (domain.Entry, error) {
	if f.err != nil {
		return domain.Entry{}, f.err
	}
	return f.entry, nil
}

type fakeHasher struct {
	sum string
}

func (f fakeHasher) SumHex(data []byte) string {
	return f.sum
}

func TestInspectRequiresHash(t *testing.T) {
	service := NewService(fakeReader{}, fakeDecoder{}, fakeHasher{})
	_, err := service.InspectBlob(context.Background(), "repo", " ")
	if !errors.Is(err, ErrHashRequired) {
		t.Fatalf("expected ErrHashRequired, got %v", err)
	}
}

func TestInspectRejectsInvalidHash(t *testing.T) {
	service := NewService(fakeReader{}, fakeDecoder{}, fakeHasher{})
	_, err := service.InspectBlob(context.Background(), "repo", "nope")
	if !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestInspectReadsAndDecodes(t *testing.T) {
	entry := domain.Entry{EntryID: "01HINSPECT", Kind: domain.EntryKindDecision}
	service := NewService(fakeReader{data: []byte("entry")}, fakeDecoder{entry: entry}, fakeHasher{sum: "hash"})

	result, err := service.InspectBlob(context.Background(), "repo", "8ab686eafeb1f44702738c8b0f24f2567c36da6d")
	if err != nil {
		t.Fatalf("InspectBlob returned error: %v", err)
	}
	if result.ObjectHash != "8ab686eafeb1f44702738c8b0f24f2567c36da6d" {
		t.Fatalf("unexpected object hash: %s", result.ObjectHash)
	}
	if result.EntryHash != "hash" {
		t.Fatalf("unexpected entry hash: %s", result.EntryHash)
	}
	if result.Entry.EntryID != "01HINSPECT" {
		t.Fatalf("unexpected entry id: %s", result.Entry.EntryID)
	}
}

func TestInspectWrapsReadErrors(t *testing.T) {
	readErr := errors.New("blob not found")
	service := NewService(fakeReader{err: readErr}, fakeDecoder{}, fakeHasher{})

	_, err := service.InspectBlob(context.Background(), "repo", "8ab686eafeb1f44702738c8b0f24f2567c36da6d")
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}
