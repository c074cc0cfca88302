package integrity

import (
	"context"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
)

type StreamLister interface {
	ListEvidenceStreams(ctx context.Context, repoPath string) ([]string, error)
}

type ReadStore interface {
	LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error)
	LoadStreamEntries(ctx context.Context, repoPath, streamPath string) ([]evidence.EntryBlob, error)
}

type Decoder interface {
	Decode(data []byte) (domain.Entry, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type CanonicalChecker interface {
	IsCanonical(ctx context.Context, input []byte) bool
}

type VerifyOptions struct {
	Deep bool
}

type VerifyResult struct {
	Streams int
	Valid   int
	Issues  []Issue
}

type Issue struct {
	StreamPath string
	Code       string
	Message    string
}
