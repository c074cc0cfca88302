package evidence

import (
	"context"
	"time"

	"github.com/attestly/policytrail/internal/domain"
)

type Canonicalizer interface {
	Canonicalize(ctx context.Context, input []byte) ([]byte, error)
}

type CanonicalChecker interface {
	IsCanonical(ctx context.Context, input []byte) bool
}

type Encoder interface {
	Encode(entry domain.Entry) ([]byte, error)
}

type Decoder interface {
	Decode(data []byte) (domain.Entry, error)
}

type Patcher interface {
	Apply(ctx context.Context, doc, patch []byte) ([]byte, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() (string, error)
}

type DocumentValidator interface {
	ValidateDocument(ctx context.Context, schema, doc []byte) error
}

type SchemaStore interface {
	LoadTopicSchema(ctx context.Context, repoPath, topic string) ([]byte, error)
}

type WriteStore interface {
	LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error)
	AppendEntry(ctx context.Context, write EntryWrite) (AppendResult, error)
}

type ReadStore interface {
	LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error)
	LoadHeadEntry(ctx context.Context, repoPath, streamPath string) (EntryBlob, error)
	LoadStreamEntries(ctx context.Context, repoPath, streamPath string) ([]EntryBlob, error)
}

type Appender interface {
	Append(ctx context.Context, repoPath, topic, subject string, kind domain.EntryKind, payload []byte, schemaVersion string) (AppendResult, error)
}
