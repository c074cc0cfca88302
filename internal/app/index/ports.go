package index

import (
	"context"

	"github.com/attestly/policytrail/internal/domain"
)

type Source interface {
	HeadCommit(ctx context.Context, repoPath string) (string, error)
	ListStreamHeads(ctx context.Context, repoPath string) ([]StreamHead, error)
}

type Store interface {
	GetState(ctx context.Context) (State, error)
	Begin(ctx context.Context) (StoreTx, error)
	Reset(ctx context.Context) error
}

type StoreTx interface {
	UpsertEntry(ctx context.Context, record EntryRecord) error
	SetState(ctx context.Context, state State) error
	Commit() error
	Rollback() error
}

type Reader interface {
	GetEntry(ctx context.Context, topic, subjectID string) (EntryRecord, bool, error)
	ListTopic(ctx context.Context, topic string) ([]EntryRecord, error)
}

type Decoder interface {
	Decode(data []byte) (domain.Entry, error)
}

type Hasher interface {
	SumHex(data []byte) string
}
