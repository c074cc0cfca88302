package evidence

import "github.com/attestly/policytrail/internal/domain"

type AppendResult struct {
	CommitHash string
	EntryHash  string
	EntryID    string
}

type GetResult struct {
	Payload   []byte
	EntryHash string
	EntryID   string
	Kind      domain.EntryKind
}

type EntryWrite struct {
	RepoPath        string
	StreamPath      string
	EntryBytes      []byte
	EntryHash       string
	Entry           domain.Entry
	StatePath       string
	StateEntryBytes []byte
	StateEntryHash  string
	StateEntry      domain.Entry
}

type EntryBlob struct {
	Path  string
	Bytes []byte
}

type LogRecord struct {
	EntryID    string
	EntryHash  string
	ParentHash string
	Timestamp  int64
	Kind       domain.EntryKind
}
