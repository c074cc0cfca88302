package index

type State struct {
	LastCommit string
}

type StreamHead struct {
	StreamPath string
	Bytes      []byte
}

type EntryRecord struct {
	StreamPath    string
	Topic         string
	SubjectID     string
	EntryID       string
	EntryHash     string
	Kind          string
	SchemaVersion string
	Payload       []byte
	UpdatedAt     int64
	Revoked       bool
}

type SyncOptions struct {
	Full bool
}

type SyncResult struct {
	Skipped    bool
	Reset      bool
	Streams    int
	Upserted   int
	Revoked    int
	LastCommit string
}
