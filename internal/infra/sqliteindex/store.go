package sqliteindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	indexapp "github.com/attestly/policytrail/internal/app/index"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type OpenOptions struct {
	Fast bool
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying handle for callers that need raw SQL access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetState(ctx context.Context) (indexapp.State, error) {
	var lastCommit string
	err := s.db.QueryRowContext(ctx, "SELECT last_commit FROM mirror_state WHERE id = 1").Scan(&lastCommit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return indexapp.State{}, nil
		}
		return indexapp.State{}, fmt.Errorf("read mirror state: %w", err)
	}
	return indexapp.State{LastCommit: lastCommit}, nil
}

func (s *Store) Begin(ctx context.Context) (indexapp.StoreTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mirror transaction: %w", err)
	}
	return &storeTx{tx: tx}, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM evidence_state"); err != nil {
		return fmt.Errorf("clear evidence state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE mirror_state SET last_commit = '' WHERE id = 1"); err != nil {
		return fmt.Errorf("reset mirror state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, topic, subjectID string) (indexapp.EntryRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT stream_path, topic, subject_id, entry_id, entry_hash, kind, schema_version, payload, updated_at, revoked
		FROM evidence_state WHERE topic = ? AND subject_id = ?
	`, topic, subjectID)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return indexapp.EntryRecord{}, false, nil
		}
		return indexapp.EntryRecord{}, false, fmt.Errorf("read evidence record: %w", err)
	}
	return record, true, nil
}

func (s *Store) ListTopic(ctx context.Context, topic string) ([]indexapp.EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_path, topic, subject_id, entry_id, entry_hash, kind, schema_version, payload, updated_at, revoked
		FROM evidence_state WHERE topic = ? ORDER BY subject_id
	`, topic)
	if err != nil {
		return nil, fmt.Errorf("list evidence records: %w", err)
	}
	defer rows.Close()

	var records []indexapp.EntryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence records: %w", err)
	}
	return records, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS mirror_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_commit TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evidence_state (
			stream_path TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			entry_id TEXT NOT NULL,
			entry_hash TEXT NOT NULL,
			kind TEXT NOT NULL,
			schema_version TEXT NOT NULL DEFAULT '',
			payload BLOB,
			updated_at INTEGER NOT NULL,
			revoked INTEGER NOT NULL CHECK (revoked IN (0, 1))
		)
	`); err != nil {
		return fmt.Errorf("create evidence table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS evidence_state_subject ON evidence_state (topic, subject_id)
	`); err != nil {
		return fmt.Errorf("create subject index: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO mirror_state (id, last_commit) VALUES (1, '')
	`); err != nil {
		return fmt.Errorf("seed state table: %w", err)
	}
	return nil
}

func (s *Store) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if !opts.Fast {
		return nil
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA temp_store = MEMORY"); err != nil {
		return fmt.Errorf("set temp_store: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA cache_size = -20000"); err != nil {
		return fmt.Errorf("set cache_size: %w", err)
	}
	return nil
}

type storeTx struct {
	tx *sql.Tx
}

func (s *storeTx) UpsertEntry(ctx context.Context, record indexapp.EntryRecord) error {
	revoked := 0
	if record.Revoked {
		revoked = 1
	}

	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO evidence_state (stream_path, topic, subject_id, entry_id, entry_hash, kind, schema_version, payload, updated_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stream_path) DO UPDATE SET
			topic = excluded.topic,
			subject_id = excluded.subject_id,
			entry_id = excluded.entry_id,
			entry_hash = excluded.entry_hash,
			kind = excluded.kind,
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			revoked = excluded.revoked
	`,
		record.StreamPath,
		record.Topic,
		record.SubjectID,
		record.EntryID,
		record.EntryHash,
		record.Kind,
		record.SchemaVersion,
		record.Payload,
		record.UpdatedAt,
		revoked,
	); err != nil {
		return fmt.Errorf("upsert evidence record: %w", err)
	}
	return nil
}

func (s *storeTx) SetState(ctx context.Context, state indexapp.State) error {
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO mirror_state (id, last_commit) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_commit = excluded.last_commit
	`, state.LastCommit); err != nil {
		return fmt.Errorf("update mirror state: %w", err)
	}
	return nil
}

func (s *storeTx) Commit() error {
	return s.tx.Commit()
}

func (s *storeTx) Rollback() error {
	return s.tx.Rollback()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (indexapp.EntryRecord, error) {
	var record indexapp.EntryRecord
	var revoked int
	if err := row.Scan(
		&record.StreamPath,
		&record.Topic,
		&record.SubjectID,
		&record.EntryID,
		&record.EntryHash,
		&record.Kind,
		&record.SchemaVersion,
		&record.Payload,
		&record.UpdatedAt,
		&revoked,
	); err != nil {
		return indexapp.EntryRecord{}, err
	}
	record.Revoked = revoked != 0
	return record, nil
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
