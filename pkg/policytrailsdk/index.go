package policytrailsdk

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	indexapp "github.com/attestly/policytrail/internal/app/index"
	"github.com/attestly/policytrail/internal/infra/entryv1"
	"github.com/attestly/policytrail/internal/infra/sqliteindex"
)

type IndexSyncResult struct {
	Skipped    bool
	Reset      bool
	Streams    int
	Upserted   int
	Revoked    int
	LastCommit string
}

type IndexedEntry struct {
	Topic             string
	SubjectID         string
	Payload           json.RawMessage
	EntryHash         string
	EntryID           string
	Kind              string
	SchemaVersion     string
	UpdatedAtUnixNano int64
	Revoked           bool
}

// OpenIndex opens the SQLite mirror database.
func (c *Client) OpenIndex(ctx context.Context) error {
	c.mu.Lock()
	if c.indexStore != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	store, err := sqliteindex.OpenWithOptions(c.cfg.Index.DBPath, sqliteindex.OpenOptions{Fast: c.cfg.Index.Fast})
	if err != nil {
		return err
	}
	if err := store.DB().PingContext(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}

	c.mu.Lock()
	c.indexStore = store
	c.db = store.DB()
	c.mu.Unlock()
	return nil
}

// DB exposes the SQLite database handle.
func (c *Client) DB() (*sql.DB, error) {
	return c.indexDB()
}

// Query runs a SQL query against the SQLite mirror.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := c.indexDB()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// GetIndexed reads a subject's current entry from the SQLite mirror.
func (c *Client) GetIndexed(ctx context.Context, topic, subjectID string) (IndexedEntry, error) {
	store, err := c.ensureIndexStore()
	if err != nil {
		return IndexedEntry{}, err
	}
	record, found, err := store.GetEntry(ctx, topic, subjectID)
	if err != nil {
		return IndexedEntry{}, err
	}
	if !found {
		return IndexedEntry{}, ErrNotFound
	}
	return toIndexedEntry(record), nil
}

// GetIndexedInto reads an entry from the SQLite mirror and unmarshals its payload.
func (c *Client) GetIndexedInto(ctx context.Context, topic, subjectID string, target any) (IndexedEntry, error) {
	entry, err := c.GetIndexed(ctx, topic, subjectID)
	if err != nil {
		return IndexedEntry{}, err
	}
	if len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, target); err != nil {
			return IndexedEntry{}, err
		}
	}
	return entry, nil
}

// ListIndexed returns all current entries for a topic from the SQLite mirror.
func (c *Client) ListIndexed(ctx context.Context, topic string) ([]IndexedEntry, error) {
	store, err := c.ensureIndexStore()
	if err != nil {
		return nil, err
	}
	records, err := store.ListTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make([]IndexedEntry, 0, len(records))
	for _, record := range records {
		out = append(out, toIndexedEntry(record))
	}
	return out, nil
}

// SyncIndex runs a single mirror sync.
func (c *Client) SyncIndex(ctx context.Context) (IndexSyncResult, error) {
	service, err := c.indexSyncService()
	if err != nil {
		return IndexSyncResult{}, err
	}
	result, err := service.Sync(ctx, c.cfg.RepoPath, indexapp.SyncOptions{})
	if err != nil {
		return IndexSyncResult{}, err
	}
	return toSyncResult(result), nil
}

// StartIndexWatch starts a polling loop to keep the mirror in sync.
func (c *Client) StartIndexWatch(ctx context.Context) error {
	if c.cfg.Index.Interval <= 0 {
		return fmt.Errorf("index watch interval must be > 0")
	}
	if c.cfg.Index.Jitter < 0 {
		return fmt.Errorf("index watch jitter must be >= 0")
	}
	c.watchMu.Lock()
	if c.watchCancel != nil {
		c.watchMu.Unlock()
		return ErrWatchRunning
	}
	c.watchMu.Unlock()

	service, err := c.indexSyncService()
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	results := make(chan IndexSyncResult, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for {
			result, err := service.Sync(watchCtx, c.cfg.RepoPath, indexapp.SyncOptions{})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					errs <- err
				}
				return
			}

			if c.cfg.Index.EmitResults && (!c.cfg.Index.OnlyChanges || hasIndexChanges(result)) {
				if !emitSyncResult(watchCtx, results, toSyncResult(result)) {
					return
				}
			}

			wait := c.cfg.Index.Interval
			if c.cfg.Index.Jitter > 0 {
				wait += time.Duration(rng.Int63n(int64(c.cfg.Index.Jitter)))
			}
			timer := time.NewTimer(wait)
			select {
			case <-watchCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()

	c.watchMu.Lock()
	c.watchCancel = cancel
	c.watchErr = errs
	c.watchResults = results
	c.watchMu.Unlock()
	return nil
}

// WatchResults returns a channel that emits mirror sync summaries.
func (c *Client) WatchResults() <-chan IndexSyncResult {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	return c.watchResults
}

// WatchErrors returns a channel that emits watch errors.
func (c *Client) WatchErrors() <-chan error {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	return c.watchErr
}

// StopIndexWatch stops the watch loop.
func (c *Client) StopIndexWatch() error {
	c.watchMu.Lock()
	cancel := c.watchCancel
	errs := c.watchErr
	c.watchCancel = nil
	c.watchErr = nil
	c.watchResults = nil
	c.watchMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if errs != nil {
		if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func (c *Client) indexSyncService() (*indexapp.SyncService, error) {
	store, err := c.ensureIndexStore()
	if err != nil {
		return nil, err
	}
	return indexapp.NewSyncService(c.store, store, entryv1.Decoder{}, c.hasher), nil
}

// emitSyncResult delivers a watch summary unless the watch is stopped
// first. A consumer that stops draining WatchResults must not pin the
// watch goroutine past cancellation.
func emitSyncResult(ctx context.Context, results chan<- IndexSyncResult, result IndexSyncResult) bool {
	select {
	case results <- result:
		return true
	case <-ctx.Done():
		return false
	}
}

func hasIndexChanges(result indexapp.SyncResult) bool {
	return result.Reset || result.Upserted > 0 || result.Revoked > 0
}

func toSyncResult(result indexapp.SyncResult) IndexSyncResult {
	return IndexSyncResult{
		Skipped:    result.Skipped,
		Reset:      result.Reset,
		Streams:    result.Streams,
		Upserted:   result.Upserted,
		Revoked:    result.Revoked,
		LastCommit: result.LastCommit,
	}
}

func toIndexedEntry(record indexapp.EntryRecord) IndexedEntry {
	return IndexedEntry{
		Topic:             record.Topic,
		SubjectID:         record.SubjectID,
		Payload:           record.Payload,
		EntryHash:         record.EntryHash,
		EntryID:           record.EntryID,
		Kind:              record.Kind,
		SchemaVersion:     record.SchemaVersion,
		UpdatedAtUnixNano: record.UpdatedAt,
		Revoked:           record.Revoked,
	}
}
