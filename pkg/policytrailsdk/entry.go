package policytrailsdk

import (
	"context"
	"encoding/json"
	"errors"

	evidenceapp "github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/canonicaljson"
	"github.com/attestly/policytrail/internal/infra/entryv1"
	"github.com/attestly/policytrail/internal/infra/ident"
	"github.com/attestly/policytrail/internal/infra/jsonpatch"
	"github.com/attestly/policytrail/internal/infra/schema"
	"github.com/attestly/policytrail/internal/platform"
)

type AppendResult struct {
	CommitHash string
	EntryHash  string
	EntryID    string
}

type Entry struct {
	Payload   json.RawMessage
	EntryHash string
	EntryID   string
	Kind      string
}

type EntryMeta struct {
	EntryHash string
	EntryID   string
	Kind      string
}

type LogEntry struct {
	EntryID    string
	EntryHash  string
	ParentHash string
	Timestamp  int64
	Kind       string
}

type AppendOptions struct {
	SchemaVersion string
}

// Get reads the current entry for a subject directly from the ledger.
func (c *Client) Get(ctx context.Context, topic, subjectID string) (Entry, error) {
	service := evidenceapp.NewGetService(c.store, entryv1.Decoder{}, c.hasher, c.layout)
	result, err := service.Get(ctx, c.cfg.RepoPath, topic, subjectID)
	if err != nil {
		return Entry{}, mapEntryErr(err)
	}
	return Entry{
		Payload:   result.Payload,
		EntryHash: result.EntryHash,
		EntryID:   result.EntryID,
		Kind:      result.Kind.String(),
	}, nil
}

// GetInto reads the current entry and unmarshals its payload into target.
func (c *Client) GetInto(ctx context.Context, topic, subjectID string, target any) (EntryMeta, error) {
	entry, err := c.Get(ctx, topic, subjectID)
	if err != nil {
		return EntryMeta{}, err
	}
	if len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, target); err != nil {
			return EntryMeta{}, err
		}
	}
	return EntryMeta{EntryHash: entry.EntryHash, EntryID: entry.EntryID, Kind: entry.Kind}, nil
}

// Append records an entry of the given kind (JSON payload bytes).
func (c *Client) Append(ctx context.Context, topic, subjectID, kind string, payload []byte, opts AppendOptions) (AppendResult, error) {
	parsedKind, err := domain.ParseEntryKind(kind)
	if err != nil {
		return AppendResult{}, err
	}
	result, err := c.appendService().Append(ctx, c.cfg.RepoPath, topic, subjectID, parsedKind, payload, opts.SchemaVersion)
	if err != nil {
		return AppendResult{}, mapEntryErr(err)
	}
	return AppendResult{CommitHash: result.CommitHash, EntryHash: result.EntryHash, EntryID: result.EntryID}, nil
}

// AppendJSON marshals a Go value and records it as an entry payload.
func (c *Client) AppendJSON(ctx context.Context, topic, subjectID, kind string, value any, opts AppendOptions) (AppendResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return AppendResult{}, err
	}
	return c.Append(ctx, topic, subjectID, kind, payload, opts)
}

// Amend appends a corrected copy of the head entry with JSON Patch ops (RFC 6902).
func (c *Client) Amend(ctx context.Context, topic, subjectID string, ops []byte) (AppendResult, error) {
	service := evidenceapp.NewAmendService(
		c.store,
		entryv1.Decoder{},
		jsonpatch.Patcher{},
		c.appendService(),
		c.layout,
	)
	result, err := service.Amend(ctx, c.cfg.RepoPath, topic, subjectID, ops)
	if err != nil {
		return AppendResult{}, mapEntryErr(err)
	}
	return AppendResult{CommitHash: result.CommitHash, EntryHash: result.EntryHash, EntryID: result.EntryID}, nil
}

// AmendJSON marshals patch operations and applies them.
func (c *Client) AmendJSON(ctx context.Context, topic, subjectID string, ops any) (AppendResult, error) {
	payload, err := json.Marshal(ops)
	if err != nil {
		return AppendResult{}, err
	}
	return c.Amend(ctx, topic, subjectID, payload)
}

// Revoke closes a subject's evidence stream with a revocation entry.
func (c *Client) Revoke(ctx context.Context, topic, subjectID string) (AppendResult, error) {
	result, err := c.appendService().Append(ctx, c.cfg.RepoPath, topic, subjectID, domain.EntryKindRevocation, nil, "")
	if err != nil {
		return AppendResult{}, mapEntryErr(err)
	}
	return AppendResult{CommitHash: result.CommitHash, EntryHash: result.EntryHash, EntryID: result.EntryID}, nil
}

// Log returns the entry history for a subject.
func (c *Client) Log(ctx context.Context, topic, subjectID string) ([]LogEntry, error) {
	service := evidenceapp.NewLogService(c.store, entryv1.Decoder{}, c.hasher, c.layout)
	records, err := service.Log(ctx, c.cfg.RepoPath, topic, subjectID)
	if err != nil {
		return nil, mapEntryErr(err)
	}
	out := make([]LogEntry, 0, len(records))
	for _, record := range records {
		out = append(out, LogEntry{
			EntryID:    record.EntryID,
			EntryHash:  record.EntryHash,
			ParentHash: record.ParentHash,
			Timestamp:  record.Timestamp,
			Kind:       record.Kind.String(),
		})
	}
	return out, nil
}

func (c *Client) appendService() *evidenceapp.AppendService {
	return evidenceapp.NewAppendService(
		c.store,
		c.store,
		schema.JSONSchemaValidator{},
		canonicaljson.Canonicalizer{},
		entryv1.Encoder{},
		c.hasher,
		platform.RealClock{},
		ident.NewULIDGenerator(),
		c.layout,
	)
}

func mapEntryErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, evidenceapp.ErrStreamNotFound) {
		return ErrNotFound
	}
	return err
}
