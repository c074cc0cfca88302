package index

import (
	"context"
	"errors"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

// SyncService projects the current head of every evidence stream into a
// local sqlite mirror. The ledger stays the source of truth; the mirror
// only exists for fast lookups and can be rebuilt at any time.
type SyncService struct {
	source  Source
	store   Store
	decoder Decoder
	hasher  Hasher
}

func NewSyncService(source Source, store Store, decoder Decoder, hasher Hasher) *SyncService {
	return &SyncService{
		source:  source,
		store:   store,
		decoder: decoder,
		hasher:  hasher,
	}
}

func (s *SyncService) Sync(ctx context.Context, repoPath string, opts SyncOptions) (SyncResult, error) {
	if err := s.ensureDeps(); err != nil {
		return SyncResult{}, err
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return SyncResult{}, err
	}

	state, err := s.store.GetState(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	head, err := s.source.HeadCommit(ctx, absRepoPath)
	if err != nil {
		return SyncResult{}, err
	}
	if head == "" {
		return SyncResult{}, ErrEmptyLedger
	}
	if head == state.LastCommit && !opts.Full {
		return SyncResult{Skipped: true, LastCommit: head}, nil
	}

	result := SyncResult{LastCommit: head}
	if opts.Full {
		if err := s.store.Reset(ctx); err != nil {
			return SyncResult{}, err
		}
		result.Reset = true
	}

	heads, err := s.source.ListStreamHeads(ctx, absRepoPath)
	if err != nil {
		return result, err
	}
	result.Streams = len(heads)

	storeTx, err := s.store.Begin(ctx)
	if err != nil {
		return result, err
	}

	for _, item := range heads {
		if err := ctx.Err(); err != nil {
			_ = storeTx.Rollback()
			return result, err
		}

		entry, err := s.decoder.Decode(item.Bytes)
		if err != nil {
			_ = storeTx.Rollback()
			return result, err
		}
		if err := entry.Validate(); err != nil {
			_ = storeTx.Rollback()
			return result, err
		}

		record := s.newRecord(item, entry)
		if err := storeTx.UpsertEntry(ctx, record); err != nil {
			_ = storeTx.Rollback()
			return result, err
		}
		result.Upserted++
		if record.Revoked {
			result.Revoked++
		}
	}

	if err := storeTx.SetState(ctx, State{LastCommit: head}); err != nil {
		_ = storeTx.Rollback()
		return result, err
	}
	if err := storeTx.Commit(); err != nil {
		return result, err
	}

	return result, nil
}

func (s *SyncService) newRecord(item StreamHead, entry domain.Entry) EntryRecord {
	return EntryRecord{
		StreamPath:    item.StreamPath,
		Topic:         entry.Topic,
		SubjectID:     entry.SubjectID,
		EntryID:       entry.EntryID,
		EntryHash:     s.hasher.SumHex(item.Bytes),
		Kind:          entry.Kind.String(),
		SchemaVersion: entry.SchemaVersion,
		Payload:       entry.Payload,
		UpdatedAt:     entry.Timestamp,
		Revoked:       entry.Kind == domain.EntryKindRevocation,
	}
}

func (s *SyncService) ensureDeps() error {
	if s.store == nil || s.source == nil {
		return errors.New("missing dependencies")
	}
	if s.decoder == nil || s.hasher == nil {
		return errors.New("missing dependencies")
	}
	return nil
}

// QueryService answers subject lookups from the mirror without touching
// the git repository.
type QueryService struct {
	reader Reader
}

func NewQueryService(reader Reader) *QueryService {
	return &QueryService{reader: reader}
}

func (s *QueryService) Lookup(ctx context.Context, topic, subjectID string) (EntryRecord, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return EntryRecord{}, ErrTopicRequired
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return EntryRecord{}, ErrSubjectRequired
	}

	record, found, err := s.reader.GetEntry(ctx, topic, subjectID)
	if err != nil {
		return EntryRecord{}, err
	}
	if !found {
		return EntryRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (s *QueryService) List(ctx context.Context, topic string) ([]EntryRecord, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}
	return s.reader.ListTopic(ctx, topic)
}
