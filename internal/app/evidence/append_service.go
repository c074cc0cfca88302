package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type AppendService struct {
	store         WriteStore
	schemas       SchemaStore
	validator     DocumentValidator
	canonicalizer Canonicalizer
	encoder       Encoder
	hasher        Hasher
	clock         Clock
	idGen         IDGenerator
	layout        domain.StreamLayout
}

func NewAppendService(store WriteStore, schemas SchemaStore, validator DocumentValidator, canonicalizer Canonicalizer, encoder Encoder, hasher Hasher, clock Clock, idGen IDGenerator, layout domain.StreamLayout) *AppendService {
	layout = domain.NormalizeStreamLayout(layout)
	return &AppendService{
		store:         store,
		schemas:       schemas,
		validator:     validator,
		canonicalizer: canonicalizer,
		encoder:       encoder,
		hasher:        hasher,
		clock:         clock,
		idGen:         idGen,
		layout:        layout,
	}
}

func (s *AppendService) Append(ctx context.Context, repoPath, topic, subject string, kind domain.EntryKind, payload []byte, schemaVersion string) (AppendResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return AppendResult{}, ErrTopicRequired
	}
	if !domain.IsValidTopicName(topic) {
		return AppendResult{}, ErrInvalidTopic
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return AppendResult{}, ErrSubjectRequired
	}

	if !kind.IsValid() {
		return AppendResult{}, domain.ErrInvalidKind
	}
	if kind == domain.EntryKindRevocation {
		if len(payload) > 0 {
			return AppendResult{}, domain.ErrUnexpectedPayload
		}
	} else if len(payload) == 0 {
		return AppendResult{}, ErrPayloadRequired
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return AppendResult{}, err
	}

	streamPath := domain.StreamPath(s.layout, topic, subject)
	parentHash, err := s.store.LoadStreamHead(ctx, absRepoPath, streamPath)
	if err != nil {
		return AppendResult{}, err
	}

	var canonical []byte
	if len(payload) > 0 {
		canonical, err = s.canonicalizer.Canonicalize(ctx, payload)
		if err != nil {
			return AppendResult{}, err
		}

		if err := s.validateAgainstSchema(ctx, absRepoPath, topic, canonical); err != nil {
			return AppendResult{}, err
		}
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return AppendResult{}, err
	}

	entry := domain.Entry{
		EntryID:       entryID,
		Timestamp:     s.clock.Now().UnixNano(),
		Topic:         topic,
		SubjectID:     subject,
		Kind:          kind,
		Payload:       canonical,
		ParentHash:    parentHash,
		SchemaVersion: schemaVersion,
	}

	encoded, err := s.encoder.Encode(entry)
	if err != nil {
		return AppendResult{}, err
	}

	entryHash := s.hasher.SumHex(encoded)

	stateEntry := entry
	stateEntry.ParentHash = ""
	stateEncoded := encoded
	stateEntryHash := entryHash
	if entry.ParentHash != "" {
		stateEncoded, err = s.encoder.Encode(stateEntry)
		if err != nil {
			return AppendResult{}, err
		}
		stateEntryHash = s.hasher.SumHex(stateEncoded)
	}

	result, err := s.store.AppendEntry(ctx, EntryWrite{
		RepoPath:        absRepoPath,
		StreamPath:      streamPath,
		EntryBytes:      encoded,
		EntryHash:       entryHash,
		Entry:           entry,
		StatePath:       domain.StatePath(s.layout, topic, subject),
		StateEntryBytes: stateEncoded,
		StateEntryHash:  stateEntryHash,
		StateEntry:      stateEntry,
	})
	if err != nil {
		return AppendResult{}, err
	}

	if result.EntryHash == "" {
		result.EntryHash = entryHash
	}
	if result.EntryID == "" {
		result.EntryID = entryID
	}

	return result, nil
}

func (s *AppendService) validateAgainstSchema(ctx context.Context, repoPath, topic string, doc []byte) error {
	if s.schemas == nil || s.validator == nil {
		return nil
	}

	schema, err := s.schemas.LoadTopicSchema(ctx, repoPath, topic)
	if err != nil {
		return err
	}
	if len(schema) == 0 {
		return nil
	}

	if err := s.validator.ValidateDocument(ctx, schema, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return nil
}
