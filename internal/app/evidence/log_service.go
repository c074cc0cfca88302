package evidence

import (
	"context"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type LogService struct {
	store   ReadStore
	decoder Decoder
	hasher  Hasher
	layout  domain.StreamLayout
}

func NewLogService(store ReadStore, decoder Decoder, hasher Hasher, layout domain.StreamLayout) *LogService {
	layout = domain.NormalizeStreamLayout(layout)
	return &LogService{
		store:   store,
		decoder: decoder,
		hasher:  hasher,
		layout:  layout,
	}
}

func (s *LogService) Log(ctx context.Context, repoPath, topic, subject string) ([]LogRecord, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}
	if !domain.IsValidTopicName(topic) {
		return nil, ErrInvalidTopic
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return nil, err
	}

	streamPath := domain.StreamPath(s.layout, topic, subject)
	headHash, err := s.store.LoadStreamHead(ctx, absRepoPath, streamPath)
	if err != nil {
		return nil, err
	}
	if headHash == "" {
		return nil, ErrStreamNotFound
	}

	blobs, err := s.store.LoadStreamEntries(ctx, absRepoPath, streamPath)
	if err != nil {
		return nil, err
	}

	index, err := buildEntryIndex(blobs, s.decoder, s.hasher)
	if err != nil {
		return nil, err
	}

	chain, err := buildEntryChain(headHash, index)
	if err != nil {
		return nil, err
	}

	ordered := make([]LogRecord, 0, len(chain))
	for _, item := range chain {
		ordered = append(ordered, LogRecord{
			EntryID:    item.Entry.EntryID,
			EntryHash:  item.Hash,
			ParentHash: item.Entry.ParentHash,
			Timestamp:  item.Entry.Timestamp,
			Kind:       item.Entry.Kind,
		})
	}

	return ordered, nil
}
