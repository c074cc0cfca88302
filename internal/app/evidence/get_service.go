package evidence

import (
	"context"
	"errors"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type GetService struct {
	store   ReadStore
	decoder Decoder
	hasher  Hasher
	layout  domain.StreamLayout
}

func NewGetService(store ReadStore, decoder Decoder, hasher Hasher, layout domain.StreamLayout) *GetService {
	layout = domain.NormalizeStreamLayout(layout)
	return &GetService{
		store:   store,
		decoder: decoder,
		hasher:  hasher,
		layout:  layout,
	}
}

func (s *GetService) Get(ctx context.Context, repoPath, topic, subject string) (GetResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return GetResult{}, ErrTopicRequired
	}
	if !domain.IsValidTopicName(topic) {
		return GetResult{}, ErrInvalidTopic
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return GetResult{}, ErrSubjectRequired
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return GetResult{}, err
	}

	statePath := domain.StatePath(s.layout, topic, subject)
	stateBlob, err := s.store.LoadHeadEntry(ctx, absRepoPath, statePath)
	if err != nil && !errors.Is(err, ErrStreamNotFound) {
		return GetResult{}, err
	}
	if err == nil && len(stateBlob.Bytes) > 0 {
		return s.resultFromBlob(stateBlob)
	}

	streamPath := domain.StreamPath(s.layout, topic, subject)
	blob, err := s.store.LoadHeadEntry(ctx, absRepoPath, streamPath)
	if err != nil {
		return GetResult{}, err
	}

	return s.resultFromBlob(blob)
}

func (s *GetService) resultFromBlob(blob EntryBlob) (GetResult, error) {
	entry, err := s.decoder.Decode(blob.Bytes)
	if err != nil {
		return GetResult{}, err
	}
	if entry.Kind == domain.EntryKindRevocation {
		return GetResult{}, ErrSubjectRevoked
	}

	return GetResult{
		Payload:   entry.Payload,
		EntryHash: s.hasher.SumHex(blob.Bytes),
		EntryID:   entry.EntryID,
		Kind:      entry.Kind,
	}, nil
}
