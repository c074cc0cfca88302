package evidence

import (
	"context"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

// AmendService corrects the current payload of a stream by applying a
// JSON patch and appending the result as a new entry. History is never
// rewritten; the correction chains onto the old head.
type AmendService struct {
	store    ReadStore
	decoder  Decoder
	patcher  Patcher
	appender Appender
	layout   domain.StreamLayout
}

func NewAmendService(store ReadStore, decoder Decoder, patcher Patcher, appender Appender, layout domain.StreamLayout) *AmendService {
	layout = domain.NormalizeStreamLayout(layout)
	return &AmendService{
		store:    store,
		decoder:  decoder,
		patcher:  patcher,
		appender: appender,
		layout:   layout,
	}
}

func (s *AmendService) Amend(ctx context.Context, repoPath, topic, subject string, patch []byte) (AppendResult, error) {
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

	if len(patch) == 0 {
		return AppendResult{}, ErrPatchRequired
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return AppendResult{}, err
	}

	streamPath := domain.StreamPath(s.layout, topic, subject)
	blob, err := s.store.LoadHeadEntry(ctx, absRepoPath, streamPath)
	if err != nil {
		return AppendResult{}, err
	}

	head, err := s.decoder.Decode(blob.Bytes)
	if err != nil {
		return AppendResult{}, err
	}
	if head.Kind == domain.EntryKindRevocation {
		return AppendResult{}, ErrSubjectRevoked
	}

	patched, err := s.patcher.Apply(ctx, head.Payload, patch)
	if err != nil {
		return AppendResult{}, err
	}

	return s.appender.Append(ctx, absRepoPath, topic, subject, head.Kind, patched, head.SchemaVersion)
}
