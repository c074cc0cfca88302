package integrity

import (
	"context"
	"errors"
	"fmt"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

const (
	IssueHeadRead     = "head_read"
	IssueHeadMissing  = "head_missing"
	IssueEntryRead    = "entry_read"
	IssueEntryMissing = "entry_missing"
	IssueEntryDecode  = "entry_decode"
	IssueEntryInvalid = "entry_invalid"
	IssueChain        = "chain_invalid"
	IssueOrphanEntry  = "orphan_entry"
	IssueNonCanonical = "payload_not_canonical"
)

// VerifyService audits every evidence stream without mutating anything.
// Problems are reported as issues; the only errors returned are the
// caller's own (bad path, cancelled context).
type VerifyService struct {
	lister  StreamLister
	store   ReadStore
	decoder Decoder
	hasher  Hasher
	checker CanonicalChecker
}

func NewVerifyService(lister StreamLister, store ReadStore, decoder Decoder, hasher Hasher, checker CanonicalChecker) *VerifyService {
	return &VerifyService{
		lister:  lister,
		store:   store,
		decoder: decoder,
		hasher:  hasher,
		checker: checker,
	}
}

func (s *VerifyService) Verify(ctx context.Context, repoPath string, opts VerifyOptions) (VerifyResult, error) {
	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return VerifyResult{}, err
	}

	streams, err := s.lister.ListEvidenceStreams(ctx, absRepoPath)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{Streams: len(streams)}
	for _, streamPath := range streams {
		if err := ctx.Err(); err != nil {
			return VerifyResult{}, err
		}

		issues := s.verifyStream(ctx, absRepoPath, streamPath, opts)
		if len(issues) == 0 {
			result.Valid++
			continue
		}
		result.Issues = append(result.Issues, issues...)
	}

	return result, nil
}

func (s *VerifyService) verifyStream(ctx context.Context, repoPath, streamPath string, opts VerifyOptions) []Issue {
	headHash, err := s.store.LoadStreamHead(ctx, repoPath, streamPath)
	if err != nil {
		return []Issue{newIssue(streamPath, IssueHeadRead, err)}
	}
	if headHash == "" {
		return []Issue{newIssue(streamPath, IssueHeadMissing, errors.New("HEAD not found"))}
	}

	blobs, err := s.store.LoadStreamEntries(ctx, repoPath, streamPath)
	if err != nil {
		return []Issue{newIssue(streamPath, IssueEntryRead, err)}
	}
	if len(blobs) == 0 {
		return []Issue{newIssue(streamPath, IssueEntryMissing, errors.New("no entries found"))}
	}

	index := make(map[string]chainEntry, len(blobs))
	for _, blob := range blobs {
		entry, err := s.decoder.Decode(blob.Bytes)
		if err != nil {
			return []Issue{newIssue(streamPath, IssueEntryDecode, err)}
		}
		if err := entry.Validate(); err != nil {
			return []Issue{newIssue(streamPath, IssueEntryInvalid, err)}
		}
		hash := s.hasher.SumHex(blob.Bytes)
		if _, exists := index[hash]; exists {
			return []Issue{newIssue(streamPath, IssueChain, fmt.Errorf("duplicate entry hash %s", hash))}
		}
		index[hash] = chainEntry{Hash: hash, Entry: entry}
	}

	chain, err := buildChain(headHash, index)
	if err != nil {
		return []Issue{newIssue(streamPath, IssueChain, err)}
	}

	var issues []Issue
	if len(chain) != len(index) {
		issues = append(issues, newIssue(streamPath, IssueOrphanEntry, fmt.Errorf("%d orphan entr(ies)", len(index)-len(chain))))
	}

	if opts.Deep && s.checker != nil {
		for _, item := range chain {
			if len(item.Entry.Payload) == 0 {
				continue
			}
			if !s.checker.IsCanonical(ctx, item.Entry.Payload) {
				issues = append(issues, newIssue(streamPath, IssueNonCanonical, fmt.Errorf("entry %s payload is not in canonical form", item.Entry.EntryID)))
			}
		}
	}

	return issues
}

type chainEntry struct {
	Hash  string
	Entry domain.Entry
}

func buildChain(headHash string, index map[string]chainEntry) ([]chainEntry, error) {
	var chain []chainEntry
	visited := make(map[string]struct{}, len(index))
	current := headHash
	for current != "" {
		if _, ok := visited[current]; ok {
			return nil, fmt.Errorf("cycle detected at %s", current)
		}
		visited[current] = struct{}{}

		entry, ok := index[current]
		if !ok {
			return nil, fmt.Errorf("missing entry %s", current)
		}
		chain = append(chain, entry)
		current = entry.Entry.ParentHash
	}
	return chain, nil
}

func newIssue(streamPath, code string, err error) Issue {
	return Issue{
		StreamPath: streamPath,
		Code:       code,
		Message:    err.Error(),
	}
}
