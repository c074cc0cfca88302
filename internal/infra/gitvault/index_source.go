package gitvault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	indexapp "github.com/attestly/policytrail/internal/app/index"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func (s *Store) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("open git repo: %w", err)
	}

	ref, err := repo.Reference(plumbing.ReferenceName(mainRefName), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read main ref: %w", err)
	}
	return ref.Hash().String(), nil
}

func (s *Store) ListStreamHeads(ctx context.Context, repoPath string) ([]indexapp.StreamHead, error) {
	streams, err := s.ListEvidenceStreams(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}

	tree, err := loadMainTree(repoPath)
	if err != nil {
		return nil, err
	}

	heads := make([]indexapp.StreamHead, 0, len(streams))
	for _, streamPath := range streams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The state mirror carries a parent-free copy of the head entry.
		// Streams written before the mirror existed fall back to the HEAD
		// pointer inside the stream itself.
		statePath := domain.StateRoot + strings.TrimPrefix(streamPath, domain.EvidenceRoot)
		currentPath := path.Join(statePath, domain.EntriesDirName, domain.StateCurrentFile)
		content, err := readTreeFile(tree, currentPath)
		if err == nil {
			heads = append(heads, indexapp.StreamHead{StreamPath: streamPath, Bytes: content})
			continue
		}
		if !errors.Is(err, object.ErrFileNotFound) {
			return nil, err
		}

		blob, err := s.LoadHeadEntry(ctx, repoPath, streamPath)
		if err != nil {
			return nil, fmt.Errorf("read stream head %s: %w", streamPath, err)
		}
		heads = append(heads, indexapp.StreamHead{StreamPath: streamPath, Bytes: blob.Bytes})
	}

	return heads, nil
}
