package gitvault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func (s *Store) ListEvidenceStreams(ctx context.Context, repoPath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := loadMainTree(repoPath)
	if err != nil {
		if errors.Is(err, evidence.ErrStreamNotFound) {
			return nil, nil
		}
		return nil, err
	}

	evidenceTree, err := tree.Tree(domain.EvidenceRoot)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read evidence tree: %w", err)
	}

	var streams []string
	for _, topicEntry := range evidenceTree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if topicEntry.Mode != filemode.Dir {
			continue
		}
		topicName := topicEntry.Name
		topicTree, err := evidenceTree.Tree(topicName)
		if err != nil {
			return nil, fmt.Errorf("read topic tree %s: %w", topicName, err)
		}
		topicBase := path.Join(domain.EvidenceRoot, topicName)
		topicStreams, err := collectStreams(ctx, topicTree, topicBase)
		if err != nil {
			return nil, err
		}
		streams = append(streams, topicStreams...)
	}

	sort.Strings(streams)
	return streams, nil
}

func collectStreams(ctx context.Context, tree *object.Tree, basePath string) ([]string, error) {
	var streams []string
	for _, entry := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Mode != filemode.Dir {
			continue
		}
		fullPath := path.Join(basePath, entry.Name)
		if strings.HasPrefix(entry.Name, "REC_") {
			streams = append(streams, fullPath)
			continue
		}

		childTree, err := tree.Tree(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("read stream tree %s: %w", fullPath, err)
		}
		nested, err := collectStreams(ctx, childTree, fullPath)
		if err != nil {
			return nil, err
		}
		streams = append(streams, nested...)
	}
	return streams, nil
}
