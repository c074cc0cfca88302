package gitvault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func (s *Store) LoadHeadEntry(ctx context.Context, repoPath, streamPath string) (evidence.EntryBlob, error) {
	if err := ctx.Err(); err != nil {
		return evidence.EntryBlob{}, err
	}

	tree, err := loadMainTree(repoPath)
	if err != nil {
		if errors.Is(err, evidence.ErrStreamNotFound) {
			return evidence.EntryBlob{}, evidence.ErrStreamNotFound
		}
		return evidence.EntryBlob{}, err
	}

	streamPath = normalizeTreePath(streamPath)
	headPath := path.Join(streamPath, domain.StreamHeadFile)
	headContent, err := readTreeFile(tree, headPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return evidence.EntryBlob{}, evidence.ErrStreamNotFound
		}
		return evidence.EntryBlob{}, err
	}

	relPath := strings.TrimSpace(string(headContent))
	if relPath == "" {
		return evidence.EntryBlob{}, evidence.ErrStreamNotFound
	}

	entryPath := path.Join(streamPath, relPath)
	entryBytes, err := readTreeFile(tree, entryPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return evidence.EntryBlob{}, evidence.ErrStreamNotFound
		}
		return evidence.EntryBlob{}, err
	}

	return evidence.EntryBlob{Path: entryPath, Bytes: entryBytes}, nil
}

func (s *Store) LoadStreamEntries(ctx context.Context, repoPath, streamPath string) ([]evidence.EntryBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := loadMainTree(repoPath)
	if err != nil {
		if errors.Is(err, evidence.ErrStreamNotFound) {
			return nil, evidence.ErrStreamNotFound
		}
		return nil, err
	}

	streamPath = normalizeTreePath(streamPath)
	streamTree, err := tree.Tree(streamPath)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, evidence.ErrStreamNotFound
		}
		return nil, fmt.Errorf("read stream tree: %w", err)
	}

	entriesTree, err := streamTree.Tree(domain.EntriesDirName)
	if err != nil {
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, evidence.ErrStreamNotFound
		}
		return nil, fmt.Errorf("read entries tree: %w", err)
	}

	var blobs []evidence.EntryBlob
	for _, entry := range entriesTree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		if !strings.HasSuffix(entry.Name, domain.EntryFileExt) {
			continue
		}
		blobBytes, err := readBlob(entriesTree, entry)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, evidence.EntryBlob{
			Path:  path.Join(streamPath, domain.EntriesDirName, entry.Name),
			Bytes: blobBytes,
		})
	}

	return blobs, nil
}

func loadMainTree(repoPath string) (*object.Tree, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open git repo: %w", err)
	}

	ref, err := repo.Reference(plumbing.ReferenceName(mainRefName), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, evidence.ErrStreamNotFound
		}
		return nil, fmt.Errorf("read main ref: %w", err)
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read main commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read main tree: %w", err)
	}

	return tree, nil
}

func readBlob(tree *object.Tree, entry object.TreeEntry) ([]byte, error) {
	file, err := tree.TreeEntryFile(&entry)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}
