package gitvault

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/attestly/policytrail/internal/app/evidence"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage"
	"github.com/zeebo/blake3"
)

const (
	mainRefName    = "refs/heads/main"
	casMaxRetries  = 5
	casBackoffBase = 25 * time.Millisecond
)

func (s *Store) LoadStreamHead(ctx context.Context, repoPath, streamPath string) (string, error) {
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

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("read main commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("read main tree: %w", err)
	}

	return loadStreamHeadHash(tree, normalizeTreePath(streamPath), s.hashBytes)
}

func (s *Store) AppendEntry(ctx context.Context, write evidence.EntryWrite) (evidence.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return evidence.AppendResult{}, err
	}

	repo, err := git.PlainOpen(write.RepoPath)
	if err != nil {
		return evidence.AppendResult{}, fmt.Errorf("open git repo: %w", err)
	}

	streamPath := normalizeTreePath(write.StreamPath)
	relEntryPath := path.Join(domain.EntriesDirName, entryFileName(write.Entry))

	entryBlobHash, err := writeBlob(repo.Storer, write.EntryBytes)
	if err != nil {
		return evidence.AppendResult{}, err
	}

	headBlobHash, err := writeBlob(repo.Storer, []byte(relEntryPath+"\n"))
	if err != nil {
		return evidence.AppendResult{}, err
	}

	statePath := ""
	var stateEntryBlobHash plumbing.Hash
	var stateHeadBlobHash plumbing.Hash
	if write.StatePath != "" && len(write.StateEntryBytes) > 0 {
		statePath = normalizeTreePath(write.StatePath)
		stateEntryBlobHash, err = writeBlob(repo.Storer, write.StateEntryBytes)
		if err != nil {
			return evidence.AppendResult{}, err
		}
		relStatePath := path.Join(domain.EntriesDirName, domain.StateCurrentFile)
		stateHeadBlobHash, err = writeBlob(repo.Storer, []byte(relStatePath+"\n"))
		if err != nil {
			return evidence.AppendResult{}, err
		}
	}

	refName := plumbing.ReferenceName(mainRefName)
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return evidence.AppendResult{}, err
		}

		baseRef, baseTree, baseTreeHash, err := loadBaseTree(repo, refName)
		if err != nil {
			return evidence.AppendResult{}, err
		}

		currentHead, err := loadStreamHeadHash(baseTree, streamPath, s.hashBytes)
		if err != nil {
			return evidence.AppendResult{}, err
		}
		if currentHead != write.Entry.ParentHash {
			return evidence.AppendResult{}, domain.ErrHeadChanged
		}

		treeHash := baseTreeHash
		treeHash, err = updateTree(repo.Storer, treeHash, path.Join(streamPath, relEntryPath), entryBlobHash, filemode.Regular)
		if err != nil {
			return evidence.AppendResult{}, err
		}
		treeHash, err = updateTree(repo.Storer, treeHash, path.Join(streamPath, domain.StreamHeadFile), headBlobHash, filemode.Regular)
		if err != nil {
			return evidence.AppendResult{}, err
		}
		if statePath != "" {
			relStatePath := path.Join(domain.EntriesDirName, domain.StateCurrentFile)
			treeHash, err = updateTree(repo.Storer, treeHash, path.Join(statePath, relStatePath), stateEntryBlobHash, filemode.Regular)
			if err != nil {
				return evidence.AppendResult{}, err
			}
			treeHash, err = updateTree(repo.Storer, treeHash, path.Join(statePath, domain.StreamHeadFile), stateHeadBlobHash, filemode.Regular)
			if err != nil {
				return evidence.AppendResult{}, err
			}
		}

		commitHash, err := s.writeCommit(ctx, write.RepoPath, repo, treeHash, baseRef, write.Entry.EntryID)
		if err != nil {
			return evidence.AppendResult{}, err
		}

		newRef := plumbing.NewHashReference(refName, commitHash)
		if err := repo.Storer.CheckAndSetReference(newRef, baseRef); err != nil {
			if errors.Is(err, storage.ErrReferenceHasChanged) {
				if attempt == casMaxRetries-1 {
					return evidence.AppendResult{}, domain.ErrHeadChanged
				}
				if err := sleepWithBackoff(ctx, attempt); err != nil {
					return evidence.AppendResult{}, err
				}
				continue
			}
			return evidence.AppendResult{}, fmt.Errorf("update main ref: %w", err)
		}

		return evidence.AppendResult{
			CommitHash: commitHash.String(),
			EntryHash:  write.EntryHash,
			EntryID:    write.Entry.EntryID,
		}, nil
	}

	return evidence.AppendResult{}, domain.ErrHeadChanged
}

func loadStreamHeadHash(tree *object.Tree, streamPath string, hashBytes func([]byte) string) (string, error) {
	if tree == nil {
		return "", nil
	}

	headPath := path.Join(streamPath, domain.StreamHeadFile)
	headContent, err := readTreeFile(tree, headPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", nil
		}
		return "", err
	}

	relPath := strings.TrimSpace(string(headContent))
	if relPath == "" {
		return "", nil
	}

	entryPath := path.Join(streamPath, relPath)
	entryBytes, err := readTreeFile(tree, entryPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("stream entry missing at %s", entryPath)
		}
		return "", err
	}

	return hashBytes(entryBytes), nil
}

func loadBaseTree(repo *git.Repository, refName plumbing.ReferenceName) (*plumbing.Reference, *object.Tree, plumbing.Hash, error) {
	baseRef, err := repo.Reference(refName, true)
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main ref: %w", err)
	}
	if baseRef == nil {
		return nil, nil, plumbing.ZeroHash, nil
	}

	commit, err := repo.CommitObject(baseRef.Hash())
	if err != nil {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main commit: %w", err)
	}
	baseTree, err := commit.Tree()
	if err != nil {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main tree: %w", err)
	}
	return baseRef, baseTree, commit.TreeHash, nil
}

func sleepWithBackoff(ctx context.Context, attempt int) error {
	delay := casBackoffBase * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func readTreeFile(tree *object.Tree, filePath string) ([]byte, error) {
	file, err := tree.File(filePath)
	if err != nil {
		return nil, err
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", filePath, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", filePath, err)
	}

	return data, nil
}

func writeBlob(s storer.EncodedObjectStorer, data []byte) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if err := writer.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func updateTree(s storer.EncodedObjectStorer, baseHash plumbing.Hash, filePath string, fileHash plumbing.Hash, mode filemode.FileMode) (plumbing.Hash, error) {
	var baseTree *object.Tree
	if !baseHash.IsZero() {
		var err error
		baseTree, err = object.GetTree(s, baseHash)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("load tree: %w", err)
		}
	} else {
		baseTree = &object.Tree{}
	}

	parts := strings.Split(strings.Trim(filePath, "/"), "/")
	updatedTree, err := updateTreeRecursive(s, baseTree, parts, fileHash, mode)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return writeTree(s, updatedTree)
}

func updateTreeRecursive(s storer.EncodedObjectStorer, tree *object.Tree, parts []string, fileHash plumbing.Hash, mode filemode.FileMode) (*object.Tree, error) {
	if len(parts) == 0 {
		return tree, nil
	}

	name := parts[0]
	entries := make([]object.TreeEntry, 0, len(tree.Entries)+1)
	var existing *object.TreeEntry
	for _, entry := range tree.Entries {
		if entry.Name == name {
			e := entry
			existing = &e
			continue
		}
		entries = append(entries, entry)
	}

	if len(parts) == 1 {
		entries = append(entries, object.TreeEntry{Name: name, Mode: mode, Hash: fileHash})
	} else {
		var childTree *object.Tree
		if existing != nil && existing.Mode == filemode.Dir {
			var err error
			childTree, err = object.GetTree(s, existing.Hash)
			if err != nil {
				return nil, fmt.Errorf("load tree %s: %w", name, err)
			}
		} else {
			childTree = &object.Tree{}
		}

		updatedChild, err := updateTreeRecursive(s, childTree, parts[1:], fileHash, mode)
		if err != nil {
			return nil, err
		}

		childHash, err := writeTree(s, updatedChild)
		if err != nil {
			return nil, err
		}

		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: childHash})
	}

	sort.Sort(object.TreeEntrySorter(entries))
	return &object.Tree{Entries: entries}, nil
}

func writeTree(s storer.EncodedObjectStorer, tree *object.Tree) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func (s *Store) writeCommit(ctx context.Context, repoPath string, repo *git.Repository, treeHash plumbing.Hash, baseRef *plumbing.Reference, entryID string) (plumbing.Hash, error) {
	if s.options.SignCommits {
		return s.writeSignedCommit(ctx, repoPath, treeHash, baseRef, entryID)
	}
	return writeUnsignedCommit(repo.Storer, treeHash, baseRef, entryID)
}

func writeUnsignedCommit(s storer.EncodedObjectStorer, treeHash plumbing.Hash, baseRef *plumbing.Reference, entryID string) (plumbing.Hash, error) {
	author := object.Signature{
		Name:  "policytrail",
		Email: "policytrail@local",
		When:  time.Now().UTC(),
	}

	commit := &object.Commit{
		Author:       author,
		Committer:    author,
		Message:      fmt.Sprintf("policytrail entry %s", entryID),
		TreeHash:     treeHash,
		ParentHashes: nil,
	}

	if baseRef != nil {
		commit.ParentHashes = []plumbing.Hash{baseRef.Hash()}
	}

	obj := s.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func (s *Store) writeSignedCommit(ctx context.Context, repoPath string, treeHash plumbing.Hash, baseRef *plumbing.Reference, entryID string) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	message := fmt.Sprintf("policytrail entry %s", entryID)
	args := []string{"-C", repoPath, "commit-tree", treeHash.String(), "-m", message}
	if baseRef != nil {
		args = append(args, "-p", baseRef.Hash().String())
	}
	if s.options.SignKey != "" {
		args = append(args, "-S"+s.options.SignKey)
	} else {
		args = append(args, "-S")
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	now := time.Now().UTC()
	date := fmt.Sprintf("%d +0000", now.Unix())
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=policytrail",
		"GIT_AUTHOR_EMAIL=policytrail@local",
		"GIT_AUTHOR_DATE="+date,
		"GIT_COMMITTER_NAME=policytrail",
		"GIT_COMMITTER_EMAIL=policytrail@local",
		"GIT_COMMITTER_DATE="+date,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return plumbing.ZeroHash, fmt.Errorf("git commit-tree: %w: %s", err, msg)
		}
		return plumbing.ZeroHash, fmt.Errorf("git commit-tree: %w", err)
	}

	hash := strings.TrimSpace(stdout.String())
	if hash == "" {
		return plumbing.ZeroHash, errors.New("git commit-tree returned empty hash")
	}
	return plumbing.NewHash(hash), nil
}

func normalizeTreePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "./")
}

func entryFileName(entry domain.Entry) string {
	return fmt.Sprintf("%d_%s%s", entry.Timestamp, entry.Kind, domain.EntryFileExt)
}

// hashBytes must agree with the hasher the append service uses, or head
// comparisons in the CAS loop never match.
func (s *Store) hashBytes(data []byte) string {
	if domain.NormalizeHashAlgorithm(s.options.HashAlgorithm) == domain.HashAlgorithmBLAKE3 {
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
