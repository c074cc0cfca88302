package gitvault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/attestly/policytrail/internal/domain"
	"github.com/go-git/go-git/v5"
)

type Store struct {
	options StoreOptions
}

type StoreOptions struct {
	SignCommits   bool
	SignKey       string
	HashAlgorithm domain.HashAlgorithm
}

func NewStore() *Store {
	return &Store{}
}

func NewStoreWithOptions(options StoreOptions) *Store {
	return &Store{options: options}
}

func (s *Store) Init(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	_, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{Bare: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return fmt.Errorf("ledger already exists: %w", err)
		}
		return fmt.Errorf("init git repo: %w", err)
	}

	return nil
}

func (s *Store) WriteManifest(ctx context.Context, path string, manifest domain.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	manifestPath := filepath.Join(path, manifestFileName)
	payload := renderManifest(manifest)
	if err := os.WriteFile(manifestPath, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
