package ledger

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type InitService struct {
	store Store
	clock Clock
}

type InitOptions struct {
	Name          string
	StreamLayout  domain.StreamLayout
	HashAlgorithm domain.HashAlgorithm
}

func NewInitService(store Store, clock Clock) *InitService {
	return &InitService{
		store: store,
		clock: clock,
	}
}

func (s *InitService) Init(ctx context.Context, path string, opts InitOptions) error {
	absPath, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return err
	}

	manifestName := strings.TrimSpace(opts.Name)
	if manifestName == "" {
		manifestName = filepath.Base(absPath)
	}

	if err := s.store.Init(ctx, absPath); err != nil {
		return err
	}

	manifest := domain.NewManifest(manifestName, s.clock.Now())
	if opts.StreamLayout != "" {
		manifest.StreamLayout = opts.StreamLayout
	}
	if opts.HashAlgorithm != "" {
		manifest.HashAlgorithm = opts.HashAlgorithm
	}
	manifest = manifest.WithDefaults()
	return s.store.WriteManifest(ctx, absPath, manifest)
}
