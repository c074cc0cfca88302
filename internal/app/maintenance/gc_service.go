package maintenance

import (
	"context"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
)

// GCService repacks the underlying git object store. Entry blobs are
// immutable, so gc only ever collects unreachable objects left behind
// by aborted appends.
type GCService struct {
	executor GCExecutor
}

func NewGCService(executor GCExecutor) *GCService {
	return &GCService{executor: executor}
}

func (s *GCService) GC(ctx context.Context, repoPath string, opts GCOptions) error {
	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return err
	}

	prune := strings.TrimSpace(opts.Prune)
	return s.executor.RunGC(ctx, absRepoPath, prune)
}
