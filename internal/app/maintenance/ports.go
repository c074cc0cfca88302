package maintenance

import "context"

type GCExecutor interface {
	RunGC(ctx context.Context, repoPath, prune string) error
}
