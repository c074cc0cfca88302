package ledger

import (
	"context"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type StatusService struct {
	store StatusStore
}

func NewStatusService(store StatusStore) *StatusService {
	return &StatusService{store: store}
}

func (s *StatusService) Status(ctx context.Context, path string) (domain.LedgerStatus, error) {
	absPath, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return domain.LedgerStatus{}, err
	}

	status, err := s.store.LoadStatus(ctx, absPath)
	if err != nil {
		return domain.LedgerStatus{}, err
	}

	status.Path = absPath
	return status, nil
}
