package ledger

import (
	"context"
	"time"

	"github.com/attestly/policytrail/internal/domain"
)

type Store interface {
	Init(ctx context.Context, path string) error
	WriteManifest(ctx context.Context, path string, manifest domain.Manifest) error
}

type StatusStore interface {
	LoadStatus(ctx context.Context, path string) (domain.LedgerStatus, error)
}

type Clock interface {
	Now() time.Time
}
