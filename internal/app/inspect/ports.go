package inspect

import (
	"context"

	"github.com/attestly/policytrail/internal/domain"
)

type BlobReader interface {
	ReadBlob(ctx context.Context, repoPath, objectHash string) ([]byte, error)
}

type Decoder interface {
	Decode(data []byte) (domain.Entry, error)
}

type Hasher interface {
	SumHex(data []byte) string
}
