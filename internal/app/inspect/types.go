package inspect

import "github.com/attestly/policytrail/internal/domain"

type BlobResult struct {
	ObjectHash string
	EntryHash  string
	Entry      domain.Entry
}
