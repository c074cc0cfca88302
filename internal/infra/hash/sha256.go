package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 is the default entry-envelope hash (manifest hash_algorithm
// "sha256").
type SHA256 struct{}

func (SHA256) SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
