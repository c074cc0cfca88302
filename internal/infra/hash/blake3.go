package hash

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

type BLAKE3 struct{}

func (BLAKE3) SumHex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
