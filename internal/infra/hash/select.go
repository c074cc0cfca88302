package hash

import "github.com/attestly/policytrail/internal/domain"

type Hasher interface {
	SumHex(data []byte) string
}

// ForAlgorithm maps a manifest hash algorithm to its implementation.
// Unknown values fall back to the default so older ledgers keep verifying.
func ForAlgorithm(alg domain.HashAlgorithm) Hasher {
	switch domain.NormalizeHashAlgorithm(alg) {
	case domain.HashAlgorithmBLAKE3:
		return BLAKE3{}
	default:
		return SHA256{}
	}
}
