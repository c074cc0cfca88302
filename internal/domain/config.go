package domain

import (
	"fmt"
	"strings"
)

type StreamLayout string

const (
	StreamLayoutFlat    StreamLayout = "flat"
	StreamLayoutSharded StreamLayout = "sharded"
)

const DefaultStreamLayout = StreamLayoutSharded

func (layout StreamLayout) IsValid() bool {
	return layout == StreamLayoutFlat || layout == StreamLayoutSharded
}

func ParseStreamLayout(value string) (StreamLayout, error) {
	parsed := StreamLayout(strings.TrimSpace(value))
	if parsed == "" {
		return "", fmt.Errorf("stream layout is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid stream layout: %s", value)
	}
	return parsed, nil
}

func NormalizeStreamLayout(layout StreamLayout) StreamLayout {
	if layout.IsValid() {
		return layout
	}
	return DefaultStreamLayout
}

type HashAlgorithm string

const (
	HashAlgorithmSHA256 HashAlgorithm = "sha256"
	HashAlgorithmBLAKE3 HashAlgorithm = "blake3"
)

const DefaultHashAlgorithm = HashAlgorithmSHA256

func (alg HashAlgorithm) IsValid() bool {
	return alg == HashAlgorithmSHA256 || alg == HashAlgorithmBLAKE3
}

func ParseHashAlgorithm(value string) (HashAlgorithm, error) {
	parsed := HashAlgorithm(strings.TrimSpace(value))
	if parsed == "" {
		return "", fmt.Errorf("hash algorithm is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid hash algorithm: %s", value)
	}
	return parsed, nil
}

func NormalizeHashAlgorithm(alg HashAlgorithm) HashAlgorithm {
	if alg.IsValid() {
		return alg
	}
	return DefaultHashAlgorithm
}
