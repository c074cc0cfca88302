package canonicaljson

import (
	"context"
	"fmt"

	"github.com/attestly/policytrail/pkg/jcs"
)

type Canonicalizer struct{}

func (Canonicalizer) Canonicalize(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := jcs.CanonicalizeBytes(input)
	if err != nil {
		return nil, fmt.Errorf("canonicalize json: %w", err)
	}

	return out, nil
}

type Checker struct{}

func (Checker) IsCanonical(ctx context.Context, input []byte) bool {
	if ctx.Err() != nil {
		return false
	}
	return jcs.IsCanonical(input)
}
