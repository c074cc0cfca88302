package jsonpatch

import (
	"context"
	"fmt"

	"github.com/evanphx/json-patch/v5"
)

// Patcher applies RFC 6902 operations to a head entry's canonical
// payload during amend. The patched document is re-canonicalized before
// it is hashed, so the output here does not need to be canonical.
type Patcher struct{}

func (Patcher) Apply(ctx context.Context, payload, ops []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, fmt.Errorf("decode patch ops: %w", err)
	}

	out, err := decoded.Apply(payload)
	if err != nil {
		return nil, fmt.Errorf("apply patch to payload: %w", err)
	}
	return out, nil
}
