package filesystem

import (
	"context"
	"fmt"
	"os"
)

// SchemaSource reads topic payload schemas from the local filesystem
// when "topic apply" registers them into the ledger.
type SchemaSource struct{}

func (SchemaSource) ReadSchema(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic schema: %w", err)
	}
	return data, nil
}
