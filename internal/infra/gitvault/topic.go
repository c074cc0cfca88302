package gitvault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Topic schemas live outside the object store, next to the manifest, so
// operators can review and change them without touching ledger history.
func (s *Store) WriteTopicSchema(ctx context.Context, repoPath, topic string, schema []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topicDir := filepath.Join(repoPath, "topics", topic)
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		return fmt.Errorf("create topic dir: %w", err)
	}

	schemaPath := filepath.Join(topicDir, "schema.json")
	if err := os.WriteFile(schemaPath, schema, 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}

func (s *Store) LoadTopicSchema(ctx context.Context, repoPath, topic string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schemaPath := filepath.Join(repoPath, "topics", topic, "schema.json")
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read topic schema: %w", err)
	}

	return data, nil
}

func (s *Store) ListTopics(ctx context.Context, repoPath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(repoPath, "topics"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list topics: %w", err)
	}

	var topics []string
	for _, entry := range entries {
		if entry.IsDir() {
			topics = append(topics, entry.Name())
		}
	}
	return topics, nil
}
