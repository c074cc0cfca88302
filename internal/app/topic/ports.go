package topic

import "context"

type SchemaSource interface {
	ReadSchema(ctx context.Context, path string) ([]byte, error)
}

type SchemaValidator interface {
	Validate(ctx context.Context, schema []byte) error
}

type Store interface {
	WriteTopicSchema(ctx context.Context, repoPath, topic string, schema []byte) error
	ListTopics(ctx context.Context, repoPath string) ([]string, error)
}
