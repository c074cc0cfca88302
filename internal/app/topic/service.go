package topic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/attestly/policytrail/internal/app/paths"
	"github.com/attestly/policytrail/internal/domain"
)

type Service struct {
	store     Store
	source    SchemaSource
	validator SchemaValidator
}

func NewService(store Store, source SchemaSource, validator SchemaValidator) *Service {
	return &Service{
		store:     store,
		source:    source,
		validator: validator,
	}
}

// Apply registers or replaces the payload schema for a topic. Every
// subsequent append to the topic is validated against it.
func (s *Service) Apply(ctx context.Context, repoPath, topic, schemaPath string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrTopicRequired
	}
	if !domain.IsValidTopicName(topic) {
		return ErrInvalidTopicName
	}

	schemaPath = strings.TrimSpace(schemaPath)
	if schemaPath == "" {
		return ErrSchemaPathRequired
	}

	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return err
	}

	absSchemaPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("resolve schema path: %w", err)
	}

	schema, err := s.source.ReadSchema(ctx, absSchemaPath)
	if err != nil {
		return err
	}

	schema = bytes.TrimSpace(schema)
	if len(schema) == 0 || !json.Valid(schema) {
		return ErrSchemaInvalidJSON
	}

	if s.validator != nil {
		if err := s.validator.Validate(ctx, schema); err != nil {
			return err
		}
	}

	return s.store.WriteTopicSchema(ctx, absRepoPath, topic, schema)
}

func (s *Service) List(ctx context.Context, repoPath string) ([]string, error) {
	absRepoPath, err := paths.NormalizeRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	return s.store.ListTopics(ctx, absRepoPath)
}
