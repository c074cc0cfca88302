package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type JSONSchemaValidator struct{}

func (JSONSchemaValidator) Validate(ctx context.Context, schema []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := compile(schema)
	return err
}

func (JSONSchemaValidator) ValidateDocument(ctx context.Context, schema, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	compiled, err := compile(schema)
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	return nil
}

func compile(schema []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return compiled, nil
}
