package jcs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Parse reads exactly one JSON text into the value model. Syntax errors,
// duplicate object names, and trailing data all report ErrParse; input
// nested past the depth limit reports ErrTooDeep.
func Parse(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	value, err := parseValue(dec, 0)
	if err != nil {
		if errors.Is(err, ErrTooDeep) {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		return Value{}, fmt.Errorf("%w: trailing data after json value", ErrParse)
	}
	return value, nil
}

func parseValue(dec *jsontext.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}

	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 't':
		return Bool(true), nil
	case 'f':
		return Bool(false), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Number(tok.Float()), nil
	case '[':
		var elems []Value
		for dec.PeekKind() != ']' {
			elem, err := parseValue(dec, depth+1)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, elem)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return Array(elems...), nil
	case '{':
		var members []Member
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return Value{}, err
			}
			// Tokens are voided by the next decoder call, so the key
			// must be materialized before descending into the value.
			key := name.String()
			value, err := parseValue(dec, depth+1)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key, Value: value})
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return Object(members...), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}
