package jcs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies one of the six JSON value cases.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a closed representation of a JSON value. The zero Value is
// null. A Value has no lifecycle beyond a single canonicalization call:
// it is built from caller input or parsed bytes, rendered once, and
// discarded.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	elems   []Value
	members []Member
}

// Member is one object member. Insertion order is preserved in the model
// but never in canonical output, where members sort by key.
type Member struct {
	Key   string
	Value Value
}

// Kind reports which of the six cases the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: elems}
}

func Object(members ...Member) Value {
	return Value{kind: KindObject, members: members}
}

// Field builds an object member.
func Field(key string, value Value) Member {
	return Member{Key: key, Value: value}
}

// FromAny maps a Go value onto the value model. Supported inputs: nil,
// bool, string, all integer and float types, json.Number, []any,
// map[string]any, []Value, Member slices via Object, and Value itself.
// Anything else fails with ErrUnsupportedType.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			// The type is supported; the content is not a number.
			return Value{}, fmt.Errorf("%w: json.Number %q", ErrParse, x.String())
		}
		return Number(f), nil
	case []Value:
		return Array(append([]Value(nil), x...)...), nil
	case []any:
		elems := make([]Value, 0, len(x))
		for _, item := range x {
			elem, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, elem)
		}
		return Array(elems...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		members := make([]Member, 0, len(keys))
		for _, key := range keys {
			value, err := FromAny(x[key])
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key, Value: value})
		}
		return Object(members...), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}
