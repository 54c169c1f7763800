package schema

import (
	"fmt"
	"math"
	"strings"
)

// FieldType is the declared type of a field.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeInt        FieldType = "int"
	TypeFloat      FieldType = "float"
	TypeBool       FieldType = "bool"
	TypeStringList FieldType = "list<string>"
	TypeIntList    FieldType = "list<int>"
	TypeFloatList  FieldType = "list<float>"
	TypeBoolList   FieldType = "list<bool>"
)

// FieldTypes lists every valid field type.
var FieldTypes = []FieldType{
	TypeString, TypeInt, TypeFloat, TypeBool,
	TypeStringList, TypeIntList, TypeFloatList, TypeBoolList,
}

// ParseFieldType validates a type name.
func ParseFieldType(name string) (FieldType, error) {
	for _, t := range FieldTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid field type %q", name)
}

// IsList reports whether t is a list type.
func (t FieldType) IsList() bool {
	return strings.HasPrefix(string(t), "list<")
}

// Elem returns the element type of a list type, or t itself.
func (t FieldType) Elem() FieldType {
	if !t.IsList() {
		return t
	}
	return FieldType(strings.TrimSuffix(strings.TrimPrefix(string(t), "list<"), ">"))
}

// ListOf returns the list type with element type t.
func ListOf(t FieldType) FieldType {
	return FieldType("list<" + string(t) + ">")
}

// Zero returns the value a template shows for a field without a default.
func (t FieldType) Zero() any {
	switch t {
	case TypeString:
		return ""
	case TypeInt:
		return 0
	case TypeFloat:
		return 0.0
	case TypeBool:
		return false
	default:
		return []any{}
	}
}

// TypeOf maps a decoded value to its field type. Empty lists and values of
// other shapes have no type.
func TypeOf(v any) (FieldType, bool) {
	switch x := v.(type) {
	case string:
		return TypeString, true
	case bool:
		return TypeBool, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt, true
	case float32, float64:
		return TypeFloat, true
	case []string:
		return TypeStringList, true
	case []int, []int64:
		return TypeIntList, true
	case []float64:
		return TypeFloatList, true
	case []bool:
		return TypeBoolList, true
	case []any:
		if len(x) == 0 {
			return "", false
		}
		elem, ok := TypeOf(x[0])
		if !ok || elem.IsList() {
			return "", false
		}
		for _, item := range x[1:] {
			t, ok := TypeOf(item)
			if !ok {
				return "", false
			}
			if t != elem {
				if widen(elem, t) != TypeFloat {
					return "", false
				}
				elem = TypeFloat
			}
		}
		return ListOf(elem), true
	default:
		return "", false
	}
}

// widen returns float when mixing int and float, otherwise "".
func widen(a, b FieldType) FieldType {
	if (a == TypeInt && b == TypeFloat) || (a == TypeFloat && b == TypeInt) {
		return TypeFloat
	}
	return ""
}

// Accepts reports whether v is a valid value for t. Ints are accepted for
// float fields and integral floats for int fields.
func (t FieldType) Accepts(v any) bool {
	if t.IsList() {
		items, ok := toList(v)
		if !ok {
			return false
		}
		for _, item := range items {
			if !t.Elem().Accepts(item) {
				return false
			}
		}
		return true
	}

	got, ok := TypeOf(v)
	if !ok {
		return false
	}
	switch {
	case got == t:
		return true
	case t == TypeFloat && got == TypeInt:
		return true
	case t == TypeInt && got == TypeFloat:
		f, _ := toFloat(v)
		return f == math.Trunc(f)
	default:
		return false
	}
}

// toList converts any supported slice to []any.
func toList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out, true
	case []bool:
		out := make([]any, len(x))
		for i, b := range x {
			out[i] = b
		}
		return out, true
	default:
		return nil, false
	}
}

// toFloat converts any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// toInt converts an integral numeric value to int64.
func toInt(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
