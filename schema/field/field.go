package field

import "fmt"

// Type is the closed enum of schema field types.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBool
	TypeDateTime
	TypeDate
	TypeTime
	TypeUUID
	TypeText
	TypeJSON
	TypeBinary
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeString:   "string",
	TypeInteger:  "integer",
	TypeFloat:    "float",
	TypeBool:     "boolean",
	TypeDateTime: "datetime",
	TypeDate:     "date",
	TypeTime:     "time",
	TypeUUID:     "uuid",
	TypeText:     "text",
	TypeJSON:     "json",
	TypeBinary:   "binary",
}

// String returns the schema token for the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("invalid(%d)", t)
}

// Valid reports if the type is a member of the enum.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Parse resolves a schema type token against the enum. The second return
// value reports whether the token named a known type.
func Parse(token string) (Type, bool) {
	for t := TypeString; t < endTypes; t++ {
		if typeNames[t] == token {
			return t, true
		}
	}
	return TypeInvalid, false
}

// Types returns all valid types in enum order.
func Types() []Type {
	ts := make([]Type, 0, endTypes-1)
	for t := TypeString; t < endTypes; t++ {
		ts = append(ts, t)
	}
	return ts
}

// Stringy reports if the type is string-like and accepts a max_length
// constraint.
func (t Type) Stringy() bool {
	return t == TypeString || t == TypeText
}

// Numeric reports if the type is numeric.
func (t Type) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Temporal reports if the type carries date or time information.
func (t Type) Temporal() bool {
	return t == TypeDateTime || t == TypeDate || t == TypeTime
}

// Indexable reports if storage can build an index over the type. JSON and
// binary columns cannot be indexed portably.
func (t Type) Indexable() bool {
	return t.Valid() && t != TypeJSON && t != TypeBinary
}

// CompatibleDefault reports if a decoded YAML default literal is
// type-compatible with the field type. Temporal and UUID defaults are
// string literals (for example "now" or a fixed UUID); binary fields
// accept no default at all.
func (t Type) CompatibleDefault(v any) bool {
	switch t {
	case TypeString, TypeText, TypeUUID, TypeDateTime, TypeDate, TypeTime:
		_, ok := v.(string)
		return ok
	case TypeInteger:
		switch v.(type) {
		case int, int64, uint64:
			return true
		}
		return false
	case TypeFloat:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeJSON:
		switch v.(type) {
		case map[string]any, []any, string:
			return true
		}
		return false
	default:
		return false
	}
}
