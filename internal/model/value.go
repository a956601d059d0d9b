package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the typed parameter value union.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBool
	KindInt
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a typed parameter value. Raw parameter strings are coerced exactly
// once, during validation; after that every consumer reads typed data.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	Int  int
	List []string
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int) Value       { return Value{Kind: KindInt, Int: i} }
func ListValue(l []string) Value { return Value{Kind: KindList, List: l} }

// Render returns the canonical string form of the value. Lists render
// comma-separated, the same shape CoerceValue accepts.
func (v Value) Render() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindList:
		return strings.Join(v.List, ",")
	default:
		return v.Str
	}
}

// CoerceValue converts a raw parameter string into a typed Value. In the
// workflow script every value is a quoted string; the declared kind decides
// how it is interpreted.
func CoerceValue(kind ValueKind, raw string) (Value, error) {
	switch kind {
	case KindString:
		return StringValue(raw), nil
	case KindBool:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return Value{}, fmt.Errorf("not a boolean: %q", raw)
		}
		return BoolValue(b), nil
	case KindInt:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("not an integer: %q", raw)
		}
		return IntValue(i), nil
	case KindList:
		parts := strings.Split(raw, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return ListValue(list), nil
	default:
		return Value{}, fmt.Errorf("unsupported value kind %v", kind)
	}
}

// ParamSpec is the static metadata a command declares for one parameter.
type ParamSpec struct {
	Name     string
	Required bool
	Kind     ValueKind
	// Enum, when non-empty, lists the accepted values (compared
	// case-insensitively against the expanded string form).
	Enum []string
}

// AllowsValue reports whether raw is acceptable under the spec's Enum
// restriction. Specs without an Enum accept everything.
func (ps ParamSpec) AllowsValue(raw string) bool {
	if len(ps.Enum) == 0 {
		return true
	}
	for _, e := range ps.Enum {
		if strings.EqualFold(e, raw) {
			return true
		}
	}
	return false
}
