package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a frontmatter value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindDate
	KindArray
	KindObject
	KindNull
	// Hybrid kinds mark raw strings that also parse as another type, so
	// consumers can choose either representation.
	KindStringNumber
	KindStringBoolean
	KindStringDate
)

// String returns the storage name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindNull:
		return "null"
	case KindStringNumber:
		return "string_number"
	case KindStringBoolean:
		return "string_boolean"
	case KindStringDate:
		return "string_date"
	}
	return "string"
}

// Value is a closed tagged-variant representation of a frontmatter value.
// Exactly the fields implied by Kind are meaningful; Array and Object recurse.
type Value struct {
	Kind   Kind
	Str    string
	Num    float64
	Bool   bool
	Time   time.Time
	Items  []Value
	Fields map[string]Value
}

// dateLayouts are the ISO-like formats recognised during type inference.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// booleanWords maps string spellings that read as booleans.
var booleanWords = map[string]bool{
	"true": true, "false": false,
	"yes": true, "no": false,
	"on": true, "off": false,
}

// InferValue classifies a decoded frontmatter value into a Value. It accepts
// the dynamic shapes produced by the YAML, TOML, and JSON decoders.
func InferValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBoolean, Bool: v}
	case int:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case uint64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case float64:
		return Value{Kind: KindNumber, Num: v}
	case time.Time:
		return Value{Kind: KindDate, Time: v}
	case string:
		return inferString(v)
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = InferValue(item)
		}
		return Value{Kind: KindArray, Items: items}
	case map[string]any:
		fields := make(map[string]Value, len(v))
		for k, item := range v {
			fields[k] = InferValue(item)
		}
		return Value{Kind: KindObject, Fields: fields}
	case map[any]any:
		fields := make(map[string]Value, len(v))
		for k, item := range v {
			fields[fmt.Sprint(k)] = InferValue(item)
		}
		return Value{Kind: KindObject, Fields: fields}
	default:
		return Value{Kind: KindString, Str: fmt.Sprint(v)}
	}
}

// inferString tags strings that also parse as a number, boolean, or date
// with the matching hybrid kind, preserving the original text in Str.
func inferString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: KindString, Str: s}
	}
	if b, ok := booleanWords[strings.ToLower(trimmed)]; ok {
		return Value{Kind: KindStringBoolean, Str: s, Bool: b}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Kind: KindStringNumber, Str: s, Num: n}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Value{Kind: KindStringDate, Str: s, Time: t}
		}
	}
	return Value{Kind: KindString, Str: s}
}

// Text returns the stringified form stored alongside the kind.
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindStringNumber, KindStringBoolean, KindStringDate:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		return v.Time.Format(time.RFC3339)
	case KindNull:
		return ""
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.Text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.Fields[k].Text()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.Str
}
