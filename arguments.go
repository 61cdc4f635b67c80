package toolcodec

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
)

// ArgumentsKind tags the JSON value held by Arguments.
type ArgumentsKind int

const (
	ArgumentsAbsent ArgumentsKind = iota
	ArgumentsString
	ArgumentsObject
	ArgumentsArray
	ArgumentsNumber
	ArgumentsBool
	ArgumentsNull
)

func (k ArgumentsKind) String() string {
	switch k {
	case ArgumentsString:
		return "string"
	case ArgumentsObject:
		return "object"
	case ArgumentsArray:
		return "array"
	case ArgumentsNumber:
		return "number"
	case ArgumentsBool:
		return "bool"
	case ArgumentsNull:
		return "null"
	default:
		return "absent"
	}
}

// Arguments holds call arguments as any JSON value. Providers send them either
// as an object or as the string-serialized form of one; both are kept as-is
// and converted explicitly with String and Normalize.
type Arguments struct {
	raw json.RawMessage
}

// ArgumentsFromJSON wraps a JSON value. Text that is not valid JSON is kept
// as a JSON string holding that text.
func ArgumentsFromJSON(raw []byte) Arguments {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Arguments{}
	}
	if !json.Valid(raw) {
		return ArgumentsFromString(string(raw))
	}
	return Arguments{raw: append(json.RawMessage(nil), raw...)}
}

// ArgumentsFromString wraps s as a JSON string value.
func ArgumentsFromString(s string) Arguments {
	b, err := marshalJSON(s)
	if err != nil {
		return Arguments{}
	}
	return Arguments{raw: b}
}

// Kind reports which JSON type the arguments hold.
func (a Arguments) Kind() ArgumentsKind {
	if len(a.raw) == 0 {
		return ArgumentsAbsent
	}
	_, typ, _, err := jsonparser.Get(a.raw)
	if err != nil {
		return ArgumentsAbsent
	}
	switch typ {
	case jsonparser.String:
		return ArgumentsString
	case jsonparser.Object:
		return ArgumentsObject
	case jsonparser.Array:
		return ArgumentsArray
	case jsonparser.Number:
		return ArgumentsNumber
	case jsonparser.Boolean:
		return ArgumentsBool
	case jsonparser.Null:
		return ArgumentsNull
	default:
		return ArgumentsAbsent
	}
}

// String returns the string-serialized form: the text of a String value,
// compact JSON for every other kind, and "" when absent.
func (a Arguments) String() string {
	switch a.Kind() {
	case ArgumentsAbsent:
		return ""
	case ArgumentsString:
		var s string
		if err := json.Unmarshal(a.raw, &s); err != nil {
			return ""
		}
		return s
	default:
		return string(compactJSON(a.raw))
	}
}

// Normalize returns the JSON form of the arguments. A String whose text is
// itself JSON becomes that JSON value; absent or null arguments become {}.
func (a Arguments) Normalize() Arguments {
	switch a.Kind() {
	case ArgumentsAbsent, ArgumentsNull:
		return Arguments{raw: json.RawMessage(`{}`)}
	case ArgumentsString:
		s := strings.TrimSpace(a.String())
		if s != "" && json.Valid([]byte(s)) {
			return Arguments{raw: compactJSON([]byte(s))}
		}
		return a
	default:
		return Arguments{raw: compactJSON(a.raw)}
	}
}

// Raw returns the underlying JSON value (nil when absent).
func (a Arguments) Raw() json.RawMessage {
	return a.raw
}

// MarshalJSON implements json.Marshaler.
func (a Arguments) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	a.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// compactJSON elides insignificant whitespace; invalid input is returned unchanged.
func compactJSON(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}

// marshalJSON encodes v without HTML escaping so <, > and & stay literal in prompts.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
