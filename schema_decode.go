package toolcodec

import (
	"bytes"

	"github.com/buger/jsonparser"
)

// Schema keywords whose value is a single subschema, a map of subschemas or a
// list of subschemas. Only these are walked by lenientSchema.
var (
	subschemaKeys = map[string]bool{
		"items": true, "additionalProperties": true, "additionalItems": true,
		"not": true, "contains": true, "if": true, "then": true, "else": true,
		"propertyNames": true, "unevaluatedItems": true, "unevaluatedProperties": true,
	}
	subschemaMapKeys = map[string]bool{
		"properties": true, "patternProperties": true, "$defs": true,
		"definitions": true, "dependentSchemas": true,
	}
	subschemaListKeys = map[string]bool{
		"anyOf": true, "oneOf": true, "allOf": true, "prefixItems": true,
	}
)

// lenientSchema rewrites the JSON Schema shapes jsonschema.Schema cannot hold
// into ones it can, keeping key order:
//   - "type": ["string","null"] becomes "string"; a list of only "null" is removed.
//   - "items": [{...}, ...] becomes its first element.
//   - boolean exclusiveMinimum/exclusiveMaximum are removed.
//
// Anything that is not an object is returned as is.
func lenientSchema(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return data
	}
	var b bytes.Buffer
	b.WriteByte('{')
	n := 0
	err := jsonparser.ObjectEach(data, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		k := string(key)
		out, keep := lenientKeyword(k, value, typ)
		if !keep {
			return nil
		}
		if n > 0 {
			b.WriteByte(',')
		}
		n++
		b.WriteString(quoteJSON(k))
		b.WriteByte(':')
		b.Write(out)
		return nil
	})
	if err != nil {
		return data
	}
	b.WriteByte('}')
	return b.Bytes()
}

// lenientKeyword returns the rewritten raw value of one schema keyword and
// whether the keyword is kept at all.
func lenientKeyword(key string, value []byte, typ jsonparser.ValueType) ([]byte, bool) {
	switch {
	case key == "type" && typ == jsonparser.Array:
		return firstNonNullType(value)
	case key == "items" && typ == jsonparser.Array:
		first, ok := firstElement(value)
		if !ok {
			return nil, false
		}
		return lenientSchema(first), true
	case (key == "exclusiveMinimum" || key == "exclusiveMaximum") && typ == jsonparser.Boolean:
		return nil, false
	case subschemaKeys[key] && typ == jsonparser.Object:
		return lenientSchema(value), true
	case subschemaMapKeys[key] && typ == jsonparser.Object:
		return lenientSchemaMap(value), true
	case subschemaListKeys[key] && typ == jsonparser.Array:
		return lenientSchemaList(value), true
	}
	return rawValue(value, typ), true
}

func lenientSchemaMap(data []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('{')
	n := 0
	err := jsonparser.ObjectEach(data, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		if n > 0 {
			b.WriteByte(',')
		}
		n++
		b.WriteString(quoteJSON(string(key)))
		b.WriteByte(':')
		if typ == jsonparser.Object {
			b.Write(lenientSchema(value))
		} else {
			b.Write(rawValue(value, typ))
		}
		return nil
	})
	if err != nil {
		return data
	}
	b.WriteByte('}')
	return b.Bytes()
}

func lenientSchemaList(data []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('[')
	n := 0
	_, err := jsonparser.ArrayEach(data, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if n > 0 {
			b.WriteByte(',')
		}
		n++
		if typ == jsonparser.Object {
			b.Write(lenientSchema(value))
		} else {
			b.Write(rawValue(value, typ))
		}
	})
	if err != nil {
		return data
	}
	b.WriteByte(']')
	return b.Bytes()
}

// firstNonNullType picks the first type name other than "null" from a type list.
func firstNonNullType(data []byte) ([]byte, bool) {
	var picked []byte
	_, _ = jsonparser.ArrayEach(data, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if picked != nil || typ != jsonparser.String || string(value) == "null" {
			return
		}
		picked = rawValue(value, typ)
	})
	return picked, picked != nil
}

func firstElement(data []byte) ([]byte, bool) {
	var first []byte
	_, _ = jsonparser.ArrayEach(data, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if first == nil {
			first = rawValue(value, typ)
		}
	})
	return first, first != nil
}

// rawValue restores the quotes jsonparser strips from string values.
func rawValue(value []byte, typ jsonparser.ValueType) []byte {
	if typ != jsonparser.String {
		return value
	}
	out := make([]byte, 0, len(value)+2)
	out = append(out, '"')
	out = append(out, value...)
	return append(out, '"')
}
