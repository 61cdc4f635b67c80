package toolcodec

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/invopop/jsonschema"
)

// Comments are the doc lines produced while encoding one schema fragment.
// Empty fields were not produced.
type Comments struct {
	Description string
	Enum        string
	Integer     string
}

// Lines returns the non-empty comments in description, enum, integer order.
func (c Comments) Lines() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{c.Description, c.Enum, c.Integer} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// signatureWriter renders schema fragments into type expressions and collects
// the interface blocks generated for object-typed fragments along the way.
type signatureWriter struct {
	prefix     string
	interfaces []string
	used       map[string]int
}

func newSignatureWriter(prefix string) *signatureWriter {
	return &signatureWriter{prefix: prefix, used: make(map[string]int)}
}

// encode maps one schema fragment to a type expression. Unknown or missing
// keywords fall back to "any"; it never fails. nested holds the comments of
// an interface generated for an object fragment.
func (w *signatureWriter) encode(s *jsonschema.Schema, param string, path []string) (typ string, c Comments, nested []string) {
	typ = "any"
	if s == nil {
		return typ, c, nil
	}
	switch s.Type {
	case "array":
		item := "any"
		if s.Items != nil {
			item, c, nested = w.encode(s.Items, param, path)
		}
		typ = item + "[]"
	case "object":
		if len(s.Enum) == 0 {
			typ, nested = w.generateInterface(s, w.interfaceName(path), path)
		}
	case "integer":
		typ = "number"
		c.Integer = " * @param " + param + " - Integer"
	case "number", "boolean", "null", "string":
		typ = s.Type
	}
	if len(s.Enum) > 0 {
		c.Enum = " * @enum " + param + " - Possible values: " + enumValues(s.Enum)
		typ = "string"
	}
	if s.Description != "" {
		c.Description = " * @param " + param + " - " + s.Description
	}
	return typ, c, nested
}

// generateInterface renders `interface name {...}` for an object fragment and
// returns the name to use as the type together with the aggregated property comments.
// The block is reserved before properties are visited so parents precede children.
func (w *signatureWriter) generateInterface(s *jsonschema.Schema, name string, path []string) (string, []string) {
	idx := len(w.interfaces)
	w.interfaces = append(w.interfaces, "")

	var body, comments []string
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			propPath := append(append(make([]string, 0, len(path)+1), path...), pair.Key)
			propType, c, nested := w.encode(pair.Value, pair.Key, propPath)
			body = append(body, "    "+pair.Key+optionalMark(pair.Key, s.Required)+": "+propType+";")
			comments = append(comments, c.Lines()...)
			comments = append(comments, nested...)
		}
	}

	w.interfaces[idx] = "interface " + name + " {\n" + strings.Join(body, "\n") + "\n}"
	return name, comments
}

// interfaceName derives a unique interface name from the property path,
// e.g. get_weather_LocationParams or get_weather_Location_GeoParams.
func (w *signatureWriter) interfaceName(path []string) string {
	segments := make([]string, 0, len(path)+1)
	segments = append(segments, w.prefix)
	for _, p := range path {
		segments = append(segments, capitalize(p))
	}
	name := strings.Join(segments, "_") + "Params"
	n := w.used[name]
	w.used[name] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s%d", name, n+1)
	}
	return name
}

// GenerateInterface renders the interface block for an object schema under the given name.
// Interfaces for nested object properties follow the main block, separated by a blank line.
// The returned comments are the per-property doc lines in declaration order.
func GenerateInterface(schema *jsonschema.Schema, name string) (string, []string) {
	w := newSignatureWriter(name)
	w.used[name] = 1
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object"}
	}
	_, comments := w.generateInterface(schema, name, nil)
	return strings.Join(w.interfaces, "\n\n"), comments
}

// RenderSignature renders one tool as a doc-commented function declaration:
//
//	/**
//	 * <description>
//	 * @param city - City name
//	 */
//	function get_weather(city: string, unit?: string): any {};
//
// Interface blocks for object-typed parameters sit between the comment and the declaration.
// Parameter optionality mirrors the top-level required list. The return type is always any.
func RenderSignature(def ToolDefinition) string {
	w := newSignatureWriter(def.Name)
	var args, comments []string
	if params := def.Parameters; params != nil && params.Properties != nil {
		for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
			typ, c, nested := w.encode(pair.Value, pair.Key, []string{pair.Key})
			comments = append(comments, c.Lines()...)
			comments = append(comments, nested...)
			args = append(args, pair.Key+optionalMark(pair.Key, params.Required)+": "+typ)
		}
	}

	var b strings.Builder
	b.WriteString("/**\n")
	if def.Description != "" {
		b.WriteString(" * ")
		b.WriteString(def.Description)
		b.WriteString("\n")
	}
	for _, c := range comments {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString(" */\n")
	if len(w.interfaces) > 0 {
		b.WriteString(strings.Join(w.interfaces, "\n\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("function ")
	b.WriteString(def.Name)
	b.WriteString("(")
	b.WriteString(strings.Join(args, ", "))
	b.WriteString("): any {};")
	return b.String()
}

func optionalMark(name string, required []string) string {
	if slices.Contains(required, name) {
		return ""
	}
	return "?"
}

func enumValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = `"` + s + `"`
			continue
		}
		b, err := marshalJSON(v)
		if err != nil {
			parts[i] = fmt.Sprint(v)
			continue
		}
		parts[i] = string(b)
	}
	return strings.Join(parts, ", ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
