package toolcodec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	customTypesMu sync.RWMutex
	customTypes   = make(map[reflect.Type]*jsonschema.Schema)
)

// RegisterType registers a custom Go type to be mapped to a JSON Schema type/format in schemas
// built by NewToolDefinition. emptyInstance is a value of the type to register (e.g. uuid.UUID{});
// it must not be nil. jsonType is the JSON Schema type (e.g. "string", "number"); it must not be empty.
// Pointer fields (*T) use the same mapping as T. Call RegisterType at startup before the first
// NewToolDefinition.
func RegisterType(emptyInstance any, jsonType, format string) {
	if emptyInstance == nil {
		panic("toolcodec: RegisterType emptyInstance must not be nil")
	}
	if jsonType == "" {
		panic("toolcodec: RegisterType jsonType must not be empty")
	}
	t := reflect.TypeOf(emptyInstance)
	customTypesMu.Lock()
	defer customTypesMu.Unlock()
	customTypes[t] = &jsonschema.Schema{Type: jsonType, Format: format}
}

// mapCustomType is the Reflector.Mapper hook; it returns a fresh schema for registered types.
func mapCustomType(t reflect.Type) *jsonschema.Schema {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	s, ok := customTypes[t]
	if !ok {
		return nil
	}
	return &jsonschema.Schema{Type: s.Type, Format: s.Format}
}

// NewToolDefinition builds a ToolDefinition whose parameters schema is reflected from the
// argument struct T. Property order follows field order; fields without omitempty are required.
// Besides jsonschema tags, plain `description:"..."` and `enum:"a,b"` tags are honored on
// top-level fields. Returns an error if T is not a struct or holds an unsupported type.
func NewToolDefinition[T any](name, description string) (def ToolDefinition, err error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return ToolDefinition{}, fmt.Errorf("toolcodec: arguments type %s is not a struct", typ)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("toolcodec: reflect schema for %s: %v", typ, p)
		}
	}()
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
		Mapper:         mapCustomType,
	}
	schema := r.ReflectFromType(typ)
	schema.Version = ""
	schema.ID = ""
	enrichSchemaFromStructTags(schema, typ)
	return ToolDefinition{Name: name, Description: description, Parameters: schema}, nil
}

// enrichSchemaFromStructTags adds description and enum from plain struct tags to root-level
// properties. The json tag name (before the comma) is used to match property keys.
func enrichSchemaFromStructTags(schema *jsonschema.Schema, typ reflect.Type) {
	if schema == nil || schema.Properties == nil {
		return
	}
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := strings.Split(field.Tag.Get("json"), ",")[0]
		if key == "" {
			key = field.Name
		}
		if key == "-" {
			continue
		}
		prop, ok := schema.Properties.Get(key)
		if !ok || prop == nil {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop.Description = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for i, p := range parts {
				enum[i] = strings.TrimSpace(p)
			}
			prop.Enum = enum
		}
	}
}
