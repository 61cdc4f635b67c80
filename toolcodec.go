package toolcodec

import (
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/invopop/jsonschema"
)

// Chat roles understood by the Transformer.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleFunction  = "function" // legacy single-function responses
)

// Sentinel tokens of the text protocol. They are literal and case-sensitive.
const (
	StartToolCall    = "starttoolcall"
	EndToolCall      = "endtoolcall"
	StartObservation = "start observation "
	EndObservation   = " end observation"
)

// ToolTypeFunction is the only tool type the protocol knows about.
const ToolTypeFunction = "function"

// ToolDefinition describes one callable function shown to the model.
// It is read-only for every codec operation.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// UnmarshalJSON accepts both the flat form {"name":...} and the provider
// wrapper form {"type":"function","function":{"name":...}}. Parameter schema
// shapes jsonschema.Schema cannot hold, such as "type": ["string","null"],
// are narrowed first so they render instead of failing the whole definition.
func (d *ToolDefinition) UnmarshalJSON(data []byte) error {
	if inner, typ, _, err := jsonparser.Get(data, "function"); err == nil && typ == jsonparser.Object {
		data = inner
	}
	var wire struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	def := ToolDefinition{Name: wire.Name, Description: wire.Description}
	if params := lenientSchema(wire.Parameters); len(params) > 0 && string(params) != "null" {
		def.Parameters = new(jsonschema.Schema)
		if err := json.Unmarshal(params, def.Parameters); err != nil {
			return err
		}
	}
	*d = def
	return nil
}

// Message is one entry of a chat history.
type Message struct {
	Role         string            `json:"role"`
	Content      string            `json:"content"`
	Name         string            `json:"name,omitempty"`
	ToolCalls    []ToolCallRequest `json:"tool_calls,omitempty"`
	FunctionCall *FunctionCall     `json:"function_call,omitempty"`
	ToolCallID   string            `json:"tool_call_id,omitempty"` // role=tool only
}

// ToolCallRequest is a tool invocation recorded on an assistant message.
type ToolCallRequest struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall is the name/arguments pair of a call. It is also the legacy
// single function_call shape and the JSON payload between call sentinels.
type FunctionCall struct {
	Name      string    `json:"name"`
	Arguments Arguments `json:"arguments"`
}

// ToolCall is a structured call decoded from raw model output.
type ToolCall struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kwargs string `json:"kwargs"` // string-serialized arguments
	Type   string `json:"type"`
}

// Request is the part of a chat completion request the codec consumes.
// Tools takes precedence over the legacy Functions list.
type Request struct {
	Messages  []Message        `json:"messages"`
	Tools     []ToolDefinition `json:"tools,omitempty"`
	Functions []ToolDefinition `json:"functions,omitempty"`
}

// Definitions returns the tool definitions to render for this request.
func (r Request) Definitions() []ToolDefinition {
	if len(r.Tools) > 0 {
		return r.Tools
	}
	return r.Functions
}
