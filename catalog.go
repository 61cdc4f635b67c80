package toolcodec

import (
	"strings"
)

const catalogPreamble = "You have access to the following tools:\n"

const catalogPostamble = "You can choose to respond with one or more tool calls at once, or with a chat message back to the user. " +
	"Ensure you have all necessary details before making tool calls. If additional information is needed, ask the user appropriately. " +
	"Any tool call you make must correspond to the functions listed above. " +
	`If you decide to call a tool, format it like this: starttoolcall{"name": "<function_name>", "arguments": {"<arg1_name>": "<arg1_value>", "<arg2_name>": "<arg2_value>", ...}}endtoolcall ` +
	"where the JSON wrapped between starttoolcall and endtoolcall represents the function call.\n"

// NameMap maps sanitized tool names back to the names the caller registered.
// Only renamed tools are present.
type NameMap map[string]string

// Restore returns the original name for a sanitized one, or name unchanged.
func (m NameMap) Restore(name string) string {
	if orig, ok := m[name]; ok {
		return orig
	}
	return name
}

// RestoreCalls rewrites call names in place to their original spelling.
func (m NameMap) RestoreCalls(calls []ToolCall) []ToolCall {
	for i := range calls {
		calls[i].Name = m.Restore(calls[i].Name)
	}
	return calls
}

// Catalog is the rendered tool block for a system prompt.
type Catalog struct {
	Text  string
	Names NameMap
}

// SanitizeName replaces characters the signature syntax forbids in identifiers.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// FormatCatalog renders every tool, in the given order, between the fixed
// instruction preamble and the calling-convention postamble.
func FormatCatalog(tools []ToolDefinition) Catalog {
	names := make(NameMap)
	var b strings.Builder
	b.WriteString(catalogPreamble)
	for _, def := range tools {
		if sanitized := SanitizeName(def.Name); sanitized != def.Name {
			names[sanitized] = def.Name
			def.Name = sanitized
		}
		b.WriteString(RenderSignature(def))
		b.WriteString("\n\n")
	}
	b.WriteString(catalogPostamble)
	return Catalog{Text: b.String(), Names: names}
}
