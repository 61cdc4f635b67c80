package toolcodec

import (
	"context"
	"strings"
)

// Transformer converts between structured chat histories and the flat
// sentinel stream a tool-calling model is trained on.
type Transformer struct {
	extractor *Extractor
	opts      options
}

// Encoded is the result of Transformer.Encode.
type Encoded struct {
	Messages []Message `json:"messages"`
	// Names maps sanitized tool names back to the originals; pass it to Decode
	// to restore them. Nil when the request carried no tools.
	Names NameMap `json:"names,omitempty"`
}

// NewTransformer creates a Transformer. Options are shared with its Extractor.
func NewTransformer(opts ...Option) *Transformer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Transformer{extractor: newExtractor(o), opts: o}
}

// Extractor returns the extractor used by Decode.
func (t *Transformer) Extractor() *Extractor { return t.extractor }

// Encode flattens req into the message list sent to the model. Without tool or
// function definitions the messages are returned unchanged. Otherwise the tool
// catalog is attached to the system message (one is synthesized when the
// history does not open with one), assistant calls become call sentinels and
// tool responses are grouped into observation messages.
func (t *Transformer) Encode(ctx context.Context, req Request) Encoded {
	defs := req.Definitions()
	if len(defs) == 0 {
		return Encoded{Messages: req.Messages}
	}
	catalog := FormatCatalog(defs)
	if len(req.Messages) == 0 {
		return Encoded{Messages: req.Messages, Names: catalog.Names}
	}
	sanitized := make(map[string]string, len(catalog.Names))
	for s, orig := range catalog.Names {
		sanitized[orig] = s
	}

	out := make([]Message, 0, len(req.Messages)+2)
	first := req.Messages[0]
	if first.Role == RoleSystem {
		first.Content += "\n" + catalog.Text
		out = append(out, first)
	} else {
		out = append(out,
			Message{Role: RoleSystem, Content: t.opts.systemPrompt + "\n" + catalog.Text},
			first,
		)
	}

	pending := newPendingObservations()
	for _, msg := range req.Messages[1:] {
		if msg.Role != RoleTool {
			if obs, ok := pending.flush(); ok {
				out = append(out, obs)
			}
		}
		switch {
		case msg.Role == RoleAssistant && (len(msg.ToolCalls) > 0 || msg.FunctionCall != nil):
			out = append(out, Message{
				Role:    RoleAssistant,
				Content: t.renderCalls(ctx, msg, pending, sanitized),
			})
		case msg.Role == RoleTool:
			if !pending.fill(msg.ToolCallID, msg.Content) {
				t.extractor.drop(ctx, &CorrelationError{ToolCallID: msg.ToolCallID})
			}
		case msg.Role == RoleFunction:
			out = append(out, observationMessage([]string{msg.Content}))
		default:
			out = append(out, msg)
		}
	}
	if obs, ok := pending.flush(); ok {
		out = append(out, obs)
	}
	return Encoded{Messages: out, Names: catalog.Names}
}

// renderCalls renders the calls of one assistant message, newline-joined, and
// registers the ids of structured tool calls as pending observations.
func (t *Transformer) renderCalls(ctx context.Context, msg Message, pending *pendingObservations, sanitized map[string]string) string {
	if len(msg.ToolCalls) == 0 {
		return t.wrapCall(ctx, *msg.FunctionCall, sanitized)
	}
	parts := make([]string, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		pending.register(tc.ID)
		parts = append(parts, t.wrapCall(ctx, tc.Function, sanitized))
	}
	return strings.Join(parts, "\n")
}

// wrapCall renders one call as starttoolcall{"name":...,"arguments":...}endtoolcall.
func (t *Transformer) wrapCall(ctx context.Context, fc FunctionCall, sanitized map[string]string) string {
	if s, ok := sanitized[fc.Name]; ok {
		fc.Name = s
	}
	fc.Arguments = fc.Arguments.Normalize()
	body, err := marshalJSON(fc)
	if err != nil {
		t.opts.logger.WarnContext(ctx, "tool call not rendered", "name", fc.Name, "error", err)
		body = []byte(`{"name":` + quoteJSON(fc.Name) + `,"arguments":{}}`)
	}
	return StartToolCall + string(body) + EndToolCall
}

// Decode extracts the tool calls from raw model output. When names is non-nil,
// sanitized call names are restored to their original spelling.
func (t *Transformer) Decode(ctx context.Context, raw string, names NameMap) []ToolCall {
	calls := t.extractor.Extract(ctx, raw)
	if names != nil {
		calls = names.RestoreCalls(calls)
	}
	return calls
}

func quoteJSON(s string) string {
	b, err := marshalJSON(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
