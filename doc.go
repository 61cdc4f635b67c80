// Package toolcodec encodes tool catalogs and chat histories into the plain-text
// tool-calling protocol understood by sentinel-trained models, and decodes the
// calls such a model emits back into structured form.
//
// # Overview
//
// Models fine-tuned for this protocol read tools as TypeScript-like signatures in
// the system prompt and answer with calls wrapped in sentinel tokens:
//
//	starttoolcall{"name": "get_weather", "arguments": {"city": "Paris"}}endtoolcall
//
// Tool results are fed back as a single user message:
//
//	start observation ["22C, sunny"] end observation
//
// Pipeline: Request (messages + tool definitions) → Transformer.Encode → flat
// messages for the model → raw completion text → Transformer.Decode → []ToolCall.
//
// # Key concepts
//
//   - Best effort: decoding never fails as a whole. A candidate that cannot be
//     repaired or parsed is dropped and reported to the logger and WithOnDrop;
//     the other candidates still decode.
//   - Repair: near-JSON payloads are coerced through a Repairer (default: jsonrepair),
//     bounded by WithRepairTimeout and guarded against panics.
//   - Ordering: catalog order follows the tool list, property order follows the schema,
//     observation order follows call registration, and decoded calls keep text order.
//
// See FormatCatalog, RenderSignature, Extractor and Transformer for the entry points.
//
// # Example
//
//	type Args struct {
//	    City string `json:"city" description:"City name"`
//	}
//	def, err := toolcodec.NewToolDefinition[Args]("get_weather", "Get the current weather")
//	if err != nil { ... }
//	tr := toolcodec.NewTransformer()
//	enc := tr.Encode(ctx, toolcodec.Request{Messages: history, Tools: []toolcodec.ToolDefinition{def}})
//	// send enc.Messages to the model ...
//	calls := tr.Decode(ctx, completion, enc.Names)
package toolcodec
