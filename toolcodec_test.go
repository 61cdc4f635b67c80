package toolcodec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestToolDefinition_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{"flat", `{"name":"get_weather","description":"Weather","parameters":{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}}`},
		{"wrapped", `{"type":"function","function":{"name":"get_weather","description":"Weather","parameters":{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var def ToolDefinition
			require.NoError(t, json.Unmarshal([]byte(tt.in), &def))
			assert.Equal(t, "get_weather", def.Name)
			assert.Equal(t, "Weather", def.Description)
			require.NotNil(t, def.Parameters)
			assert.Equal(t, "object", def.Parameters.Type)
			assert.Equal(t, []string{"city"}, def.Parameters.Required)
			city, ok := def.Parameters.Properties.Get("city")
			require.True(t, ok)
			assert.Equal(t, "string", city.Type)
		})
	}
}

func TestToolDefinition_PropertyOrder(t *testing.T) {
	t.Parallel()
	var def ToolDefinition
	in := `{"name":"f","parameters":{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"string"},"mid":{"type":"string"}}}}`
	require.NoError(t, json.Unmarshal([]byte(in), &def))
	var keys []string
	for pair := def.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

func TestToolDefinition_UnmarshalJSON_LenientSchema(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		prop string
		want string
	}{
		{"nullable union", `{"type":["string","null"]}`, "a?: string"},
		{"null first", `{"type":["null","integer"]}`, "a?: number"},
		{"only null", `{"type":["null"]}`, "a?: any"},
		{"tuple items", `{"type":"array","items":[{"type":"boolean"},{"type":"string"}]}`, "a?: boolean[]"},
		{"empty tuple", `{"type":"array","items":[]}`, "a?: any[]"},
		{"nested union", `{"type":"object","properties":{"b":{"type":["number","null"]}}}`, "b?: number;"},
		{"any of", `{"anyOf":[{"type":["string","null"]}]}`, "a?: any"},
		{"draft4 exclusive bound", `{"type":"number","minimum":0,"exclusiveMinimum":true}`, "a?: number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := `{"type":"function","function":{"name":"f","parameters":{"type":"object","properties":{"a":` + tt.prop + `}}}}`
			var def ToolDefinition
			require.NoError(t, json.Unmarshal([]byte(in), &def))
			assert.Contains(t, FormatCatalog([]ToolDefinition{def}).Text, tt.want)
		})
	}
}

func TestToolDefinition_UnmarshalJSON_LenientKeepsOrder(t *testing.T) {
	t.Parallel()
	var def ToolDefinition
	in := `{"name":"f","parameters":{"type":"object","properties":{"zeta":{"type":["string","null"]},"alpha":{"type":"integer"},"mid":{"type":["boolean","null"]}},"required":["alpha"]}}`
	require.NoError(t, json.Unmarshal([]byte(in), &def))
	assert.Contains(t, RenderSignature(def), "function f(zeta?: string, alpha: number, mid?: boolean): any {};")
}

func TestToolDefinition_UnmarshalJSON_NoParameters(t *testing.T) {
	t.Parallel()
	for _, in := range []string{`{"name":"f"}`, `{"name":"f","parameters":null}`} {
		var def ToolDefinition
		require.NoError(t, json.Unmarshal([]byte(in), &def))
		assert.Equal(t, "f", def.Name)
		assert.Nil(t, def.Parameters)
	}
}

func TestRequest_Definitions(t *testing.T) {
	t.Parallel()
	tool := ToolDefinition{Name: "tool"}
	fn := ToolDefinition{Name: "fn"}
	tests := []struct {
		name   string
		req    Request
		expect []ToolDefinition
	}{
		{"tools only", Request{Tools: []ToolDefinition{tool}}, []ToolDefinition{tool}},
		{"functions only", Request{Functions: []ToolDefinition{fn}}, []ToolDefinition{fn}},
		{"tools win", Request{Tools: []ToolDefinition{tool}, Functions: []ToolDefinition{fn}}, []ToolDefinition{tool}},
		{"none", Request{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, tt.req.Definitions())
		})
	}
}

func TestMessage_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	in := `{"role":"assistant","content":null,"tool_calls":[` +
		`{"id":"c1","type":"function","function":{"name":"f","arguments":"{\"x\": 1}"}},` +
		`{"id":"c2","type":"function","function":{"name":"g","arguments":{"y":[1,2]}}}]}`
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(in), &msg))
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Empty(t, msg.Content)
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "c1", msg.ToolCalls[0].ID)
	assert.Equal(t, ArgumentsString, msg.ToolCalls[0].Function.Arguments.Kind())
	assert.Equal(t, `{"x": 1}`, msg.ToolCalls[0].Function.Arguments.String())
	assert.Equal(t, ArgumentsObject, msg.ToolCalls[1].Function.Arguments.Kind())
	assert.Equal(t, `{"y":[1,2]}`, msg.ToolCalls[1].Function.Arguments.String())
}
