package toolcodec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairError(t *testing.T) {
	tests := []struct {
		name   string
		err    *RepairError
		expect string
	}{
		{"with cause", &RepairError{Err: errors.New("unexpected end")}, "json repair failed: unexpected end"},
		{"no cause", &RepairError{}, "json repair failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrRepair)
		})
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Payload: strings.Repeat("x", 100)}
	assert.Contains(t, err.Error(), ErrParse.Error())
	assert.Contains(t, err.Error(), "...")
	assert.ErrorIs(t, err, ErrParse)

	cause := errors.New("missing name")
	err = &ParseError{Payload: "{}", Err: cause}
	assert.Equal(t, ErrParse.Error()+": missing name", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCorrelationError(t *testing.T) {
	err := &CorrelationError{ToolCallID: "abc"}
	assert.Equal(t, `tool response references unknown tool call id: "abc"`, err.Error())
	assert.Same(t, ErrUnmatchedToolCall, err.Unwrap())
}

func TestErrorsIs_As(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  error
		is      bool
		asRep   bool
		asParse bool
	}{
		{"RepairError direct", &RepairError{Err: ErrRepairTimeout}, ErrRepairTimeout, true, true, false},
		{"ParseError direct", &ParseError{Payload: "x"}, ErrParse, true, false, true},
		{"wrapped RepairError", wrapErr{err: &RepairError{Err: ErrRepairTimeout}}, ErrRepairTimeout, true, true, false},
		{"wrapped ParseError", wrapErr{err: &ParseError{}}, ErrRepair, false, false, true},
		{"CorrelationError", &CorrelationError{ToolCallID: "x"}, ErrUnmatchedToolCall, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.is, errors.Is(tt.err, tt.target), "errors.Is")
			assert.Equal(t, tt.asRep, IsRepairError(tt.err), "IsRepairError")
			assert.Equal(t, tt.asParse, IsParseError(tt.err), "IsParseError")
		})
	}
}

func TestPanicError(t *testing.T) {
	err := &RepairError{Err: &panicError{p: "boom"}}
	require.Error(t, err)
	assert.Equal(t, "json repair failed: panic: boom", err.Error())
}

type wrapErr struct {
	err error
}

func (e wrapErr) Error() string {
	if e.err == nil {
		return ""
	}
	return "wrap: " + e.err.Error()
}
func (e wrapErr) Unwrap() error { return e.err }
