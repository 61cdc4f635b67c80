package toolcodec

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolcodec. Use errors.Is to check.
// None of them aborts a transformation: the failing unit is dropped and the
// error is reported through the drop hook (see WithOnDrop) and the logger.
var (
	ErrRepair            = errors.New("json repair failed")
	ErrRepairTimeout     = errors.New("json repair timeout")
	ErrParse             = errors.New("tool call payload is not a valid call object")
	ErrUnmatchedToolCall = errors.New("tool response references unknown tool call id")
	ErrOrphanEndMarker   = errors.New("end marker without start marker")
)

// RepairError is a candidate payload the Repairer could not coerce into JSON.
// Err wraps the repairer's error; errors.Is(err, ErrRepair) always holds.
type RepairError struct {
	Err error
}

func (e *RepairError) Error() string {
	if e.Err == nil {
		return ErrRepair.Error()
	}
	return fmt.Sprintf("%s: %v", ErrRepair, e.Err)
}

// Unwrap supports errors.Is/errors.As on both ErrRepair and the wrapped cause.
func (e *RepairError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRepair}
	}
	return []error{ErrRepair, e.Err}
}

// ParseError is a candidate that was repaired but still is not a call object.
type ParseError struct {
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q", ErrParse, truncate(e.Payload, 64))
	}
	return fmt.Sprintf("%s: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// CorrelationError is a tool-role message whose tool_call_id was never
// registered by an earlier assistant tool call.
type CorrelationError struct {
	ToolCallID string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnmatchedToolCall, e.ToolCallID)
}

func (e *CorrelationError) Unwrap() error { return ErrUnmatchedToolCall }

// IsRepairError returns true if err is or wraps a RepairError.
func IsRepairError(err error) bool {
	var re *RepairError
	return errors.As(err, &re)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// panicError wraps a recovered panic value; used by WithRepairRecovery.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
