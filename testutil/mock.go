// Package testutil provides test helpers for toolcodec (e.g. MockRepairer, SequenceIDs).
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/skosovsky/toolcodec"
)

// MockRepairer is a configurable Repairer for tests. Without RepairFn it returns
// the input unchanged.
type MockRepairer struct {
	RepairFn func(ctx context.Context, text string) (string, error)
	calls    atomic.Int64
}

// Repair runs RepairFn if set, otherwise echoes text.
func (m *MockRepairer) Repair(ctx context.Context, text string) (string, error) {
	m.calls.Add(1)
	if m.RepairFn != nil {
		return m.RepairFn(ctx, text)
	}
	return text, nil
}

// Calls returns how many times Repair was invoked.
func (m *MockRepairer) Calls() int {
	return int(m.calls.Load())
}

// Ensure MockRepairer implements Repairer.
var _ toolcodec.Repairer = (*MockRepairer)(nil)

// SequenceIDs is an IDGenerator returning call_1, call_2, ... Safe for concurrent use.
type SequenceIDs struct {
	Prefix string
	n      atomic.Int64
}

// NewID returns the next id in the sequence.
func (s *SequenceIDs) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "call_"
	}
	return fmt.Sprintf("%s%d", prefix, s.n.Add(1))
}

// Ensure SequenceIDs implements IDGenerator.
var _ toolcodec.IDGenerator = (*SequenceIDs)(nil)
