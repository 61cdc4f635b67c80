package toolcodec

import (
	"context"

	"github.com/kaptinlin/jsonrepair"
)

// Repairer coerces near-JSON text (missing quotes, trailing commas, truncated
// objects, ...) into well-formed JSON text, or fails. Implementations must be
// safe for concurrent use; the Extractor repairs candidates in parallel.
type Repairer interface {
	Repair(ctx context.Context, text string) (string, error)
}

// RepairFunc adapts a function to the Repairer interface.
type RepairFunc func(ctx context.Context, text string) (string, error)

// Repair calls f(ctx, text).
func (f RepairFunc) Repair(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// DefaultRepairer returns the in-process jsonrepair-based Repairer.
func DefaultRepairer() Repairer {
	return RepairFunc(func(_ context.Context, text string) (string, error) {
		return jsonrepair.Repair(text)
	})
}
