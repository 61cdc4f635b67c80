package toolcodec

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// IDGenerator produces call ids for decoded tool calls. Implementations must be
// safe for concurrent use; one generator is typically shared process-wide.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to the IDGenerator interface.
type IDFunc func() string

// NewID calls f().
func (f IDFunc) NewID() string { return f() }

// UUIDGenerator returns 8 lowercase hex characters taken from a random UUID.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}
