package testutil

import (
	"io"
	"log/slog"
	"time"

	"github.com/skosovsky/toolcodec"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestExtractor returns an Extractor with deterministic ids (call_1, call_2, ...),
// a silent logger and a generous repair timeout. opts are applied last.
func NewTestExtractor(opts ...toolcodec.Option) *toolcodec.Extractor {
	return toolcodec.NewExtractor(append(testDefaults(), opts...)...)
}

// NewTestTransformer is NewTestExtractor for Transformer.
func NewTestTransformer(opts ...toolcodec.Option) *toolcodec.Transformer {
	return toolcodec.NewTransformer(append(testDefaults(), opts...)...)
}

func testDefaults() []toolcodec.Option {
	return []toolcodec.Option{
		toolcodec.WithIDGenerator(&SequenceIDs{}),
		toolcodec.WithLogger(DiscardLogger()),
		toolcodec.WithRepairTimeout(30 * time.Second),
	}
}
