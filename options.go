package toolcodec

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSystemPrompt opens the synthesized system message when a request has none.
const DefaultSystemPrompt = "You are a helpful assistant."

// options hold settings shared by Extractor and Transformer.
type options struct {
	logger         *slog.Logger
	repairer       Repairer
	repairTimeout  time.Duration
	ids            IDGenerator
	maxConcurrency int
	strictSegments bool
	onDrop         func(context.Context, error)
	systemPrompt   string
}

func defaultOptions() options {
	return options{
		logger:         slog.Default(),
		repairer:       DefaultRepairer(),
		repairTimeout:  2 * time.Second,
		ids:            UUIDGenerator{},
		maxConcurrency: 4,
		systemPrompt:   DefaultSystemPrompt,
	}
}

// Option configures an Extractor or a Transformer (e.g. WithRepairer, WithLogger).
type Option func(*options)

// WithLogger sets the logger used to report dropped calls and unmatched tool responses.
// A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRepairer replaces the JSON repair collaborator (default: DefaultRepairer).
func WithRepairer(r Repairer) Option {
	return func(o *options) {
		if r != nil {
			o.repairer = r
		}
	}
}

// WithRepairTimeout bounds every repair call. Pass 0 or negative to disable the bound.
func WithRepairTimeout(d time.Duration) Option {
	return func(o *options) {
		o.repairTimeout = d
	}
}

// WithIDGenerator sets the generator for decoded call ids (default: UUIDGenerator).
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithMaxConcurrency limits how many candidates are repaired at once.
// Pass 1 or less to process candidates sequentially.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}

// WithStrictSegments reports text between two end markers that has no start marker
// (ErrOrphanEndMarker) instead of skipping it silently.
func WithStrictSegments() Option {
	return func(o *options) {
		o.strictSegments = true
	}
}

// WithOnDrop sets a hook called for every dropped unit: unrepairable or unparsable
// candidates, orphan segments in strict mode, and unmatched tool responses.
// Calls are serialized; the hook does not need to be thread-safe.
func WithOnDrop(fn func(context.Context, error)) Option {
	return func(o *options) {
		o.onDrop = fn
	}
}

// WithSystemPrompt sets the text of the synthesized system message (default: DefaultSystemPrompt).
func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.systemPrompt = prompt
	}
}
