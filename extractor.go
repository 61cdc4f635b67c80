package toolcodec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/buger/jsonparser"
)

var errMissingName = errors.New(`missing or non-string "name"`)

// Extractor decodes tool calls embedded in raw model output as
// starttoolcall{...}endtoolcall. It is safe for concurrent use.
type Extractor struct {
	repairer Repairer
	opts     options
	sem      chan struct{}
	dropMu   sync.Mutex
}

// NewExtractor creates an Extractor. The configured repairer is wrapped with a
// per-call timeout (WithRepairTimeout) and panic recovery.
func NewExtractor(opts ...Option) *Extractor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newExtractor(o)
}

func newExtractor(o options) *Extractor {
	var sem chan struct{}
	if o.maxConcurrency > 1 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Extractor{
		repairer: ChainRepairer(o.repairer, WithRepairTimeoutMiddleware(o.repairTimeout), WithRepairRecovery()),
		opts:     o,
		sem:      sem,
	}
}

// Extract returns every call that could be decoded from raw, in order of appearance.
// It never fails: a candidate that cannot be repaired or parsed is dropped (logged and
// reported to the drop hook) and the remaining candidates are still decoded.
// Each returned call gets a fresh id and Type "function". String values inside
// the arguments are kept as decoded; backslashes and quotes in them are not stripped.
func (e *Extractor) Extract(ctx context.Context, raw string) []ToolCall {
	candidates, orphans := splitCandidates(raw)
	if e.opts.strictSegments {
		for _, idx := range orphans {
			e.drop(ctx, fmt.Errorf("%w: segment %d", ErrOrphanEndMarker, idx))
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*ToolCall, len(candidates))
	decode := func(i int) {
		call, err := e.decodeCandidate(ctx, candidates[i])
		if err != nil {
			e.drop(ctx, err)
			return
		}
		results[i] = &call
	}
	if e.sem == nil || len(candidates) == 1 {
		for i := range candidates {
			decode(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := range candidates {
			wg.Go(func() {
				if err := e.acquireSemaphore(ctx); err != nil {
					e.drop(ctx, &RepairError{Err: err})
					return
				}
				defer e.releaseSemaphore()
				decode(i)
			})
		}
		wg.Wait()
	}

	calls := make([]ToolCall, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		r.ID = e.opts.ids.NewID()
		calls = append(calls, *r)
	}
	return calls
}

func (e *Extractor) acquireSemaphore(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Extractor) releaseSemaphore() {
	if e.sem != nil {
		<-e.sem
	}
}

// splitCandidates cuts raw at every end marker. The text after the first start
// marker of each segment is a candidate; indexes of segments without a start
// marker are returned as orphans.
func splitCandidates(raw string) (candidates []string, orphans []int) {
	cursor := 0
	for seg := 0; ; seg++ {
		end := strings.Index(raw[cursor:], EndToolCall)
		if end < 0 {
			return candidates, orphans
		}
		segment := raw[cursor : cursor+end]
		if pos := strings.Index(segment, StartToolCall); pos >= 0 {
			candidates = append(candidates, segment[pos+len(StartToolCall):])
		} else {
			orphans = append(orphans, seg)
		}
		cursor += end + len(EndToolCall)
	}
}

// decodeCandidate turns one candidate payload into a call. It tries, in order:
// the repaired text, the repaired text cleaned, the raw text cleaned, and the
// cleaned raw text repaired once more. The first one that parses wins.
// A failed first repair is reported over later parse errors.
func (e *Extractor) decodeCandidate(ctx context.Context, candidate string) (ToolCall, error) {
	var repairErr, parseErr error
	tried := make(map[string]bool, 4)
	attempt := func(payload string) (ToolCall, bool) {
		if tried[payload] {
			return ToolCall{}, false
		}
		tried[payload] = true
		call, err := e.parseCall(ctx, payload)
		if err != nil {
			parseErr = err
			return ToolCall{}, false
		}
		return call, true
	}

	repaired, err := e.repairer.Repair(ctx, candidate)
	if err != nil {
		repairErr = &RepairError{Err: err}
		if errors.Is(err, ErrRepairTimeout) || ctx.Err() != nil {
			return ToolCall{}, repairErr
		}
	} else {
		if call, ok := attempt(repaired); ok {
			return call, nil
		}
		if call, ok := attempt(cleanPayload(repaired)); ok {
			return call, nil
		}
	}

	cleaned := cleanPayload(candidate)
	if call, ok := attempt(cleaned); ok {
		return call, nil
	}
	if again, err := e.repairer.Repair(ctx, cleaned); err == nil {
		if call, ok := attempt(again); ok {
			return call, nil
		}
	}
	switch {
	case repairErr != nil:
		return ToolCall{}, repairErr
	case parseErr != nil:
		return ToolCall{}, parseErr
	default:
		return ToolCall{}, &ParseError{Payload: candidate}
	}
}

// parseCall reads {"name": ..., "arguments": ...} from payload.
func (e *Extractor) parseCall(ctx context.Context, payload string) (ToolCall, error) {
	data := []byte(strings.TrimSpace(payload))
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return ToolCall{}, &ParseError{Payload: payload}
	}
	name, err := jsonparser.GetString(data, "name")
	if err != nil || name == "" {
		return ToolCall{}, &ParseError{Payload: payload, Err: errMissingName}
	}
	return ToolCall{
		Name:   name,
		Kwargs: e.kwargs(ctx, data),
		Type:   ToolTypeFunction,
	}, nil
}

// kwargs returns the string-serialized arguments. Non-string values are compacted;
// a string holding (near-)JSON object or array text is canonicalized the same way;
// any other string is kept verbatim. Missing arguments read as {}.
func (e *Extractor) kwargs(ctx context.Context, data []byte) string {
	value, typ, _, err := jsonparser.Get(data, "arguments")
	if err != nil || typ == jsonparser.NotExist {
		return "{}"
	}
	if typ != jsonparser.String {
		return string(compactJSON(value))
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		s = string(value)
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return s
	}
	if json.Valid([]byte(trimmed)) {
		return string(compactJSON([]byte(trimmed)))
	}
	if repaired, err := e.repairer.Repair(ctx, trimmed); err == nil && json.Valid([]byte(repaired)) {
		return string(compactJSON([]byte(repaired)))
	}
	return s
}

// drop logs a dropped unit and forwards it to the drop hook.
func (e *Extractor) drop(ctx context.Context, err error) {
	e.opts.logger.WarnContext(ctx, "tool call dropped", "error", err)
	if e.opts.onDrop == nil {
		return
	}
	e.dropMu.Lock()
	defer e.dropMu.Unlock()
	e.opts.onDrop(ctx, err)
}
