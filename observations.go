package toolcodec

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// pendingObservations collects tool responses for the calls of one flush cycle.
// Entries keep the order in which their calls were registered, not the order
// in which responses arrive.
type pendingObservations struct {
	m *orderedmap.OrderedMap[string, string]
}

func newPendingObservations() *pendingObservations {
	return &pendingObservations{m: orderedmap.New[string, string]()}
}

// register adds an empty placeholder for a rendered call. Re-registering an id
// keeps its original position.
func (p *pendingObservations) register(id string) {
	if _, ok := p.m.Get(id); ok {
		return
	}
	p.m.Set(id, "")
}

// fill stores the response for a registered call. It reports false for an unknown id.
func (p *pendingObservations) fill(id, response string) bool {
	pair := p.m.GetPair(id)
	if pair == nil {
		return false
	}
	pair.Value = response
	return true
}

func (p *pendingObservations) len() int { return p.m.Len() }

// flush returns the observation message for every pending entry and clears the map.
// ok is false when nothing was pending.
func (p *pendingObservations) flush() (msg Message, ok bool) {
	if p.m.Len() == 0 {
		return Message{}, false
	}
	values := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	p.m = orderedmap.New[string, string]()
	return observationMessage(values), true
}

// observationMessage wraps responses as a single user message:
// start observation ["r1","r2"] end observation
func observationMessage(values []string) Message {
	if values == nil {
		values = []string{}
	}
	body, err := marshalJSON(values)
	if err != nil {
		// a []string always marshals
		body = []byte("[]")
	}
	return Message{
		Role:    RoleUser,
		Content: StartObservation + string(body) + EndObservation,
	}
}
