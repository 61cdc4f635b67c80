package toolcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingObservations(t *testing.T) {
	t.Parallel()
	p := newPendingObservations()
	_, ok := p.flush()
	assert.False(t, ok, "empty map does not flush")

	p.register("a")
	p.register("b")
	p.register("c")
	assert.Equal(t, 3, p.len())
	assert.True(t, p.fill("c", "rc"))
	assert.True(t, p.fill("a", "ra"))
	assert.False(t, p.fill("zzz", "x"))
	p.register("a") // keeps position and value

	msg, ok := p.flush()
	require.True(t, ok)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, `start observation ["ra","","rc"] end observation`, msg.Content)
	assert.Equal(t, 0, p.len())

	_, ok = p.flush()
	assert.False(t, ok)
}

func TestObservationMessage(t *testing.T) {
	t.Parallel()
	msg := observationMessage([]string{`{"temp": 22}`, "<ok> & done"})
	assert.Equal(t, `start observation ["{\"temp\": 22}","<ok> & done"] end observation`, msg.Content)
	assert.Equal(t, "start observation [] end observation", observationMessage(nil).Content)
}
