package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsubscribeWithoutSubscribeIsANoOp(t *testing.T) {
	m := NewMonitor()

	assert.NotPanics(t, m.Unsubscribe)
	assert.NotPanics(t, m.Unsubscribe)
}

func TestSubscribeThenUnsubscribe(t *testing.T) {
	m := NewMonitor()

	// Works with or without a session bus: without one, Subscribe degrades
	// to a no-op and Unsubscribe stays safe.
	assert.NotPanics(t, func() { m.Subscribe(func() {}) })
	assert.NotPanics(t, m.Unsubscribe)
	assert.NotPanics(t, m.Unsubscribe)
}
