package wakelock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortalLocker(t *testing.T) {
	assert.NotNil(t, NewPortalLocker())
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	h := &Handle{
		path: "/org/freedesktop/portal/desktop/request/1_0/wakeful1",
		stop: make(chan struct{}),
	}

	h.Release()

	select {
	case <-h.stop:
	default:
		t.Fatal("Release must stop the response watcher")
	}

	// A second Release must not close the stop channel again
	assert.NotPanics(t, func() { h.Release() })
}

func TestHandleReleaseAfterPortalRelease(t *testing.T) {
	h := &Handle{
		path:     "/org/freedesktop/portal/desktop/request/1_0/wakeful2",
		stop:     make(chan struct{}),
		released: true,
	}

	// The portal already completed the request; Release is cleanup only
	require.NotPanics(t, h.Release)
	assert.True(t, h.closed)
}
