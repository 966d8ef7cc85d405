package keepawake

import (
	"context"
	"testing"
	"time"

	"github.com/dooshek/wakeful/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLegacyInhibitor(session *fakeSession, resetter *fakeResetter, interval time.Duration) *Inhibitor {
	return newInhibitor(types.StrategyLegacy, deps{
		session:  session,
		resetter: resetter,
		interval: interval,
		notifier: &fakeNotifier{},
	})
}

func TestLegacyEnableIsSynchronous(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(true)
	inh := newLegacyInhibitor(session, &fakeResetter{}, time.Hour)

	require.NoError(t, inh.Enable(context.Background()))
	assert.True(t, inh.IsEnabled(), "legacy strategy has no asynchronous failure path")

	inh.Disable()
	assert.False(t, inh.IsEnabled())
}

func TestLegacyTickResetsWhileVisible(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(true)
	resetter := &fakeResetter{}
	inh := newLegacyInhibitor(session, resetter, 20*time.Millisecond)

	require.NoError(t, inh.Enable(context.Background()))
	defer inh.Disable()

	assert.Eventually(t, func() bool {
		return resetter.resets.Load() >= 1
	}, time.Second, 5*time.Millisecond, "a visible session should see reset cycles")
}

func TestLegacyTickFiresOncePerInterval(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(true)
	resetter := &fakeResetter{}
	inh := newLegacyInhibitor(session, resetter, 50*time.Millisecond)

	require.NoError(t, inh.Enable(context.Background()))
	time.Sleep(175 * time.Millisecond)
	inh.Disable()

	// 3.5 intervals elapsed: one reset per period means 3 ticks, with slack
	// for scheduling jitter on either side.
	resets := resetter.resets.Load()
	assert.GreaterOrEqual(t, resets, int32(2), "ticker should fire roughly once per interval")
	assert.LessOrEqual(t, resets, int32(4), "ticker must not fire more than once per interval")
}

func TestLegacyTickSkipsWhileHidden(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(false)
	resetter := &fakeResetter{}
	inh := newLegacyInhibitor(session, resetter, 20*time.Millisecond)

	require.NoError(t, inh.Enable(context.Background()))
	defer inh.Disable()

	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, resetter.resets.Load(), "a hidden session must see no reset cycles")
}

func TestLegacyDisableStopsTimer(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(true)
	resetter := &fakeResetter{}
	inh := newLegacyInhibitor(session, resetter, 20*time.Millisecond)

	require.NoError(t, inh.Enable(context.Background()))
	assert.Eventually(t, func() bool {
		return resetter.resets.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	inh.Disable()
	require.False(t, inh.IsEnabled())

	seen := resetter.resets.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seen, resetter.resets.Load(), "no reset cycles after disable")
}

func TestLegacyReenableAfterDisable(t *testing.T) {
	session := &fakeSession{}
	session.visible.Store(true)
	resetter := &fakeResetter{}
	inh := newLegacyInhibitor(session, resetter, 20*time.Millisecond)

	require.NoError(t, inh.Enable(context.Background()))
	inh.Disable()

	require.NoError(t, inh.Enable(context.Background()))
	defer inh.Disable()

	assert.True(t, inh.IsEnabled())
	assert.Eventually(t, func() bool {
		return resetter.resets.Load() >= 1
	}, time.Second, 5*time.Millisecond, "timer should run again after re-enable")
}
