package keepawake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dooshek/wakeful/internal/detect"
	"github.com/dooshek/wakeful/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNativeInhibitor(locker *fakeLocker, vis *fakeVisibility, notifier *fakeNotifier) *Inhibitor {
	return newInhibitor(types.StrategyNative, deps{
		locker:     locker,
		visibility: vis,
		notifier:   notifier,
		reason:     "test",
	})
}

func TestChooseStrategy(t *testing.T) {
	tests := []struct {
		name string
		caps detect.Capabilities
		want types.Strategy
	}{
		{"native wake lock supported", detect.Capabilities{NativeWakeLock: true}, types.StrategyNative},
		{"legacy session without native support", detect.Capabilities{LegacySession: true}, types.StrategyLegacy},
		{"neither", detect.Capabilities{}, types.StrategyMedia},
		{"native wins over legacy", detect.Capabilities{NativeWakeLock: true, LegacySession: true}, types.StrategyNative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseStrategy(tt.caps))
		})
	}
}

func TestStrategyBoundOncePerCapability(t *testing.T) {
	native := newInhibitor(types.StrategyNative, deps{locker: &fakeLocker{}, visibility: &fakeVisibility{}, notifier: &fakeNotifier{}})
	legacy := newInhibitor(types.StrategyLegacy, deps{session: &fakeSession{}, resetter: &fakeResetter{}, interval: time.Second, notifier: &fakeNotifier{}})
	media := newInhibitor(types.StrategyMedia, deps{media: &fakeMedia{}, notifier: &fakeNotifier{}})

	assert.Equal(t, types.StrategyNative, native.Strategy())
	assert.Equal(t, types.StrategyLegacy, legacy.Strategy())
	assert.Equal(t, types.StrategyMedia, media.Strategy())

	assert.False(t, native.IsEnabled())
	assert.False(t, legacy.IsEnabled())
	assert.False(t, media.IsEnabled())
}

func TestNewFromConfigRejectsUnknownStrategy(t *testing.T) {
	inh, err := NewFromConfig("hibernate", "", 0, nil)
	require.Error(t, err)
	assert.Nil(t, inh)
}

func TestNewFromConfigMedia(t *testing.T) {
	inh, err := NewFromConfig(types.StrategyMedia, "", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StrategyMedia, inh.Strategy())
	assert.False(t, inh.IsEnabled())
}

func TestDisableWhenNeverEnabledIsANoOp(t *testing.T) {
	vis := &fakeVisibility{}
	media := &fakeMedia{}

	inhibitors := []*Inhibitor{
		newNativeInhibitor(&fakeLocker{}, vis, &fakeNotifier{}),
		newInhibitor(types.StrategyLegacy, deps{session: &fakeSession{}, resetter: &fakeResetter{}, interval: time.Second, notifier: &fakeNotifier{}}),
		newInhibitor(types.StrategyMedia, deps{media: media, notifier: &fakeNotifier{}}),
	}

	for _, inh := range inhibitors {
		assert.NotPanics(t, inh.Disable)
		assert.False(t, inh.IsEnabled())
	}
}

func TestNativeEnableDisable(t *testing.T) {
	locker := &fakeLocker{}
	vis := &fakeVisibility{}
	inh := newNativeInhibitor(locker, vis, &fakeNotifier{})

	require.NoError(t, inh.Enable(context.Background()))
	assert.True(t, inh.IsEnabled())
	require.Len(t, locker.handles, 1)
	assert.Equal(t, 1, vis.subscribes)
	assert.NotNil(t, locker.handles[0].onRelease, "release handler should be registered")

	inh.Disable()
	assert.False(t, inh.IsEnabled())
	assert.True(t, locker.handles[0].released, "handle should be released")
	assert.Equal(t, 1, vis.unsubscribes)
}

func TestNativeEnableTwiceHoldsOneResource(t *testing.T) {
	locker := &fakeLocker{}
	inh := newNativeInhibitor(locker, &fakeVisibility{}, &fakeNotifier{})

	require.NoError(t, inh.Enable(context.Background()))
	require.NoError(t, inh.Enable(context.Background()))
	assert.Len(t, locker.handles, 1, "second enable must not acquire a second lock")
}

func TestNativeEnableFailurePropagates(t *testing.T) {
	cause := errors.New("battery saver active")
	locker := &fakeLocker{err: cause}
	vis := &fakeVisibility{}
	inh := newNativeInhibitor(locker, vis, &fakeNotifier{})

	err := inh.Enable(context.Background())
	require.Error(t, err)

	var rejection *PlatformRejectionError
	require.ErrorAs(t, err, &rejection)
	assert.ErrorIs(t, err, cause)
	assert.False(t, inh.IsEnabled())
	assert.Equal(t, 0, vis.subscribes, "failed enable must not subscribe to visibility")
}

func TestNativePlatformReleaseUpdatesBookkeepingOnly(t *testing.T) {
	locker := &fakeLocker{}
	notifier := &fakeNotifier{}
	inh := newNativeInhibitor(locker, &fakeVisibility{}, notifier)

	require.NoError(t, inh.Enable(context.Background()))

	// Platform force-releases the lock
	locker.handles[0].onRelease()

	assert.False(t, inh.IsEnabled())
	assert.Len(t, locker.handles, 1, "release must not trigger a spontaneous re-acquire")
	assert.Equal(t, 1, notifier.lost)
}

func TestNativeVisibilityRestoreReacquires(t *testing.T) {
	locker := &fakeLocker{}
	vis := &fakeVisibility{}
	inh := newNativeInhibitor(locker, vis, &fakeNotifier{})

	require.NoError(t, inh.Enable(context.Background()))
	locker.handles[0].onRelease()
	require.False(t, inh.IsEnabled())

	// Session becomes visible again
	require.NotNil(t, vis.onVisible)
	vis.onVisible()

	assert.True(t, inh.IsEnabled())
	assert.Len(t, locker.handles, 2, "visibility restore should request a fresh lock")
}

func TestNativeVisibilityRestoreWhileEnabledIsNoOp(t *testing.T) {
	locker := &fakeLocker{}
	vis := &fakeVisibility{}
	inh := newNativeInhibitor(locker, vis, &fakeNotifier{})

	require.NoError(t, inh.Enable(context.Background()))
	vis.onVisible()

	assert.True(t, inh.IsEnabled())
	assert.Len(t, locker.handles, 1)
}

func TestNativeReacquireFailureIsSuppressedButReported(t *testing.T) {
	locker := &fakeLocker{}
	vis := &fakeVisibility{}
	notifier := &fakeNotifier{}
	inh := newNativeInhibitor(locker, vis, notifier)

	require.NoError(t, inh.Enable(context.Background()))
	locker.handles[0].onRelease()

	locker.err = errors.New("portal gone")
	assert.NotPanics(t, vis.onVisible)

	assert.False(t, inh.IsEnabled())
	assert.Equal(t, 1, notifier.reacquireFailed)
}

func TestNativeStaleVisibilityCallbackAfterDisable(t *testing.T) {
	locker := &fakeLocker{}
	vis := &fakeVisibility{}
	inh := newNativeInhibitor(locker, vis, &fakeNotifier{})

	require.NoError(t, inh.Enable(context.Background()))
	stale := vis.onVisible
	inh.Disable()

	// A callback already in flight when Disable unsubscribed
	stale()

	assert.False(t, inh.IsEnabled())
	assert.Len(t, locker.handles, 1, "stale callback must not resurrect the lock")
}

func TestMediaEnableDisable(t *testing.T) {
	media := &fakeMedia{}
	inh := newInhibitor(types.StrategyMedia, deps{media: media, notifier: &fakeNotifier{}})

	require.NoError(t, inh.Enable(context.Background()))
	assert.True(t, inh.IsEnabled())
	assert.True(t, media.playing)

	inh.Disable()
	assert.False(t, inh.IsEnabled())
	assert.False(t, media.playing)
	assert.Equal(t, 1, media.pauses)
}

func TestMediaPlaybackBlocked(t *testing.T) {
	cause := errors.New("no playback device")
	media := &fakeMedia{err: cause}
	inh := newInhibitor(types.StrategyMedia, deps{media: media, notifier: &fakeNotifier{}})

	err := inh.Enable(context.Background())
	require.Error(t, err)

	var blocked *PlaybackBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.ErrorIs(t, err, cause)
	assert.False(t, inh.IsEnabled())
}
